package controller

import (
	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/pkg/serverutils"
	"ai-quiz-runner/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Sessions(ctx *fiber.Ctx) error
}

type historyController struct {
	service service.IHistoryService
}

func NewHistoryController(service service.IHistoryService) IHistoryController {
	return &historyController{service: service}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/answer-history")
	h.Get("", c.List)
	h.Get("/sessions", c.Sessions)
}

func (c *historyController) List(ctx *fiber.Ctx) error {
	var q dto.HistoryQuery
	var err error
	if q.Page, err = queryInt(ctx, "page"); err != nil {
		return err
	}
	if q.PageSize, err = queryInt(ctx, "page_size"); err != nil {
		return err
	}
	if q.DateFrom, err = queryTime(ctx, "date_from"); err != nil {
		return err
	}
	if q.DateTo, err = queryTime(ctx, "date_to"); err != nil {
		return err
	}
	q.SessionId = ctx.Query("session_id")
	q.QuestionType = ctx.Query("question_type")
	q.IsCorrect = queryBool(ctx, "is_correct")

	res, err := c.service.List(ctx.Context(), q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get answer history", res))
}

func (c *historyController) Sessions(ctx *fiber.Ctx) error {
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		return err
	}

	res, err := c.service.Sessions(ctx.Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session summaries", res))
}
