package controller

import (
	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/pkg/serverutils"
	"ai-quiz-runner/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWrongQuestionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Practice(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type wrongQuestionController struct {
	service     service.IWrongQuestionService
	quizService service.IQuizService
}

func NewWrongQuestionController(service service.IWrongQuestionService, quizService service.IQuizService) IWrongQuestionController {
	return &wrongQuestionController{service: service, quizService: quizService}
}

func (c *wrongQuestionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wrong-questions")
	h.Get("", c.List)
	h.Delete("", c.Clear)
	h.Get("/stats", c.Stats)
	h.Post("/practice", c.Practice)
	h.Get("/:identifier", c.Show)
	h.Delete("/:identifier", c.Delete)
}

func (c *wrongQuestionController) List(ctx *fiber.Ctx) error {
	var q dto.WrongQuestionQuery
	var err error
	if q.Page, err = queryInt(ctx, "page"); err != nil {
		return err
	}
	if q.PageSize, err = queryInt(ctx, "page_size"); err != nil {
		return err
	}
	q.QuestionType = ctx.Query("question_type")
	q.SortBy = ctx.Query("sort_by")
	q.Order = ctx.Query("order")

	res, err := c.service.List(ctx.Context(), q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get wrong questions", res))
}

func (c *wrongQuestionController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get wrong question stats", res))
}

// Practice starts a session from the book; like generate it answers with a flat body.
func (c *wrongQuestionController) Practice(ctx *fiber.Ctx) error {
	var req dto.PracticeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.quizService.Practice(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *wrongQuestionController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context(), ctx.Params("identifier"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get wrong question", res))
}

func (c *wrongQuestionController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context(), ctx.Params("identifier")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete wrong question", nil))
}

func (c *wrongQuestionController) Clear(ctx *fiber.Ctx) error {
	res, err := c.service.Clear(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear wrong questions", res))
}
