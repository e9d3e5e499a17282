package controller

import (
	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/pkg/serverutils"
	"ai-quiz-runner/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IQuizController serves the session endpoints. Their bodies are flat JSON
// objects rather than the response envelope.
type IQuizController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	NextQuestion(ctx *fiber.Ctx) error
	SubmitAnswer(ctx *fiber.Ctx) error
	SessionStatus(ctx *fiber.Ctx) error
	ResetData(ctx *fiber.Ctx) error
}

type quizController struct {
	service      service.IQuizService
	resetService service.IResetService
}

func NewQuizController(service service.IQuizService, resetService service.IResetService) IQuizController {
	return &quizController{service: service, resetService: resetService}
}

func (c *quizController) RegisterRoutes(r fiber.Router) {
	r.Post("/generate-questions", c.Generate)
	r.Post("/get-question", c.NextQuestion)
	r.Post("/submit-answer", c.SubmitAnswer)
	r.Post("/session-status", c.SessionStatus)
	r.Post("/reset-data", c.ResetData)
}

func (c *quizController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *quizController) NextQuestion(ctx *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.NextQuestion(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *quizController) SubmitAnswer(ctx *fiber.Ctx) error {
	var req dto.SubmitAnswerRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitAnswer(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *quizController) SessionStatus(ctx *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Status(ctx.Context(), req.SessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *quizController) ResetData(ctx *fiber.Ctx) error {
	if err := c.resetService.Reset(ctx.Context()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("All data cleared, AI configuration kept", nil))
}
