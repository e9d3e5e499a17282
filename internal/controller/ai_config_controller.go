package controller

import (
	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/pkg/serverutils"
	"ai-quiz-runner/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAiConfigController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Test(ctx *fiber.Ctx) error
}

type aiConfigController struct {
	service service.IAiConfigService
}

func NewAiConfigController(service service.IAiConfigService) IAiConfigController {
	return &aiConfigController{service: service}
}

func (c *aiConfigController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai-config")
	h.Get("", c.Get)
	h.Put("", c.Save)
	h.Delete("", c.Delete)
	h.Post("/test", c.Test)
}

// Get answers with data null when nothing is configured.
func (c *aiConfigController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get AI config", res))
}

func (c *aiConfigController) Save(ctx *fiber.Ctx) error {
	var req dto.AiConfigRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Save(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save AI config", res))
}

func (c *aiConfigController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete AI config", dto.DeleteStatusResponse{Status: "deleted"}))
}

func (c *aiConfigController) Test(ctx *fiber.Ctx) error {
	var req dto.AiConfigRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("AI config test finished", c.service.Test(ctx.Context(), &req)))
}
