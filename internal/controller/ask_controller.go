package controller

import (
	"strings"

	"ai-answer-be/internal/dto"
	"ai-answer-be/internal/pkg/serverutils"
	"ai-answer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	GetProgress(ctx *fiber.Ctx) error
	RelatedQuestions(ctx *fiber.Ctx) error
}

type askController struct {
	service service.IAskService
}

func NewAskController(service service.IAskService) IAskController {
	return &askController{service: service}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	r.Post("/ask", c.Ask)
	r.Get("/progress/:session_id", c.GetProgress)
	r.Get("/related-questions", c.RelatedQuestions)
}

func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	req.Query = strings.TrimSpace(req.Query)
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func (c *askController) GetProgress(ctx *fiber.Ctx) error {
	sessionID := strings.TrimSpace(ctx.Params("session_id"))
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing session id")
	}

	res, err := c.service.GetProgress(ctx.Context(), sessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session progress", res))
}

func (c *askController) RelatedQuestions(ctx *fiber.Ctx) error {
	query := strings.TrimSpace(ctx.Query("query"))
	if query == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Query must not be empty")
	}

	res, err := c.service.RelatedQuestions(ctx.Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Related questions", res))
}
