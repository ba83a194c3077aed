package controller

import (
	"maintenance-qa-be/internal/dto"
	"maintenance-qa-be/internal/pkg/serverutils"
	"maintenance-qa-be/internal/service"
	"maintenance-qa-be/pkg/schema"

	"github.com/gofiber/fiber/v2"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type askController struct {
	askService service.IAskService
	catalog    *schema.Catalog
}

func NewAskController(askService service.IAskService, catalog *schema.Catalog) IAskController {
	return &askController{
		askService: askService,
		catalog:    catalog,
	}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	r.Post("/ask", c.Ask)
	r.Post("/feedback", c.Feedback)
	r.Get("/health", c.Health)
}

func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return &serverutils.ValidationError{Message: "malformed request body"}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.askService.Ask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *askController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return &serverutils.ValidationError{Message: "malformed request body"}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.askService.Rate(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record feedback", nil))
}

func (c *askController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:        "ok",
		SchemaVersion: c.catalog.Version(),
	})
}
