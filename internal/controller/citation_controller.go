package controller

import (
	"legal-research-be/internal/pkg/serverutils"
	"legal-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICitationController interface {
	RegisterRoutes(r fiber.Router)
	MostCited(ctx *fiber.Ctx) error
	Related(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Cycles(ctx *fiber.Ctx) error
	Chain(ctx *fiber.Ctx) error
}

type citationController struct {
	citationService service.ICitationService
}

func NewCitationController(citationService service.ICitationService) ICitationController {
	return &citationController{
		citationService: citationService,
	}
}

// References like "TTK m.11" contain spaces and dots, so every lookup takes
// the reference as a query parameter rather than a path segment.
func (c *citationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/citation/v1")
	h.Get("most-cited", c.MostCited)
	h.Get("related", c.Related)
	h.Get("node", c.Show)
	h.Get("stats", c.Stats)
	h.Get("cycles", c.Cycles)
	h.Get("chain", c.Chain)
}

func (c *citationController) MostCited(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 10)

	res, err := c.citationService.MostCited(ctx.Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success most cited references", res))
}

func (c *citationController) Related(ctx *fiber.Ctx) error {
	ref := ctx.Query("ref", "")
	if ref == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'ref' is required")
	}
	limit := ctx.QueryInt("limit", 10)

	res, err := c.citationService.Related(ctx.Context(), ref, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success related references", res))
}

func (c *citationController) Show(ctx *fiber.Ctx) error {
	ref := ctx.Query("ref", "")
	if ref == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'ref' is required")
	}

	res, err := c.citationService.Show(ctx.Context(), ref)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "reference not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show reference", res))
}

func (c *citationController) Stats(ctx *fiber.Ctx) error {
	res, err := c.citationService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success citation stats", res))
}

func (c *citationController) Cycles(ctx *fiber.Ctx) error {
	res, err := c.citationService.Cycles(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success citation cycles", res))
}

func (c *citationController) Chain(ctx *fiber.Ctx) error {
	ref := ctx.Query("ref", "")
	if ref == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'ref' is required")
	}
	depth := ctx.QueryInt("depth", 3)

	res, err := c.citationService.Chain(ctx.Context(), ref, depth)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success citation chain", res))
}
