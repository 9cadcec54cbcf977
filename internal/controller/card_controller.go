package controller

import (
	"textcards-be/internal/dto"
	"textcards-be/internal/pkg/serverutils"
	"textcards-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICardController interface {
	RegisterRoutes(r fiber.Router)
	AnalyzeText(ctx *fiber.Ctx) error
	GenerateImages(ctx *fiber.Ctx) error
	BatchStatus(ctx *fiber.Ctx) error
}

type cardController struct {
	analysisService   service.IAnalysisService
	generationService service.IGenerationService
}

func NewCardController(analysisService service.IAnalysisService, generationService service.IGenerationService) ICardController {
	return &cardController{
		analysisService:   analysisService,
		generationService: generationService,
	}
}

// The card endpoints answer with the bare contract payloads, not the
// success envelope: external clients bind directly to these shapes.
func (c *cardController) RegisterRoutes(r fiber.Router) {
	r.Post("analyze-text", c.AnalyzeText)
	r.Post("generate-images", c.GenerateImages)
	r.Get("batch-status/:id", c.BatchStatus)
}

func (c *cardController) AnalyzeText(ctx *fiber.Ctx) error {
	var req dto.AnalyzeTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.analysisService.Analyze(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *cardController) GenerateImages(ctx *fiber.Ctx) error {
	var req dto.GenerateImagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *cardController) BatchStatus(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.generationService.BatchStatus(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
