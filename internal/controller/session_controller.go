package controller

import (
	"strconv"

	"textcards-be/internal/dto"
	"textcards-be/internal/pkg/serverutils"
	"textcards-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	Proceed(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	AddSegment(ctx *fiber.Ctx) error
	EditSegment(ctx *fiber.Ctx) error
	RemoveSegment(ctx *fiber.Ctx) error
	GoBack(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Post(":id/analyze", c.Analyze)
	h.Post(":id/proceed", c.Proceed)
	h.Post(":id/generate", c.Generate)
	h.Post(":id/segments", c.AddSegment)
	h.Put(":id/segments/:segmentId", c.EditSegment)
	h.Delete(":id/segments/:segmentId", c.RemoveSegment)
	h.Post(":id/back", c.GoBack)
	h.Post(":id/restart", c.Restart)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	res := c.sessionService.Create()
	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Get(ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Analyze(ctx *fiber.Ctx) error {
	var req dto.SessionInputRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Analyze(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze text", res))
}

func (c *sessionController) Proceed(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Proceed(ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success proceed session", res))
}

func (c *sessionController) Generate(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Generate(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate images", res))
}

func (c *sessionController) AddSegment(ctx *fiber.Ctx) error {
	res, err := c.sessionService.AddSegment(ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add segment", res))
}

func (c *sessionController) EditSegment(ctx *fiber.Ctx) error {
	segmentId, err := strconv.Atoi(ctx.Params("segmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid segment id")
	}

	var req dto.EditSegmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.EditSegment(ctx.Params("id"), segmentId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success edit segment", res))
}

func (c *sessionController) RemoveSegment(ctx *fiber.Ctx) error {
	segmentId, err := strconv.Atoi(ctx.Params("segmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid segment id")
	}

	res, err := c.sessionService.RemoveSegment(ctx.Params("id"), segmentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success remove segment", res))
}

func (c *sessionController) GoBack(ctx *fiber.Ctx) error {
	res, err := c.sessionService.GoBack(ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success go back", res))
}

func (c *sessionController) Restart(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Restart(ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restart session", res))
}
