package controller

import (
	"errors"

	"eirybot-assistant-be/internal/dto"
	"eirybot-assistant-be/internal/pkg/serverutils"
	"eirybot-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
	GetTranscript(ctx *fiber.Ctx) error
	ListLeads(ctx *fiber.Ctx) error
	ListRateLimits(ctx *fiber.Ctx) error
}

type adminController struct {
	adminService service.IAdminService
}

func NewAdminController(adminService service.IAdminService) IAdminController {
	return &adminController{adminService: adminService}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Post("/login", c.Login)

	protected := h.Group("", serverutils.JwtMiddleware)
	protected.Get("/conversations", c.ListConversations)
	protected.Get("/conversations/:id/messages", c.GetTranscript)
	protected.Get("/leads", c.ListLeads)
	protected.Get("/rate-limits", c.ListRateLimits)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.Login(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *adminController) ListConversations(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)

	res, err := c.adminService.ListConversations(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", res))
}

func (c *adminController) GetTranscript(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.adminService.GetTranscript(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "conversation not found")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show transcript", res))
}

func (c *adminController) ListLeads(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)

	res, err := c.adminService.ListLeads(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list leads", res))
}

func (c *adminController) ListRateLimits(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)

	res, err := c.adminService.ListRateLimits(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list rate limits", res))
}

func pagination(ctx *fiber.Ctx) (limit, offset int) {
	limit = ctx.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset = ctx.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
