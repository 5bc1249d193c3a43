package controller

import (
	"notebook-markdown-be/internal/dto"
	"notebook-markdown-be/internal/pkg/serverutils"
	"notebook-markdown-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	service   service.IAdminService
	jwtSecret string
}

func NewAdminController(service service.IAdminService, jwtSecret string) IAdminController {
	return &adminController{
		service:   service,
		jwtSecret: jwtSecret,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.NewJwtMiddleware(c.jwtSecret))
	h.Get("logs", c.GetLogs)
	h.Get("logs/:id", c.GetLogDetail)
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	req := dto.LogListRequest{Page: 1, Limit: 10}
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	logs, err := c.service.GetSystemLogs(ctx.Context(), req.Page, req.Limit, req.Level)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	logId := ctx.Params("id") // MD5 of the log line, not a UUID

	l, err := c.service.GetLogDetail(ctx.Context(), logId)
	if err != nil {
		return toHttpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}
