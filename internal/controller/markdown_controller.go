package controller

import (
	"notebook-markdown-be/internal/dto"
	"notebook-markdown-be/internal/pkg/serverutils"
	"notebook-markdown-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMarkdownController interface {
	RegisterRoutes(r fiber.Router)
	ToNotebook(ctx *fiber.Ctx) error
	ToCells(ctx *fiber.Ctx) error
	Render(ctx *fiber.Ctx) error
	FromLexical(ctx *fiber.Ctx) error
}

type markdownController struct {
	service service.IMarkdownService
}

func NewMarkdownController(service service.IMarkdownService) IMarkdownController {
	return &markdownController{service: service}
}

// RegisterRoutes exposes the stateless converters. Nothing here is stored,
// so no token is required.
func (c *markdownController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/markdown/v1")
	h.Post("notebook", c.ToNotebook)
	h.Post("cells", c.ToCells)
	h.Post("render", c.Render)
	h.Post("lexical", c.FromLexical)
}

func (c *markdownController) ToNotebook(ctx *fiber.Ctx) error {
	var req dto.MarkdownRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ToNotebook(ctx.Context(), &req)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success convert markdown to notebook", res))
}

func (c *markdownController) ToCells(ctx *fiber.Ctx) error {
	var req dto.MarkdownRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ToCells(ctx.Context(), &req)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success convert markdown to cells", res))
}

func (c *markdownController) Render(ctx *fiber.Ctx) error {
	var req dto.RenderMarkdownRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Render(ctx.Context(), &req)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success render markdown", res))
}

func (c *markdownController) FromLexical(ctx *fiber.Ctx) error {
	var req dto.LexicalImportRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.FromLexical(ctx.Context(), &req)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success convert lexical state", res))
}
