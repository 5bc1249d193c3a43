package controller

import (
	"notebook-markdown-be/internal/dto"
	"notebook-markdown-be/internal/pkg/serverutils"
	"notebook-markdown-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router)
	Import(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type notebookController struct {
	service   service.INotebookService
	jwtSecret string
}

func NewNotebookController(service service.INotebookService, jwtSecret string) INotebookController {
	return &notebookController{
		service:   service,
		jwtSecret: jwtSecret,
	}
}

func (c *notebookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notebook/v1")
	h.Use(serverutils.NewJwtMiddleware(c.jwtSecret))
	h.Post("import", c.Import)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Get(":id/markdown", c.Export)
	h.Delete(":id", c.Delete)
}

func (c *notebookController) Import(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.ImportNotebookRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Import(ctx.Context(), userId, &req)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success import notebook", res))
}

func (c *notebookController) GetAll(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.ListNotebookRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.Context(), userId, &req)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all notebook", res))
}

func (c *notebookController) Show(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), userId, id)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show notebook", res))
}

func (c *notebookController) Update(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNotebookRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.service.Update(ctx.Context(), userId, &req)
	if err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update notebook", res))
}

// Export returns raw Markdown unless the client asks for JSON.
func (c *notebookController) Export(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Export(ctx.Context(), userId, id)
	if err != nil {
		return toHttpError(err)
	}

	if ctx.Accepts("text/markdown", fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return ctx.JSON(serverutils.SuccessResponse("Success export notebook", res))
	}
	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return ctx.SendString(res.Markdown)
}

func (c *notebookController) Delete(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), userId, id); err != nil {
		return toHttpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete notebook", nil))
}
