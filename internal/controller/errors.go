package controller

import (
	"errors"

	"notebook-markdown-be/internal/pkg/logger"
	"notebook-markdown-be/internal/pkg/serverutils"
	"notebook-markdown-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// toHttpError maps service errors to status codes. Anything unknown is
// left for the error handler to report as a 500.
func toHttpError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotebookNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Notebook not found")
	case errors.Is(err, logger.ErrLogNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Log not found")
	case errors.Is(err, service.ErrInvalidCells), errors.Is(err, service.ErrInvalidLexicalState):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

func currentUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}
	return userId, nil
}

func idParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid notebook id")
	}
	return id, nil
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}
