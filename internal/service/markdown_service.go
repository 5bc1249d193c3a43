package service

import (
	"context"
	"errors"
	"fmt"

	"notebook-markdown-be/internal/dto"
	"notebook-markdown-be/internal/pkg/logger"
	"notebook-markdown-be/pkg/lexical"
	"notebook-markdown-be/pkg/markdown"
	"notebook-markdown-be/pkg/notebook"
)

var ErrInvalidLexicalState = errors.New("invalid lexical state")

type IMarkdownService interface {
	ToNotebook(ctx context.Context, req *dto.MarkdownRequest) (*dto.NotebookPayloadResponse, error)
	ToCells(ctx context.Context, req *dto.MarkdownRequest) (*dto.CellsResponse, error)
	Render(ctx context.Context, req *dto.RenderMarkdownRequest) (*dto.RenderMarkdownResponse, error)
	FromLexical(ctx context.Context, req *dto.LexicalImportRequest) (*dto.NotebookPayloadResponse, error)
}

// markdownService converts without storing anything.
type markdownService struct {
	logger logger.ILogger
}

func NewMarkdownService(logger logger.ILogger) IMarkdownService {
	return &markdownService{logger: logger}
}

func (s *markdownService) ToNotebook(ctx context.Context, req *dto.MarkdownRequest) (*dto.NotebookPayloadResponse, error) {
	nb := markdown.MarkdownToNotebook(req.Markdown, markdown.WithDiagnostics(s.logger))
	return notebookPayload(nb)
}

func (s *markdownService) ToCells(ctx context.Context, req *dto.MarkdownRequest) (*dto.CellsResponse, error) {
	cells, err := notebook.MarshalCells(markdown.MarkdownToCells(req.Markdown, markdown.WithDiagnostics(s.logger)))
	if err != nil {
		return nil, err
	}
	return &dto.CellsResponse{Cells: cells}, nil
}

func (s *markdownService) Render(ctx context.Context, req *dto.RenderMarkdownRequest) (*dto.RenderMarkdownResponse, error) {
	cells, err := notebook.UnmarshalCells(req.Cells)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCells, err)
	}

	md := markdown.NotebookToMarkdown(notebook.NewNotebook{Title: req.Title, Cells: cells}, markdown.WithDiagnostics(s.logger))
	return &dto.RenderMarkdownResponse{Markdown: md}, nil
}

func (s *markdownService) FromLexical(ctx context.Context, req *dto.LexicalImportRequest) (*dto.NotebookPayloadResponse, error) {
	nb, err := lexical.NewParser(s.logger).ParseNotebook(string(req.State), req.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLexicalState, err)
	}
	return notebookPayload(nb)
}

func notebookPayload(nb notebook.NewNotebook) (*dto.NotebookPayloadResponse, error) {
	cells, err := notebook.MarshalCells(nb.Cells)
	if err != nil {
		return nil, err
	}
	return &dto.NotebookPayloadResponse{
		Title:     nb.Title,
		Cells:     cells,
		TimeRange: nb.TimeRange,
	}, nil
}
