package dto

import (
	"encoding/json"

	"notebook-markdown-be/pkg/notebook"
)

type MarkdownRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

type LexicalImportRequest struct {
	Title string          `json:"title" validate:"max=255"`
	State json.RawMessage `json:"state" validate:"required"`
}

// NotebookPayloadResponse is a converted notebook that has not been stored.
type NotebookPayloadResponse struct {
	Title     string             `json:"title"`
	Cells     json.RawMessage    `json:"cells"`
	TimeRange notebook.TimeRange `json:"time_range"`
}

type CellsResponse struct {
	Cells json.RawMessage `json:"cells"`
}

type RenderMarkdownRequest struct {
	Title string          `json:"title"`
	Cells json.RawMessage `json:"cells" validate:"required"`
}

type RenderMarkdownResponse struct {
	Markdown string `json:"markdown"`
}
