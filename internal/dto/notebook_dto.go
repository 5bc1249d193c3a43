package dto

import (
	"encoding/json"
	"time"

	"notebook-markdown-be/pkg/notebook"

	"github.com/google/uuid"
)

type ImportNotebookRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

type ImportNotebookResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Cells int       `json:"cells"`
}

type ListNotebookRequest struct {
	Query  string `query:"q"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
}

type ListNotebookResponse struct {
	Items []*NotebookSummary `json:"items"`
	Total int64              `json:"total"`
}

type NotebookSummary struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CellCount int        `json:"cell_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ShowNotebookResponse struct {
	Id        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Cells     json.RawMessage    `json:"cells"`
	TimeRange notebook.TimeRange `json:"time_range"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt *time.Time         `json:"updated_at"`
}

type UpdateNotebookRequest struct {
	Id    uuid.UUID
	Title string          `json:"title" validate:"required,max=255"`
	Cells json.RawMessage `json:"cells" validate:"required"`
}

type UpdateNotebookResponse struct {
	Id uuid.UUID `json:"id"`
}

type ExportNotebookResponse struct {
	Id       uuid.UUID `json:"id"`
	Markdown string    `json:"markdown"`
	Cached   bool      `json:"cached"`
}

// PublishRenderNotebookMessage is the render queue payload.
type PublishRenderNotebookMessage struct {
	NotebookId uuid.UUID `json:"notebook_id"`
}
