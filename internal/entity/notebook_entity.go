package entity

import (
	"time"

	"notebook-markdown-be/pkg/formatting"
	"notebook-markdown-be/pkg/notebook"

	"github.com/google/uuid"
)

type Notebook struct {
	Id        uuid.UUID
	Title     string
	Cells     []notebook.Cell
	Labels    []formatting.Label
	TimeRange notebook.TimeRange
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// ToNewNotebook drops the storage fields, leaving what the converters work on.
func (n *Notebook) ToNewNotebook() notebook.NewNotebook {
	return notebook.NewNotebook{
		Title:     n.Title,
		Cells:     n.Cells,
		TimeRange: n.TimeRange,
		Labels:    n.Labels,
	}
}
