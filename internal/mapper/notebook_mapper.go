package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"notebook-markdown-be/internal/entity"
	"notebook-markdown-be/internal/model"
	"notebook-markdown-be/pkg/formatting"
	"notebook-markdown-be/pkg/notebook"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotebookMapper struct{}

func NewNotebookMapper() *NotebookMapper {
	return &NotebookMapper{}
}

func (m *NotebookMapper) ToEntity(n *model.Notebook) (*entity.Notebook, error) {
	if n == nil {
		return nil, nil
	}

	cells, err := notebook.UnmarshalCells(n.Cells)
	if err != nil {
		return nil, fmt.Errorf("decode cells of notebook %s: %w", n.Id, err)
	}

	var labels []formatting.Label
	if len(n.Labels) > 0 {
		if err := json.Unmarshal(n.Labels, &labels); err != nil {
			return nil, fmt.Errorf("decode labels of notebook %s: %w", n.Id, err)
		}
	}

	// gorm.DeletedAt is struct { Time time.Time; Valid bool }
	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Notebook{
		Id:     n.Id,
		Title:  n.Title,
		Cells:  cells,
		Labels: labels,
		TimeRange: notebook.TimeRange{
			Minutes: n.TimeRangeMinutes,
			From:    n.TimeRangeFrom,
			To:      n.TimeRangeTo,
		},
		UserId:    n.UserId,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: n.DeletedAt.Valid,
	}, nil
}

func (m *NotebookMapper) ToModel(n *entity.Notebook) (*model.Notebook, error) {
	if n == nil {
		return nil, nil
	}

	cells, err := notebook.MarshalCells(n.Cells)
	if err != nil {
		return nil, err
	}

	labels := n.Labels
	if labels == nil {
		labels = []formatting.Label{}
	}
	labelJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Notebook{
		Id:               n.Id,
		Title:            n.Title,
		Cells:            datatypes.JSON(cells),
		Labels:           datatypes.JSON(labelJSON),
		TimeRangeMinutes: n.TimeRange.Minutes,
		TimeRangeFrom:    n.TimeRange.From,
		TimeRangeTo:      n.TimeRange.To,
		UserId:           n.UserId,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
	}, nil
}

func (m *NotebookMapper) ToEntities(notebooks []*model.Notebook) ([]*entity.Notebook, error) {
	entities := make([]*entity.Notebook, len(notebooks))
	for i, n := range notebooks {
		e, err := m.ToEntity(n)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
