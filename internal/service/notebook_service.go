package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notebook-markdown-be/internal/dto"
	"notebook-markdown-be/internal/entity"
	"notebook-markdown-be/internal/events"
	"notebook-markdown-be/internal/pkg/logger"
	"notebook-markdown-be/internal/repository/contract"
	"notebook-markdown-be/internal/repository/specification"
	"notebook-markdown-be/internal/repository/unitofwork"
	"notebook-markdown-be/pkg/markdown"
	"notebook-markdown-be/pkg/notebook"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	untitledNotebook = "Untitled notebook"
)

var (
	ErrNotebookNotFound = errors.New("notebook not found")
	ErrInvalidCells     = errors.New("invalid cells")
)

type INotebookService interface {
	Import(ctx context.Context, userId uuid.UUID, req *dto.ImportNotebookRequest) (*dto.ImportNotebookResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID, req *dto.ListNotebookRequest) (*dto.ListNotebookResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNotebookResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error)
	Export(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ExportNotebookResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type notebookService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	renderCache      contract.RenderCache
	cacheTTL         time.Duration
	eventPublisher   events.Publisher
	logger           logger.ILogger
}

func NewNotebookService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	renderCache contract.RenderCache,
	cacheTTL time.Duration,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) INotebookService {
	return &notebookService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		renderCache:      renderCache,
		cacheTTL:         cacheTTL,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (c *notebookService) Import(ctx context.Context, userId uuid.UUID, req *dto.ImportNotebookRequest) (*dto.ImportNotebookResponse, error) {
	nb := markdown.MarkdownToNotebook(req.Markdown, markdown.WithDiagnostics(c.logger))
	if nb.Title == "" {
		nb.Title = untitledNotebook
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	e := entity.Notebook{
		Id:        uuid.New(),
		Title:     nb.Title,
		Cells:     nb.Cells,
		Labels:    nb.Labels,
		TimeRange: nb.TimeRange,
		UserId:    userId,
		CreatedAt: time.Now(),
	}
	if err := uow.NotebookRepository().Create(ctx, &e); err != nil {
		return nil, err
	}

	c.queueRender(ctx, e.Id)
	c.eventPublisher.PublishNotebookImported(ctx, e.Id, userId, e.Title, len(e.Cells))

	return &dto.ImportNotebookResponse{
		Id:    e.Id,
		Title: e.Title,
		Cells: len(e.Cells),
	}, nil
}

func (c *notebookService) GetAll(ctx context.Context, userId uuid.UUID, req *dto.ListNotebookRequest) (*dto.ListNotebookResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	filters := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByTitle{Query: req.Query},
	}

	total, err := uow.NotebookRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	notebooks, err := uow.NotebookRepository().FindAll(ctx, append(filters,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NotebookSummary, 0, len(notebooks))
	for _, nb := range notebooks {
		items = append(items, &dto.NotebookSummary{
			Id:        nb.Id,
			Title:     nb.Title,
			CellCount: len(nb.Cells),
			CreatedAt: nb.CreatedAt,
			UpdatedAt: nb.UpdatedAt,
		})
	}

	return &dto.ListNotebookResponse{Items: items, Total: total}, nil
}

func (c *notebookService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNotebookResponse, error) {
	nb, err := c.findOwned(ctx, c.uowFactory.NewUnitOfWork(ctx), userId, id)
	if err != nil {
		return nil, err
	}

	cells, err := notebook.MarshalCells(nb.Cells)
	if err != nil {
		return nil, err
	}

	return &dto.ShowNotebookResponse{
		Id:        nb.Id,
		Title:     nb.Title,
		Cells:     cells,
		TimeRange: nb.TimeRange,
		CreatedAt: nb.CreatedAt,
		UpdatedAt: nb.UpdatedAt,
	}, nil
}

func (c *notebookService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotebookRequest) (*dto.UpdateNotebookResponse, error) {
	cells, err := notebook.UnmarshalCells(req.Cells)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCells, err)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	nb, err := c.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	nb.Title = req.Title
	nb.Cells = cells
	if err := uow.NotebookRepository().Update(ctx, nb); err != nil {
		return nil, err
	}

	c.evict(ctx, nb.Id)
	c.queueRender(ctx, nb.Id)
	c.eventPublisher.PublishNotebookUpdated(ctx, nb.Id, userId, len(cells))

	return &dto.UpdateNotebookResponse{Id: nb.Id}, nil
}

// Export serves the rendered Markdown from the cache, rendering and
// caching it on a miss.
func (c *notebookService) Export(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ExportNotebookResponse, error) {
	nb, err := c.findOwned(ctx, c.uowFactory.NewUnitOfWork(ctx), userId, id)
	if err != nil {
		return nil, err
	}

	md, found, err := c.renderCache.Get(ctx, nb.Id)
	if err != nil {
		c.logger.Warn("NOTEBOOK", "Render cache read failed", map[string]interface{}{
			"error":       err.Error(),
			"notebook_id": nb.Id.String(),
		})
	}
	if !found {
		md = markdown.NotebookToMarkdown(nb.ToNewNotebook(), markdown.WithDiagnostics(c.logger))
		if err := c.renderCache.Set(ctx, nb.Id, md, c.cacheTTL); err != nil {
			c.logger.Warn("NOTEBOOK", "Render cache write failed", map[string]interface{}{
				"error":       err.Error(),
				"notebook_id": nb.Id.String(),
			})
		}
	}
	c.eventPublisher.PublishNotebookExported(ctx, nb.Id, userId, found)

	return &dto.ExportNotebookResponse{
		Id:       nb.Id,
		Markdown: md,
		Cached:   found,
	}, nil
}

func (c *notebookService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	nb, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.NotebookRepository().Delete(ctx, nb.Id); err != nil {
		return err
	}

	c.evict(ctx, nb.Id)
	c.eventPublisher.PublishNotebookDeleted(ctx, nb.Id, userId)
	return nil
}

func (c *notebookService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Notebook, error) {
	nb, err := uow.NotebookRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if nb == nil {
		return nil, ErrNotebookNotFound
	}
	return nb, nil
}

// queueRender asks the consumer to warm the render cache. The notebook is
// already stored, so a failure only costs a render on the next export.
func (c *notebookService) queueRender(ctx context.Context, notebookId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishRenderNotebookMessage{NotebookId: notebookId})
	if err == nil {
		err = c.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		c.logger.Warn("NOTEBOOK", "Render job publish failed", map[string]interface{}{
			"error":       err.Error(),
			"notebook_id": notebookId.String(),
		})
	}
}

func (c *notebookService) evict(ctx context.Context, notebookId uuid.UUID) {
	if err := c.renderCache.Delete(ctx, notebookId); err != nil {
		c.logger.Warn("NOTEBOOK", "Render cache eviction failed", map[string]interface{}{
			"error":       err.Error(),
			"notebook_id": notebookId.String(),
		})
	}
}
