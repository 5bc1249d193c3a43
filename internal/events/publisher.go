package events

import (
	"context"
	"time"

	"notebook-markdown-be/internal/pkg/logger"
	pkgEvents "notebook-markdown-be/pkg/events"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for notebook lifecycle changes
type Publisher interface {
	PublishNotebookImported(ctx context.Context, notebookId, userId uuid.UUID, title string, cellCount int)
	PublishNotebookUpdated(ctx context.Context, notebookId, userId uuid.UUID, cellCount int)
	PublishNotebookExported(ctx context.Context, notebookId, userId uuid.UUID, cached bool)
	PublishNotebookDeleted(ctx context.Context, notebookId, userId uuid.UUID)
}

// BusPublisher implements Publisher on an event bus. A nil bus drops
// every event, which is how the service runs without NATS.
type BusPublisher struct {
	bus    pkgEvents.Bus
	logger logger.ILogger
}

func NewBusPublisher(bus pkgEvents.Bus, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{
		bus:    bus,
		logger: logger,
	}
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, notebookId, userId uuid.UUID, data map[string]interface{}) {
	if p.bus == nil {
		return
	}

	now := time.Now()
	data["notebook_id"] = notebookId.String()
	data["user_id"] = userId.String()
	data["entity_type"] = "notebook"
	data["entity_id"] = notebookId.String()

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}

	// Events are auxiliary, a failed publish never fails the request.
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{
			"error":       err.Error(),
			"notebook_id": notebookId.String(),
		})
	}
}

// PublishNotebookImported emits NOTEBOOK_IMPORTED
func (p *BusPublisher) PublishNotebookImported(ctx context.Context, notebookId, userId uuid.UUID, title string, cellCount int) {
	p.publish(ctx, pkgEvents.NotebookImported, notebookId, userId, map[string]interface{}{
		"title":      title,
		"cell_count": cellCount,
	})
}

// PublishNotebookUpdated emits NOTEBOOK_UPDATED
func (p *BusPublisher) PublishNotebookUpdated(ctx context.Context, notebookId, userId uuid.UUID, cellCount int) {
	p.publish(ctx, pkgEvents.NotebookUpdated, notebookId, userId, map[string]interface{}{
		"cell_count": cellCount,
	})
}

// PublishNotebookExported emits NOTEBOOK_EXPORTED
func (p *BusPublisher) PublishNotebookExported(ctx context.Context, notebookId, userId uuid.UUID, cached bool) {
	p.publish(ctx, pkgEvents.NotebookExported, notebookId, userId, map[string]interface{}{
		"cached": cached,
	})
}

// PublishNotebookDeleted emits NOTEBOOK_DELETED
func (p *BusPublisher) PublishNotebookDeleted(ctx context.Context, notebookId, userId uuid.UUID) {
	p.publish(ctx, pkgEvents.NotebookDeleted, notebookId, userId, map[string]interface{}{})
}
