package service

import (
	"context"
	"encoding/json"
	"time"

	"notebook-markdown-be/internal/dto"
	"notebook-markdown-be/internal/pkg/logger"
	"notebook-markdown-be/internal/repository/contract"
	"notebook-markdown-be/internal/repository/specification"
	"notebook-markdown-be/internal/repository/unitofwork"
	"notebook-markdown-be/pkg/markdown"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// RenderNotifier tells connected clients that a notebook finished rendering.
type RenderNotifier interface {
	NotifyRendered(ctx context.Context, userId, notebookId uuid.UUID, bytes int)
}

// consumerService renders stored notebooks to Markdown in the background
// and warms the render cache, so exports are served without conversion.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	renderCache contract.RenderCache
	cacheTTL    time.Duration
	notifier    RenderNotifier
	logger      logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	renderCache contract.RenderCache,
	cacheTTL time.Duration,
	notifier RenderNotifier,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		uowFactory:  uowFactory,
		renderCache: renderCache,
		cacheTTL:    cacheTTL,
		notifier:    notifier,
		logger:      logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishRenderNotebookMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("RENDER", "Failed to unmarshal render message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never becomes valid, do not redeliver
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	nb, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: payload.NotebookId})
	if err != nil {
		cs.logger.Error("RENDER", "Failed to load notebook", map[string]interface{}{
			"error":       err.Error(),
			"notebook_id": payload.NotebookId.String(),
		})
		msg.Nack()
		return
	}
	if nb == nil {
		// Deleted before the job ran.
		cs.logger.Warn("RENDER", "Notebook not found, skipping render", map[string]interface{}{"notebook_id": payload.NotebookId.String()})
		msg.Ack()
		return
	}

	md := markdown.NotebookToMarkdown(nb.ToNewNotebook(), markdown.WithDiagnostics(cs.logger))
	if err := cs.renderCache.Set(ctx, nb.Id, md, cs.cacheTTL); err != nil {
		cs.logger.Error("RENDER", "Failed to cache rendered markdown", map[string]interface{}{
			"error":       err.Error(),
			"notebook_id": nb.Id.String(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("RENDER", "Notebook rendered", map[string]interface{}{
		"notebook_id": nb.Id.String(),
		"cells":       len(nb.Cells),
		"bytes":       len(md),
	})
	msg.Ack()

	if cs.notifier != nil {
		cs.notifier.NotifyRendered(ctx, nb.UserId, nb.Id, len(md))
	}
}
