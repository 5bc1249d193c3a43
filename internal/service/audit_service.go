package service

import (
	"context"

	"notebook-markdown-be/internal/pkg/logger"
	pkgEvents "notebook-markdown-be/pkg/events"
	pktNats "notebook-markdown-be/pkg/nats"
)

const auditDurable = "notebook-audit"

type IAuditService interface {
	Start(ctx context.Context) error
	HandleEvent(ctx context.Context, event pkgEvents.Event) error
}

// auditService writes every bus event to the application log, where
// the admin log endpoints can read it back.
type auditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditService(subscriber *pktNats.Subscriber, logger logger.ILogger) IAuditService {
	return &auditService{
		subscriber: subscriber,
		logger:     logger,
	}
}

func (s *auditService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	return s.subscriber.Subscribe(ctx, pkgEvents.SubjectPrefix+">", auditDurable, s.HandleEvent)
}

func (s *auditService) HandleEvent(ctx context.Context, event pkgEvents.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()

	s.logger.Info("AUDIT", event.EventType(), details)
	return nil
}
