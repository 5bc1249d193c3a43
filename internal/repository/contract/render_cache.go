package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RenderCache holds rendered Markdown per notebook. A miss returns ("", false, nil).
type RenderCache interface {
	Get(ctx context.Context, notebookId uuid.UUID) (string, bool, error)
	Set(ctx context.Context, notebookId uuid.UUID, markdown string, ttl time.Duration) error
	Delete(ctx context.Context, notebookId uuid.UUID) error
}
