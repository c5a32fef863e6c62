package dispatch

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/channel"
)

// TemplateStore is the read-only template collaborator. Implementations
// return ErrTemplateNotFound for unknown ids.
type TemplateStore interface {
	GetTemplate(ctx context.Context, id string) (channel.Template, error)
}

// RecordStore persists notification records. The coordinator performs point
// reads and whole-record writes only; no partial updates.
type RecordStore interface {
	// Create stores a new record. The id must be unique.
	Create(ctx context.Context, rec Record) error

	// Update replaces an existing record, keyed by its id.
	Update(ctx context.Context, rec Record) error

	// Get retrieves a single record or ErrRecordNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// ListDueScheduled returns scheduled records whose send time is at or
	// before now.
	ListDueScheduled(ctx context.Context, now time.Time) ([]Record, error)
}
