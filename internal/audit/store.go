package audit

import (
	"context"

	"github.com/google/uuid"
)

// Store persists finalized audit entries. Implementations must be safe for
// concurrent use; the recorder performs exactly one Append per request.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit int) ([]Entry, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// Relay forwards finalized entries to an external pipeline (Kafka). Publish
// must not block the request path; implementations buffer and drop under
// pressure rather than propagate back-pressure to callers.
type Relay interface {
	Publish(entry Entry)
}
