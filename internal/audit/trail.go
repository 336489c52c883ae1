package audit

import (
	"context"
	"sync"
)

// Trail is the mutable per-request carrier that inner pipeline stages write
// actor identity and error details into, so the recorder (which wraps the
// whole pipeline) can finalize the entry with the most authoritative
// information available. The claimed identity sets a provisional actor; the
// resolved principal overwrites it.
type Trail struct {
	mu           sync.Mutex
	userID       string
	userEmail    string
	orgID        string
	role         string
	errorMessage string
}

type trailKey struct{}

// WithTrail attaches a trail to the context. Installed by the recorder.
func WithTrail(ctx context.Context, t *Trail) context.Context {
	return context.WithValue(ctx, trailKey{}, t)
}

// TrailFrom returns the request trail, or nil outside the recorder's scope.
func TrailFrom(ctx context.Context) *Trail {
	t, _ := ctx.Value(trailKey{}).(*Trail)
	return t
}

// SetActor records the acting identity. Later calls overwrite earlier ones.
func (t *Trail) SetActor(userID, userEmail, orgID, role string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userID = userID
	t.userEmail = userEmail
	t.orgID = orgID
	t.role = role
}

// SetError records the failure message surfaced to the caller. The first
// message wins; later stages must not mask the original cause.
func (t *Trail) SetError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.errorMessage == "" {
		t.errorMessage = message
	}
}

func (t *Trail) snapshot() (userID, userEmail, orgID, role, errorMessage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID, t.userEmail, t.orgID, t.role, t.errorMessage
}
