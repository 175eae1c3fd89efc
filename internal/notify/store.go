package notify

import (
	"context"
	"time"
)

// Store is the persistence collaborator. The engine treats it as a
// write-through target: writes are best-effort and a failure never
// invalidates the in-memory state.
//
// Implementations must tolerate retried calls (the same update applied
// twice must converge to the same row state).
type Store interface {
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, id string, fields UpdateFields) error
	BulkUpdate(ctx context.Context, userID string, fields UpdateFields) error
	LoadAll(ctx context.Context, userID string) ([]*Notification, error)
}

// UpdateFields is a partial update; nil fields are left untouched.
type UpdateFields struct {
	Read        *bool
	ReadAt      *time.Time
	Dismissed   *bool
	DismissedAt *time.Time
}

// ReadFields builds the partial update for a read transition.
func ReadFields(at time.Time) UpdateFields {
	t := true
	return UpdateFields{Read: &t, ReadAt: &at}
}

// DismissFields builds the partial update for a dismiss transition.
func DismissFields(at time.Time) UpdateFields {
	t := true
	return UpdateFields{Dismissed: &t, DismissedAt: &at}
}
