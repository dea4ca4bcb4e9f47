package repo

import (
	"context"
	"time"
)

// AlertRecord holds the last terminal state we saw for a check and the
// last time we sent a notification for it (used for cooldown).
type AlertRecord struct {
	Code       string
	LastState  string
	LastSentAt *time.Time
}

// AlertStore is implemented by a persistence layer to store alert state.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, code string) (*AlertRecord, error)
	// Set upserts the record. If sentAt.IsZero() the previous send time is cleared.
	Set(ctx context.Context, code string, lastState string, sentAt time.Time) error
}
