package app

import (
	"context"

	"github.com/hkarvonen/tickd/internal/domain"
	"github.com/hkarvonen/tickd/internal/mirror"
)

// LocalStore is the synchronous persistence boundary for timer state.
// Implementations must tolerate a missing or corrupt state file on load.
type LocalStore interface {
	LoadTimers() (map[string]*domain.Timer, error)
	SaveTimers(timers map[string]*domain.Timer) error
	AppendActivity(activity domain.CompletedActivity) error
}

// Mirror is the remote sync boundary. An empty PrincipalID means syncing is
// disabled and no other method will be called.
type Mirror interface {
	PrincipalID() string
	FetchTimers(ctx context.Context) ([]mirror.Record, error)
	UpsertTimers(ctx context.Context, records []mirror.Record) error
	DeleteTimer(ctx context.Context, name string) error
	InsertActivity(ctx context.Context, rec mirror.ActivityRecord) error
}
