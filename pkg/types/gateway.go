package types

import (
	"context"
	"encoding/json"
	"time"
)

// Persistence loads and saves whole collections of records keyed by
// collection name. Load returns an empty slice when the collection has never
// been saved.
type Persistence interface {
	Load(ctx context.Context, collection string) ([]json.RawMessage, error)
	Save(ctx context.Context, collection string, records []json.RawMessage) error
}

// Notifier schedules and cancels reminder notifications. Schedule returns an
// opaque handle that is later passed to Cancel.
type Notifier interface {
	RequestPermission(ctx context.Context) bool
	Schedule(ctx context.Context, ownerKey, title, body string, at time.Time) (string, error)
	Cancel(ctx context.Context, handle string) error
}

// SubtaskGenerator breaks a task title into up to count short actionable steps.
type SubtaskGenerator interface {
	GenerateSubtasks(ctx context.Context, title string, count int) ([]string, error)
}
