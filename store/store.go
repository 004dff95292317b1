package store

import (
	"context"
	"errors"
	"time"
)

// ReportStore persists the few durable facts a completed report leaves
// behind. Values are dates; interpretation belongs to the isolation and
// key-sync features, not to this module.
type ReportStore interface {
	SetOldestSharedKeyDate(ctx context.Context, date time.Time) error
	GetOldestSharedKeyDate(ctx context.Context) (time.Time, error)
	SetEndIsolationQuestionDate(ctx context.Context, date time.Time) error
	GetEndIsolationQuestionDate(ctx context.Context) (time.Time, error)
}

var ErrNotSet = errors.New("value has not been set")
