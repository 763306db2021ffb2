package notify

import (
	"context"
	"time"

	"github.com/caesb-automation/baixa/internal/closure"
)

// Noop discards all notifications. Used when email delivery is disabled.
type Noop struct{}

func (Noop) Success(context.Context, string, time.Time, time.Time) error {
	return nil
}

func (Noop) Error(context.Context, string, string, time.Time) error {
	return nil
}

func (Noop) Summary(context.Context, []closure.Outcome, time.Time, time.Time) error {
	return nil
}
