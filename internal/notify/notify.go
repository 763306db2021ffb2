// Package notify delivers closure lifecycle notifications. The run loop only
// depends on the Notifier interface; delivery failures are for callers to
// log, never to escalate.
package notify

import (
	"context"
	"time"

	"github.com/caesb-automation/baixa/internal/closure"
)

// Notifier is the sink for closure lifecycle events.
type Notifier interface {
	// Success reports one order closed, with its processing window.
	Success(ctx context.Context, orderID string, startedAt, endedAt time.Time) error

	// Error reports a fault that stopped the run. OrderID may be empty when
	// the fault happened outside order processing.
	Error(ctx context.Context, orderID, message string, startedAt time.Time) error

	// Summary reports a finished run's full outcome list and window.
	Summary(ctx context.Context, outcomes []closure.Outcome, startedAt, endedAt time.Time) error
}
