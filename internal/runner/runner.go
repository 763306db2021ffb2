// Package runner owns the closure run loop: one login per run, repeated
// listing polls, sequential order closure, and single-flight start/stop
// control over the whole cycle.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caesb-automation/baixa/internal/closure"
	"github.com/caesb-automation/baixa/internal/listing"
	"github.com/caesb-automation/baixa/internal/notify"
	"github.com/caesb-automation/baixa/internal/session"
)

// Config holds the run loop timing parameters.
type Config struct {
	// EmptyPollInterval is the pause before re-polling after an empty listing.
	EmptyPollInterval time.Duration
}

// Snapshot describes the controller state at one point in time.
type Snapshot struct {
	Running        bool      `json:"running"`
	JobID          string    `json:"job_id,omitempty"`
	StartedAt      time.Time `json:"started_at,omitzero"`
	CurrentOrderID string    `json:"current_order_id,omitempty"`
}

// String renders the snapshot as the status line exposed by the control API.
func (s Snapshot) String() string {
	if !s.Running {
		return "Idle"
	}
	line := fmt.Sprintf("Running since %s", s.StartedAt.Format("02/01/2006 15:04:05"))
	if s.CurrentOrderID != "" {
		line += " | order " + s.CurrentOrderID
	}
	return line
}

// Controller coordinates runs over the session, listing, and closure systems.
// At most one run is active at a time; Start on a busy controller fails with
// ErrAlreadyRunning instead of queueing.
type Controller struct {
	sessions session.System
	listing  listing.System
	closer   closure.System
	notifier notify.Notifier
	cfg      Config
	logger   *slog.Logger

	mu     sync.Mutex
	state  Snapshot
	cancel context.CancelFunc
}

// New creates a Controller over the given systems.
func New(
	sessions session.System,
	listing listing.System,
	closer closure.System,
	notifier notify.Notifier,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		sessions: sessions,
		listing:  listing,
		closer:   closer,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("system", "runner"),
	}
}

// Start launches a new run in the background and returns its job id.
// Fails with ErrAlreadyRunning when a run is active.
func (c *Controller) Start() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Running {
		return "", ErrAlreadyRunning
	}

	jobID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	c.state = Snapshot{Running: true, JobID: jobID, StartedAt: time.Now()}
	c.cancel = cancel

	go c.run(ctx, jobID)

	c.logger.Info("run started", "job", jobID)
	return jobID, nil
}

// Stop requests cancellation of the active run. The order being processed
// finishes before the run winds down. Fails with ErrNotRunning when idle.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Running {
		return ErrNotRunning
	}

	c.logger.Info("stop requested", "job", c.state.JobID)
	c.cancel()
	return nil
}

// Status returns a copy of the current controller state.
func (c *Controller) Status() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ListOnce performs a standalone login and listing poll, outside any run.
func (c *Controller) ListOnce(ctx context.Context) ([]string, error) {
	bundle, err := c.sessions.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	orders, err := c.listing.ListPending(ctx, bundle)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return orders, nil
}

func (c *Controller) run(ctx context.Context, jobID string) {
	startedAt := time.Now()
	logger := c.logger.With("job", jobID)
	var outcomes []closure.Outcome

	defer func() {
		c.finish()
		if len(outcomes) > 0 {
			if err := c.notifier.Summary(context.Background(), outcomes, startedAt, time.Now()); err != nil {
				logger.Warn("summary notification failed", "error", err)
			}
		}
		logger.Info("run finished", "processed", len(outcomes), "duration", time.Since(startedAt))
	}()

	bundle, err := c.sessions.Login(ctx)
	if err != nil {
		logger.Error("login failed", "error", err)
		c.notifyError(logger, "", "login failed: "+err.Error(), startedAt)
		return
	}
	logger.Info("logged in", "execution", bundle.Execution)

	for ctx.Err() == nil {
		orders, err := c.listing.ListPending(ctx, bundle)
		if err != nil {
			logger.Error("listing failed", "error", err)
			c.notifyError(logger, "", "listing failed: "+err.Error(), startedAt)
			return
		}

		if len(orders) == 0 {
			logger.Info("no pending orders, waiting", "interval", c.cfg.EmptyPollInterval)
			if !c.sleep(ctx, c.cfg.EmptyPollInterval) {
				return
			}
			continue
		}

		logger.Info("pending orders found", "count", len(orders))
		for _, orderID := range orders {
			if ctx.Err() != nil {
				return
			}
			c.setCurrentOrder(orderID)

			orderStart := time.Now()
			outcome, err := c.closer.Close(ctx, bundle, orderID)
			outcomes = append(outcomes, outcome)
			if err != nil {
				logger.Error("run halted by fault", "order", orderID, "error", err)
				c.notifyError(logger, orderID, err.Error(), startedAt)
				return
			}
			if outcome.Succeeded {
				if nerr := c.notifier.Success(ctx, orderID, orderStart, time.Now()); nerr != nil {
					logger.Warn("success notification failed", "order", orderID, "error", nerr)
				}
			} else {
				logger.Info("order not closed", "order", orderID, "messages", outcome.Messages)
			}
		}
		c.setCurrentOrder("")
	}
}

func (c *Controller) notifyError(logger *slog.Logger, orderID, message string, startedAt time.Time) {
	if err := c.notifier.Error(context.Background(), orderID, message, startedAt); err != nil {
		logger.Warn("error notification failed", "error", err)
	}
}

// sleep waits for the interval or cancellation, reporting whether the run
// should continue.
func (c *Controller) sleep(ctx context.Context, interval time.Duration) bool {
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Controller) setCurrentOrder(orderID string) {
	c.mu.Lock()
	c.state.CurrentOrderID = orderID
	c.mu.Unlock()
}

func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Snapshot{}
}
