package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/caesb-automation/baixa/internal/closure"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderSuccess(t *testing.T) {
	body, err := renderTemplate("success", successData{
		OrderID:   "0000123456789012",
		StartedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		EndedAt:   time.Date(2025, 3, 10, 9, 32, 15, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{"0000123456789012", "10/03/2025 09:30:00", "10/03/2025 09:32:15"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderErrorWithoutOrder(t *testing.T) {
	body, err := renderTemplate("error", errorData{
		Message:   "login failed: portal unreachable",
		StartedAt: time.Now(),
		Now:       time.Now(),
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !strings.Contains(body, "N/A") {
		t.Error("body should show N/A when no order is involved")
	}
	if !strings.Contains(body, "login failed: portal unreachable") {
		t.Error("body should carry the failure detail")
	}
}

func TestRenderSummary(t *testing.T) {
	outcomes := []closure.Outcome{
		closure.Success("order-1"),
		closure.Failure("order-2", "session expired"),
		closure.Success("order-3"),
	}
	succeeded, failed := summarize(outcomes)
	if succeeded != 2 || failed != 1 {
		t.Fatalf("summarize: got %d/%d, want 2/1", succeeded, failed)
	}

	body, err := renderTemplate("summary", summaryData{
		Outcomes:  outcomes,
		Succeeded: succeeded,
		Failed:    failed,
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{"order-1", "order-2", "order-3", "SUCESSO", "ERRO", "session expired"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestDisabledNotifierSkipsDelivery(t *testing.T) {
	n := NewSendGrid(Config{Enabled: false}, testLogger(t))

	if err := n.Success(context.Background(), "order-1", time.Now(), time.Now()); err != nil {
		t.Errorf("disabled success: got %v, want nil", err)
	}
	if err := n.Error(context.Background(), "", "boom", time.Now()); err != nil {
		t.Errorf("disabled error: got %v, want nil", err)
	}
	if err := n.Summary(context.Background(), nil, time.Now(), time.Now()); err != nil {
		t.Errorf("disabled summary: got %v, want nil", err)
	}
}
