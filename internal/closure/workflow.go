package closure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/caesb-automation/baixa/internal/session"
	"github.com/caesb-automation/baixa/pkg/browser"
)

const (
	dateTimeLayout = "02/01/2006 15:04"
	dateLayout     = "02/01/2006"

	removeReadonly = "el => el.removeAttribute('readonly')"
)

// Workflow closes service orders through a dedicated headless browser
// instance per call.
type Workflow struct {
	launcher browser.Launcher
	cfg      Config
	logger   *slog.Logger
}

// New creates a Workflow with the given launcher, config, and logger.
func New(launcher browser.Launcher, cfg Config, logger *slog.Logger) *Workflow {
	return &Workflow{
		launcher: launcher,
		cfg:      cfg,
		logger:   logger.With("system", "closure"),
	}
}

// Close runs the closure state machine for one order. Every handled failure
// returns a non-succeeding outcome with a nil error; unexpected runtime
// faults return both a fault-derived outcome and a non-nil error so the
// caller can treat them as fatal. The browser instance acquired here is
// released on every exit path.
func (w *Workflow) Close(ctx context.Context, bundle *session.Bundle, orderID string) (outcome Outcome, err error) {
	started := time.Now()
	logger := w.logger.With("order", orderID)
	logger.Info("starting closure")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("closure panicked", "panic", r)
			outcome = Failure(orderID, fmt.Sprintf("unexpected error: %v", r))
			err = fmt.Errorf("closure of order %s panicked: %v", orderID, r)
		}
		logger.Info("closure finished",
			"succeeded", outcome.Succeeded,
			"duration", time.Since(started),
		)
	}()

	page, launchErr := w.launcher.Launch(ctx)
	if launchErr != nil {
		return Failure(orderID, "unexpected error: "+launchErr.Error()),
			fmt.Errorf("launch browser: %w", launchErr)
	}
	defer page.Close()

	f := w.cfg.Fields

	// Bootstrap: act as the logged-in session and open the closure form.
	if cerr := w.injectCookies(page, bundle); cerr != nil {
		return w.unexpected(orderID, "inject cookies", cerr)
	}
	if nerr := page.Navigate(w.cfg.ClosureURL, w.cfg.NavigationTimeout); nerr != nil {
		return w.unexpected(orderID, "open closure form", nerr)
	}
	if strings.Contains(page.URL(), w.cfg.LoginPath) {
		logger.Error("redirected to login, session expired")
		return Failure(orderID, "session expired"), nil
	}

	// Search for the order, retrying on marker timeouts.
	if serr := w.search(page, orderID, logger); serr != nil {
		if errors.Is(serr, browser.ErrTimeout) {
			logger.Error("search results never loaded", "retries", w.cfg.SearchRetries)
			return Failure(orderID, "search results not loaded after retries"), nil
		}
		return w.unexpected(orderID, "search", serr)
	}

	if page.IsVisible(f.ErrorMarker) {
		messages := w.extractErrors(page)
		logger.Info("search rejected", "messages", messages)
		return Failure(orderID, messages...), nil
	}
	if !page.IsVisible(f.ResultsForm) {
		logger.Error("results form missing after search")
		return Failure(orderID, "form not loaded after search"), nil
	}

	// Populate. Radio selection failures are non-fatal: the portal's own
	// validation surfaces the consequence on save.
	w.clickRadio(page, f.Refacture, logger)
	w.clickRadio(page, f.Executed, logger)

	now := time.Now().In(w.cfg.Location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, w.cfg.Location).
		Format(dateTimeLayout)
	end := now.Format(dateTimeLayout)

	// Both fields receive the start stamp; the computed end is only logged.
	w.fillDate(page, f.StartDateInput, start, logger)
	w.fillDate(page, f.EndDateInput, start, logger)
	logger.Info("execution window computed", "start", start, "end", end)

	w.clickRadio(page, f.Leak, logger)

	today := now.Format(dateLayout)
	w.fillTextarea(page, f.DiagnosisArea, "Enviado cobrança em "+today, logger)
	w.fillTextarea(page, f.RemedyArea, "Usuário ciente dos débitos.", logger)

	// Submit. The save button may sit under an overlay, so dispatch is forced.
	if cerr := page.Click(f.SaveButton, browser.ClickOptions{Force: true}); cerr != nil {
		return w.unexpected(orderID, "save", cerr)
	}
	if page.IsVisible(f.ErrorMarker) {
		messages := w.extractErrors(page)
		logger.Info("save rejected", "messages", messages)
		return Failure(orderID, messages...), nil
	}

	// Confirm, when the portal asks.
	if page.IsVisible(f.ConfirmDialog) {
		logger.Info("confirmation dialog appeared")
		if !page.IsVisible(f.ConfirmButton) {
			return Failure(orderID, "confirmation button not found"), nil
		}
		if cerr := page.Click(f.ConfirmButton, browser.ClickOptions{}); cerr != nil {
			return w.unexpected(orderID, "confirm", cerr)
		}
		if werr := page.WaitForNetworkIdle(w.cfg.NavigationTimeout); werr != nil {
			return w.unexpected(orderID, "wait after confirm", werr)
		}
	}

	if page.IsVisible(f.ServerErrorIcon) && page.IsVisible(f.ServerErrorText) {
		text, _ := page.InnerText(f.ServerErrorText)
		code, _ := page.InnerText(f.ServerErrorCode)
		logger.Error("portal error page", "message", text, "tracking_code", code)
		return Failure(orderID, fmt.Sprintf("server error: %s (tracking code: %s)",
			strings.TrimSpace(text), strings.TrimSpace(code))), nil
	}

	// Verify: the order must have left the pending listing.
	if nerr := page.Navigate(w.cfg.ControlURL, w.cfg.NavigationTimeout); nerr != nil {
		return w.unexpected(orderID, "open control page", nerr)
	}
	body, berr := page.BodyText()
	if berr != nil {
		return w.unexpected(orderID, "read control page", berr)
	}
	if strings.Contains(body, orderID) {
		logger.Info("order still listed as pending")
		return Failure(orderID, "order not closed"), nil
	}

	logger.Info("order closed")
	return Success(orderID), nil
}

func (w *Workflow) injectCookies(page browser.Page, bundle *session.Bundle) error {
	cookies := make([]browser.Cookie, 0, len(bundle.Cookies))
	for name, value := range bundle.Cookies {
		cookies = append(cookies, browser.Cookie{
			Name:  name,
			Value: value,
			URL:   w.cfg.ClosureURL,
		})
	}
	return page.AddCookies(cookies)
}

// search fills the order-number input and triggers the search, waiting for
// either the results form or an error marker. Marker timeouts are retried up
// to SearchRetries times with SearchRetryDelay between attempts; any other
// driver failure aborts immediately.
func (w *Workflow) search(page browser.Page, orderID string, logger *slog.Logger) error {
	f := w.cfg.Fields
	marker := f.ResultsForm + ", " + f.ErrorMarker

	attempts := 0
	attempt := func() error {
		attempts++
		if attempts > 1 {
			logger.Info("retrying search", "attempt", attempts-1)
		}
		if err := page.Fill(f.SearchInput, orderID); err != nil {
			return backoff.Permanent(err)
		}
		if err := page.Click(f.SearchButton, browser.ClickOptions{}); err != nil {
			return backoff.Permanent(err)
		}
		err := page.WaitForSelector(marker, w.cfg.SelectorTimeout)
		if err == nil || errors.Is(err, browser.ErrTimeout) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(w.cfg.SearchRetryDelay),
		uint64(w.cfg.SearchRetries),
	)
	return backoff.Retry(attempt, policy)
}

// extractErrors collects the trimmed text of every validation message on the
// page. A visible marker with no extractable text still yields one synthetic
// message: failing outcomes never carry an empty list.
func (w *Workflow) extractErrors(page browser.Page) []string {
	var messages []string
	if texts, err := page.AllInnerTexts(w.cfg.Fields.ErrorMessages); err == nil {
		for _, text := range texts {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				messages = append(messages, trimmed)
			}
		}
	}
	if len(messages) == 0 {
		return []string{"unknown validation error"}
	}
	return messages
}

func (w *Workflow) clickRadio(page browser.Page, group RadioGroup, logger *slog.Logger) {
	selector := fmt.Sprintf("#%s td:nth-of-type(%d) .ui-radiobutton-box",
		escapeID(group.ID), group.Index+1)
	if err := page.Click(selector, browser.ClickOptions{Timeout: w.cfg.ActionTimeout}); err != nil {
		logger.Warn("radio selection failed", "field", group.Label, "error", err)
		return
	}
	logger.Debug("radio selected", "field", group.Label, "index", group.Index)
}

func (w *Workflow) fillDate(page browser.Page, selector, value string, logger *slog.Logger) {
	if !page.IsVisible(selector) {
		logger.Info("date field not found", "selector", selector)
		return
	}
	if err := page.Evaluate(selector, removeReadonly); err != nil {
		logger.Warn("date field unlock failed", "selector", selector, "error", err)
		return
	}
	if err := page.Fill(selector, value); err != nil {
		logger.Warn("date fill failed", "selector", selector, "error", err)
	}
}

func (w *Workflow) fillTextarea(page browser.Page, selector, text string, logger *slog.Logger) {
	if err := page.Evaluate(selector, removeReadonly); err != nil {
		logger.Warn("textarea unlock failed", "selector", selector, "error", err)
		return
	}
	if err := page.ScrollIntoView(selector); err != nil {
		logger.Warn("textarea scroll failed", "selector", selector, "error", err)
		return
	}
	if err := page.Click(selector, browser.ClickOptions{Timeout: w.cfg.ActionTimeout}); err != nil {
		logger.Warn("textarea focus failed", "selector", selector, "error", err)
		return
	}
	if err := page.Fill(selector, text); err != nil {
		logger.Warn("textarea fill failed", "selector", selector, "error", err)
		return
	}
	logger.Debug("textarea filled", "selector", selector)
}

func (w *Workflow) unexpected(orderID, stage string, cause error) (Outcome, error) {
	w.logger.Error("unexpected failure", "order", orderID, "stage", stage, "error", cause)
	return Failure(orderID, "unexpected error: "+cause.Error()),
		fmt.Errorf("%s for order %s: %w", stage, orderID, cause)
}

func escapeID(id string) string {
	return strings.ReplaceAll(id, ":", `\:`)
}
