package listing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caesb-automation/baixa/internal/session"
)

const gridID = "abas:formRecebidas:tblRecebidas"

var (
	actionExecutionPattern = regexp.MustCompile(`(?s)action="[^"]*execution=([^"&]+)"`)
	viewStatePattern       = regexp.MustCompile(`(?s)name="javax\.faces\.ViewState"[^>]+value="([^"]+)"`)
)

// Config holds the listing endpoint and grid size.
type Config struct {
	ControlURL  string
	RowsPerPage int
	Timeout     time.Duration
}

// Client lists pending orders through the portal's stateful AJAX protocol.
// It holds no long-lived resource beyond a reusable HTTP client.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a Client with the given config and logger.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger.With("system", "listing"),
	}
}

// ListPending returns the order numbers on the pending ("recebidas") tab, in
// first-seen order. The choreography is: an initial GET to recover the
// execution and view-state tokens, a partial-ajax POST activating the tab, a
// partial-ajax POST setting rows-per-page whose response carries the grid
// markup, and a parse of that markup.
func (c *Client) ListPending(ctx context.Context, bundle *session.Bundle) ([]string, error) {
	c.logger.Info("listing pending orders", "rows_per_page", c.cfg.RowsPerPage)

	execution, viewState, err := c.fetchTokens(ctx, bundle)
	if err != nil {
		return nil, err
	}

	postURL := c.cfg.ControlURL + "?execution=" + execution

	if err := c.activatePendingTab(ctx, bundle, postURL, viewState); err != nil {
		return nil, err
	}

	body, err := c.resizeGrid(ctx, bundle, postURL, viewState)
	if err != nil {
		return nil, err
	}

	orders := ParseOrderIDs(body)
	c.logger.Info("pending orders listed", "count", len(orders))
	return orders, nil
}

// fetchTokens issues the initial GET and recovers the execution token (from
// the redirected URL, falling back to the form action) and a fresh view-state
// token from the body.
func (c *Client) fetchTokens(ctx context.Context, bundle *session.Bundle) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ControlURL+"?id=1111", nil)
	if err != nil {
		return "", "", fmt.Errorf("build initial request: %w", err)
	}
	req.Header.Set("Cookie", cookieHeader(bundle))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("initial page load: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read initial page: %w", err)
	}
	body := string(data)

	execution := executionFromURL(resp.Request.URL)
	if execution == "" {
		if match := actionExecutionPattern.FindStringSubmatch(body); match != nil {
			execution = match[1]
		}
	}
	if execution == "" {
		return "", "", fmt.Errorf("%w: execution", ErrProtocol)
	}

	match := viewStatePattern.FindStringSubmatch(body)
	if match == nil {
		return "", "", fmt.Errorf("%w: javax.faces.ViewState", ErrProtocol)
	}

	return execution, match[1], nil
}

// activatePendingTab simulates the tab-change event that switches the results
// panel to the pending tab. The response matters only for its server-side
// state change and is discarded.
func (c *Client) activatePendingTab(ctx context.Context, bundle *session.Bundle, postURL, viewState string) error {
	form := [][2]string{
		{"javax.faces.partial.ajax", "true"},
		{"javax.faces.source", "abas"},
		{"javax.faces.partial.execute", "abas"},
		{"javax.faces.partial.render", "formBotoes formPesquisa abas"},
		{"javax.faces.behavior.event", "tabChange"},
		{"javax.faces.partial.event", "tabChange"},
		{"abas_contentLoad", "true"},
		{"abas_newTab", "abas:recebidas"},
		{"abas_tabindex", "0"},
		{"j_idt52", "j_idt52"},
		{"j_idt52:filtroRapidoInscricao", ""},
		{"javax.faces.ViewState", viewState},
	}

	resp, err := c.postPartial(ctx, bundle, postURL, form)
	if err != nil {
		return fmt.Errorf("activate pending tab: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.logger.Debug("pending tab activated")
	return nil
}

// resizeGrid simulates the rows-per-page change on the results grid and
// returns the response body, which carries the grid markup.
func (c *Client) resizeGrid(ctx context.Context, bundle *session.Bundle, postURL, viewState string) (string, error) {
	rows := strconv.Itoa(c.cfg.RowsPerPage)
	form := [][2]string{
		{"javax.faces.partial.ajax", "true"},
		{"javax.faces.source", gridID},
		{"javax.faces.partial.execute", gridID},
		{"javax.faces.partial.render", gridID},
		{gridID, gridID},
		{gridID + "_pagination", "true"},
		{gridID + "_first", "0"},
		{gridID + "_rows", rows},
		{gridID + "_skipChildren", "true"},
		{gridID + "_encodeFeature", "true"},
		{"abas:formRecebidas", "abas:formRecebidas"},
		{gridID + "_rppDD", rows},
		{gridID + "_selection", ""},
		{"javax.faces.ViewState", viewState},
	}

	resp, err := c.postPartial(ctx, bundle, postURL, form)
	if err != nil {
		return "", fmt.Errorf("resize grid: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read grid response: %w", err)
	}
	return string(data), nil
}

func (c *Client) postPartial(ctx context.Context, bundle *session.Bundle, postURL string, form [][2]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(encodeForm(form)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Faces-Request", "partial/ajax")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Cookie", cookieHeader(bundle))

	return c.http.Do(req)
}

// encodeForm serializes pairs preserving order; the JSF lifecycle processes
// parameters positionally in places.
func encodeForm(form [][2]string) string {
	var b strings.Builder
	for i, pair := range form {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair[1]))
	}
	return b.String()
}

func cookieHeader(bundle *session.Bundle) string {
	parts := make([]string, 0, len(bundle.Cookies))
	for name, value := range bundle.Cookies {
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, "; ")
}

func executionFromURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Query().Get("execution")
}
