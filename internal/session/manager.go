package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/caesb-automation/baixa/pkg/browser"
)

// Login page and landing page selectors, fixed per portal deployment.
const (
	usernameInput  = "#j_username"
	passwordInput  = "#j_password"
	loginButton    = "#btEntrar"
	viewStateInput = "input[name='javax.faces.ViewState']"
)

var executionPattern = regexp.MustCompile(`[?&]execution=([^&]+)`)

// Config holds the endpoints and credentials for the login flow.
type Config struct {
	LoginURL          string
	ControlURL        string
	Username          string
	Password          string
	NavigationTimeout time.Duration
}

// Manager performs interactive logins through a headless browser.
type Manager struct {
	launcher browser.Launcher
	cfg      Config
	logger   *slog.Logger
}

// New creates a Manager with the given launcher, config, and logger.
func New(launcher browser.Launcher, cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		launcher: launcher,
		cfg:      cfg,
		logger:   logger.With("system", "session"),
	}
}

// Login drives the portal's login form in an isolated headless browser and
// extracts the authentication bundle from the landing page. The browser is
// torn down before returning; the bundle is the only artifact kept.
func (m *Manager) Login(ctx context.Context) (*Bundle, error) {
	m.logger.Info("starting login", "url", m.cfg.LoginURL)

	page, err := m.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(m.cfg.LoginURL, m.cfg.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("open login page: %w", err)
	}

	if err := page.Fill(usernameInput, m.cfg.Username); err != nil {
		return nil, fmt.Errorf("fill username: %w", err)
	}
	if err := page.Fill(passwordInput, m.cfg.Password); err != nil {
		return nil, fmt.Errorf("fill password: %w", err)
	}
	if err := page.Click(loginButton, browser.ClickOptions{}); err != nil {
		return nil, fmt.Errorf("submit login form: %w", err)
	}
	if err := page.WaitForNetworkIdle(m.cfg.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("wait for login: %w", err)
	}

	if err := page.Navigate(m.cfg.ControlURL, m.cfg.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("open control page: %w", err)
	}

	if !strings.Contains(page.URL(), m.controlPath()) {
		m.logger.Error("landed outside control page", "url", page.URL())
		return nil, ErrAuthFailed
	}

	viewState, err := page.GetAttribute(viewStateInput, "value")
	if err != nil {
		return nil, fmt.Errorf("extract view state: %w", err)
	}

	match := executionPattern.FindStringSubmatch(page.URL())
	if match == nil {
		return nil, fmt.Errorf("no execution token in landing URL %s", page.URL())
	}
	execution := match[1]

	cookies, err := page.Cookies()
	if err != nil {
		return nil, fmt.Errorf("extract cookies: %w", err)
	}

	m.logger.Info("login complete", "cookies", len(cookies))
	return &Bundle{
		Cookies:   cookies,
		Execution: execution,
		ViewState: viewState,
	}, nil
}

func (m *Manager) controlPath() string {
	if u, err := url.Parse(m.cfg.ControlURL); err == nil && u.Path != "" {
		return u.Path
	}
	return m.cfg.ControlURL
}
