package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvPortalBaseURL     = "BAIXA_PORTAL_BASE_URL"
	EnvPortalUsername    = "BAIXA_PORTAL_USERNAME"
	EnvPortalPassword    = "BAIXA_PORTAL_PASSWORD"
	EnvPortalRowsPerPage = "BAIXA_PORTAL_ROWS_PER_PAGE"
	EnvPortalTimezone    = "BAIXA_PORTAL_TIMEZONE"
)

// PortalConfig identifies the target GCOM portal and the credentials used to
// act on it. Paths are fixed per portal deployment; credentials always come
// from the environment in practice.
type PortalConfig struct {
	BaseURL     string `toml:"base_url" validate:"required,url"`
	LoginPath   string `toml:"login_path" validate:"required"`
	ControlPath string `toml:"control_path" validate:"required"`
	ClosurePath string `toml:"closure_path" validate:"required"`
	Username    string `toml:"username" validate:"required"`
	Password    string `toml:"password" validate:"required"`
	RowsPerPage int    `toml:"rows_per_page" validate:"gte=1,lte=1000"`
	Timezone    string `toml:"timezone" validate:"required"`
	ShowBrowser bool   `toml:"show_browser"`
	SkipInstall bool   `toml:"skip_install"`

	location *time.Location
}

// LoginURL returns the absolute login page URL.
func (c *PortalConfig) LoginURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.LoginPath
}

// ControlURL returns the absolute order-control page URL.
func (c *PortalConfig) ControlURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.ControlPath
}

// ClosureURL returns the absolute closure form URL.
func (c *PortalConfig) ClosureURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.ClosurePath
}

// Location returns the portal's local time zone, resolved during Finalize.
func (c *PortalConfig) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PortalConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid portal config: %w", err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Merge overwrites non-zero fields from overlay. Boolean fields always apply.
func (c *PortalConfig) Merge(overlay *PortalConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.LoginPath != "" {
		c.LoginPath = overlay.LoginPath
	}
	if overlay.ControlPath != "" {
		c.ControlPath = overlay.ControlPath
	}
	if overlay.ClosurePath != "" {
		c.ClosurePath = overlay.ClosurePath
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.RowsPerPage != 0 {
		c.RowsPerPage = overlay.RowsPerPage
	}
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
	c.ShowBrowser = overlay.ShowBrowser
	c.SkipInstall = overlay.SkipInstall
}

func (c *PortalConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://sistemas.caesb.df.gov.br"
	}
	if c.LoginPath == "" {
		c.LoginPath = "/seguranca/app/"
	}
	if c.ControlPath == "" {
		c.ControlPath = "/gcom/app/atendimento/os/controleOs/controle"
	}
	if c.ClosurePath == "" {
		c.ClosurePath = "/gcom/app/atendimento/os/baixa"
	}
	if c.RowsPerPage == 0 {
		c.RowsPerPage = 100
	}
	if c.Timezone == "" {
		c.Timezone = "America/Sao_Paulo"
	}
}

func (c *PortalConfig) loadEnv() {
	if v := os.Getenv(EnvPortalBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvPortalUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPortalPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvPortalRowsPerPage); v != "" {
		if rows, err := strconv.Atoi(v); err == nil {
			c.RowsPerPage = rows
		}
	}
	if v := os.Getenv(EnvPortalTimezone); v != "" {
		c.Timezone = v
	}
}
