package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvRunnerEmptyPollInterval = "BAIXA_RUNNER_EMPTY_POLL_INTERVAL"
	EnvRunnerSearchRetries     = "BAIXA_RUNNER_SEARCH_RETRIES"
	EnvRunnerSearchRetryDelay  = "BAIXA_RUNNER_SEARCH_RETRY_DELAY"
)

// RunnerConfig holds timing parameters for the closure run loop and the
// browser-driven workflow stages.
type RunnerConfig struct {
	// EmptyPollInterval is the pause between listing polls that return no orders.
	EmptyPollInterval string `toml:"empty_poll_interval"`
	// SearchRetries is the number of search re-attempts after the initial timeout.
	SearchRetries int `toml:"search_retries"`
	// SearchRetryDelay is the pause between search re-attempts.
	SearchRetryDelay string `toml:"search_retry_delay"`
	// NavigationTimeout bounds page loads and network-idle waits.
	NavigationTimeout string `toml:"navigation_timeout"`
	// SelectorTimeout bounds waits for result/error markers.
	SelectorTimeout string `toml:"selector_timeout"`
	// ActionTimeout bounds individual clicks on form controls.
	ActionTimeout string `toml:"action_timeout"`
	// SlowMo spaces out browser actions; the portal's JSF frontend drops
	// events fired faster than it re-renders.
	SlowMo string `toml:"slow_mo"`
}

// EmptyPollIntervalDuration returns EmptyPollInterval as a time.Duration.
func (c *RunnerConfig) EmptyPollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.EmptyPollInterval)
	return d
}

// SearchRetryDelayDuration returns SearchRetryDelay as a time.Duration.
func (c *RunnerConfig) SearchRetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.SearchRetryDelay)
	return d
}

// NavigationTimeoutDuration returns NavigationTimeout as a time.Duration.
func (c *RunnerConfig) NavigationTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.NavigationTimeout)
	return d
}

// SelectorTimeoutDuration returns SelectorTimeout as a time.Duration.
func (c *RunnerConfig) SelectorTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.SelectorTimeout)
	return d
}

// ActionTimeoutDuration returns ActionTimeout as a time.Duration.
func (c *RunnerConfig) ActionTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ActionTimeout)
	return d
}

// SlowMoDuration returns SlowMo as a time.Duration.
func (c *RunnerConfig) SlowMoDuration() time.Duration {
	d, _ := time.ParseDuration(c.SlowMo)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RunnerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RunnerConfig) Merge(overlay *RunnerConfig) {
	if overlay.EmptyPollInterval != "" {
		c.EmptyPollInterval = overlay.EmptyPollInterval
	}
	if overlay.SearchRetries != 0 {
		c.SearchRetries = overlay.SearchRetries
	}
	if overlay.SearchRetryDelay != "" {
		c.SearchRetryDelay = overlay.SearchRetryDelay
	}
	if overlay.NavigationTimeout != "" {
		c.NavigationTimeout = overlay.NavigationTimeout
	}
	if overlay.SelectorTimeout != "" {
		c.SelectorTimeout = overlay.SelectorTimeout
	}
	if overlay.ActionTimeout != "" {
		c.ActionTimeout = overlay.ActionTimeout
	}
	if overlay.SlowMo != "" {
		c.SlowMo = overlay.SlowMo
	}
}

func (c *RunnerConfig) loadDefaults() {
	if c.EmptyPollInterval == "" {
		c.EmptyPollInterval = "30s"
	}
	if c.SearchRetries == 0 {
		c.SearchRetries = 3
	}
	if c.SearchRetryDelay == "" {
		c.SearchRetryDelay = "2s"
	}
	if c.NavigationTimeout == "" {
		c.NavigationTimeout = "30s"
	}
	if c.SelectorTimeout == "" {
		c.SelectorTimeout = "15s"
	}
	if c.ActionTimeout == "" {
		c.ActionTimeout = "5s"
	}
	if c.SlowMo == "" {
		c.SlowMo = "500ms"
	}
}

func (c *RunnerConfig) loadEnv() {
	if v := os.Getenv(EnvRunnerEmptyPollInterval); v != "" {
		c.EmptyPollInterval = v
	}
	if v := os.Getenv(EnvRunnerSearchRetries); v != "" {
		if retries, err := strconv.Atoi(v); err == nil {
			c.SearchRetries = retries
		}
	}
	if v := os.Getenv(EnvRunnerSearchRetryDelay); v != "" {
		c.SearchRetryDelay = v
	}
}

func (c *RunnerConfig) validate() error {
	if c.SearchRetries < 0 {
		return fmt.Errorf("invalid search_retries: %d", c.SearchRetries)
	}
	for field, value := range map[string]string{
		"empty_poll_interval": c.EmptyPollInterval,
		"search_retry_delay":  c.SearchRetryDelay,
		"navigation_timeout":  c.NavigationTimeout,
		"selector_timeout":    c.SelectorTimeout,
		"action_timeout":      c.ActionTimeout,
		"slow_mo":             c.SlowMo,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}
	return nil
}
