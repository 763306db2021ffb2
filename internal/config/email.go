package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvEmailEnabled        = "BAIXA_EMAIL_ENABLED"
	EnvEmailFrom           = "BAIXA_EMAIL_FROM"
	EnvEmailFromName       = "BAIXA_EMAIL_FROM_NAME"
	EnvEmailRecipients     = "BAIXA_EMAIL_RECIPIENTS"
	EnvEmailSendGridAPIKey = "BAIXA_EMAIL_SENDGRID_API_KEY"
)

// EmailConfig holds SendGrid notification settings. When disabled, all other
// fields are ignored and the noop notifier is used.
type EmailConfig struct {
	Enabled        bool     `toml:"enabled"`
	From           string   `toml:"from" validate:"required_if=Enabled true,omitempty,email"`
	FromName       string   `toml:"from_name"`
	Recipients     []string `toml:"recipients" validate:"required_if=Enabled true,dive,email"`
	SendGridAPIKey string   `toml:"sendgrid_api_key" validate:"required_if=Enabled true"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EmailConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid email config: %w", err)
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies; slice and
// string fields only apply when non-zero.
func (c *EmailConfig) Merge(overlay *EmailConfig) {
	c.Enabled = overlay.Enabled

	if overlay.From != "" {
		c.From = overlay.From
	}
	if overlay.FromName != "" {
		c.FromName = overlay.FromName
	}
	if overlay.Recipients != nil {
		c.Recipients = overlay.Recipients
	}
	if overlay.SendGridAPIKey != "" {
		c.SendGridAPIKey = overlay.SendGridAPIKey
	}
}

func (c *EmailConfig) loadDefaults() {
	if c.FromName == "" {
		c.FromName = "Automação de Baixa GCOM"
	}
}

func (c *EmailConfig) loadEnv() {
	if v := os.Getenv(EnvEmailEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvEmailFrom); v != "" {
		c.From = v
	}
	if v := os.Getenv(EnvEmailFromName); v != "" {
		c.FromName = v
	}
	if v := os.Getenv(EnvEmailRecipients); v != "" {
		recipients := strings.Split(v, ",")
		c.Recipients = make([]string, 0, len(recipients))
		for _, recipient := range recipients {
			if trimmed := strings.TrimSpace(recipient); trimmed != "" {
				c.Recipients = append(c.Recipients, trimmed)
			}
		}
	}
	if v := os.Getenv(EnvEmailSendGridAPIKey); v != "" {
		c.SendGridAPIKey = v
	}
}
