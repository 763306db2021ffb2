package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/caesb-automation/baixa/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "5m"
shutdown_timeout = "30s"

[api]
base_path = "/api"

[api.cors]
enabled = false

[portal]
base_url = "https://portal.test"
username = "operador"
password = "segredo"
rows_per_page = 50
timezone = "America/Sao_Paulo"

[runner]
empty_poll_interval = "10s"
search_retries = 2

[email]
enabled = false
`

const overlayConfig = `
[server]
port = 9090

[portal]
rows_per_page = 200
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Portal.Username != "operador" {
		t.Errorf("portal username: got %s, want operador", cfg.Portal.Username)
	}
	if cfg.Portal.RowsPerPage != 50 {
		t.Errorf("rows_per_page: got %d, want 50", cfg.Portal.RowsPerPage)
	}
	if cfg.Runner.SearchRetries != 2 {
		t.Errorf("search_retries: got %d, want 2", cfg.Runner.SearchRetries)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("BAIXA_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Portal.RowsPerPage != 200 {
		t.Errorf("rows_per_page: got %d, want 200 (from overlay)", cfg.Portal.RowsPerPage)
	}
	if cfg.Portal.Username != "operador" {
		t.Errorf("portal username: got %s, want operador (from base)", cfg.Portal.Username)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("BAIXA_VERSION", "2.0.0")
	t.Setenv("BAIXA_SERVER_PORT", "3000")
	t.Setenv("BAIXA_PORTAL_USERNAME", "outro")
	t.Setenv("BAIXA_RUNNER_SEARCH_RETRIES", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Portal.Username != "outro" {
		t.Errorf("portal username: got %s, want outro", cfg.Portal.Username)
	}
	if cfg.Runner.SearchRetries != 5 {
		t.Errorf("search_retries: got %d, want 5", cfg.Runner.SearchRetries)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("BAIXA_PORTAL_USERNAME", "operador")
	t.Setenv("BAIXA_PORTAL_PASSWORD", "segredo")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Portal.BaseURL != "https://sistemas.caesb.df.gov.br" {
		t.Errorf("portal base_url default: got %s", cfg.Portal.BaseURL)
	}
	if cfg.Portal.RowsPerPage != 100 {
		t.Errorf("rows_per_page default: got %d, want 100", cfg.Portal.RowsPerPage)
	}
	if cfg.Runner.EmptyPollIntervalDuration() != 30*time.Second {
		t.Errorf("empty_poll_interval default: got %v, want 30s", cfg.Runner.EmptyPollIntervalDuration())
	}
	if cfg.Runner.SlowMoDuration() != 500*time.Millisecond {
		t.Errorf("slow_mo default: got %v, want 500ms", cfg.Runner.SlowMoDuration())
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error without portal credentials")
	}
	if !strings.Contains(err.Error(), "portal") {
		t.Errorf("error %q should mention the portal config", err.Error())
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", "shutdown_timeout = [broken")
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestPortalURLs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"login", cfg.Portal.LoginURL(), "https://portal.test/seguranca/app/"},
		{"control", cfg.Portal.ControlURL(), "https://portal.test/gcom/app/atendimento/os/controleOs/controle"},
		{"closure", cfg.Portal.ClosureURL(), "https://portal.test/gcom/app/atendimento/os/baixa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	if cfg.Portal.Location().String() != "America/Sao_Paulo" {
		t.Errorf("location: got %s, want America/Sao_Paulo", cfg.Portal.Location())
	}
}

func TestInvalidTimezone(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", strings.Replace(
		baseConfig, `timezone = "America/Sao_Paulo"`, `timezone = "Mars/Olympus"`, 1))
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestEmailValidation(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", strings.Replace(
		baseConfig, "[email]\nenabled = false", "[email]\nenabled = true", 1))
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for enabled email without sender or recipients")
	}
	if !strings.Contains(err.Error(), "email") {
		t.Errorf("error %q should mention the email config", err.Error())
	}
}

func TestEmailEnabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", strings.Replace(
		baseConfig, "[email]\nenabled = false", `[email]
enabled = true
from = "bot@example.com"
recipients = ["ops@example.com", "backup@example.com"]
sendgrid_api_key = "SG.test"`, 1))
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !cfg.Email.Enabled {
		t.Error("email should be enabled")
	}
	if len(cfg.Email.Recipients) != 2 {
		t.Errorf("recipients: got %v", cfg.Email.Recipients)
	}
	if cfg.Email.FromName != "Automação de Baixa GCOM" {
		t.Errorf("from_name default: got %s", cfg.Email.FromName)
	}
}

func TestEmailRecipientsFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("BAIXA_EMAIL_RECIPIENTS", "a@example.com, b@example.com ,")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(cfg.Email.Recipients) != 2 {
		t.Fatalf("recipients: got %v, want 2 entries", cfg.Email.Recipients)
	}
	if cfg.Email.Recipients[1] != "b@example.com" {
		t.Errorf("recipients should be trimmed: got %v", cfg.Email.Recipients)
	}
}

func TestServerValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name: "invalid port",
			mutate: func(s string) string {
				return strings.Replace(s, "port = 8080", "port = 99999", 1)
			},
			wantErr: "invalid port",
		},
		{
			name: "invalid read_timeout",
			mutate: func(s string) string {
				return strings.Replace(s, `read_timeout = "1m"`, `read_timeout = "bad"`, 1)
			},
			wantErr: "invalid read_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.mutate(baseConfig))
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnvDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestServerAddr(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}
