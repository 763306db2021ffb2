package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/caesb-automation/baixa/internal/closure"
)

// Config carries the delivery settings for the SendGrid notifier.
type Config struct {
	Enabled    bool
	From       string
	FromName   string
	Recipients []string
	APIKey     string
}

// SendGrid delivers notifications through the SendGrid v3 mail API. The first
// configured recipient is addressed directly; the rest are copied.
type SendGrid struct {
	client *sendgrid.Client
	cfg    Config
	logger *slog.Logger
}

// NewSendGrid creates a SendGrid notifier from the given config.
func NewSendGrid(cfg Config, logger *slog.Logger) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger.With("system", "notify"),
	}
}

func (s *SendGrid) Success(ctx context.Context, orderID string, startedAt, endedAt time.Time) error {
	body, err := renderTemplate("success", successData{
		OrderID:   orderID,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Baixa Finalizada com Sucesso - OS %s", orderID)
	return s.send(ctx, subject, body)
}

func (s *SendGrid) Error(ctx context.Context, orderID, message string, startedAt time.Time) error {
	body, err := renderTemplate("error", errorData{
		OrderID:   orderID,
		Message:   message,
		StartedAt: startedAt,
		Now:       time.Now(),
	})
	if err != nil {
		return err
	}
	subject := "Erro na Baixa - Bot Parado"
	if orderID != "" {
		subject = fmt.Sprintf("Erro na Baixa - Bot Parado - OS %s", orderID)
	}
	return s.send(ctx, subject, body)
}

func (s *SendGrid) Summary(ctx context.Context, outcomes []closure.Outcome, startedAt, endedAt time.Time) error {
	succeeded, failed := summarize(outcomes)
	body, err := renderTemplate("summary", summaryData{
		Outcomes:  outcomes,
		Succeeded: succeeded,
		Failed:    failed,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Resumo da Execução - %d Sucessos, %d Erros", succeeded, failed)
	return s.send(ctx, subject, body)
}

func (s *SendGrid) send(ctx context.Context, subject, body string) error {
	if !s.cfg.Enabled || len(s.cfg.Recipients) == 0 {
		s.logger.Debug("email delivery disabled, skipping", "subject", subject)
		return nil
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.cfg.FromName, s.cfg.From))
	m.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", s.cfg.Recipients[0]))
	for _, recipient := range s.cfg.Recipients[1:] {
		p.AddCCs(mail.NewEmail("", recipient))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", body))

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send notification: sendgrid responded %d: %s",
			resp.StatusCode, resp.Body)
	}

	s.logger.Info("notification sent", "subject", subject, "recipients", len(s.cfg.Recipients))
	return nil
}
