package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/meridian-advisory/meridian/internal/observability"
)

// Mailer delivers queued transactional email over SMTP.
type Mailer struct {
	Addr    string
	From    string
	Auth    smtp.Auth
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer constructs a Mailer. Auth may be nil for unauthenticated relays
// such as a local Mailpit.
func NewMailer(addr, from string, auth smtp.Auth, logger *slog.Logger, metrics *observability.Metrics) *Mailer {
	return &Mailer{Addr: addr, From: from, Auth: auth, Logger: logger, Metrics: metrics, send: smtp.SendMail}
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func (m *Mailer) HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	if m == nil {
		return errors.New("mailer: not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	err := m.deliver(payload)
	if m.Metrics != nil {
		m.Metrics.ObserveJobRun(TaskTypeSendEmail, err)
	}
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		}
		return err
	}
	if m.Logger != nil {
		m.Logger.Info("sent email", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	}
	return nil
}

func (m *Mailer) deliver(payload SendEmailPayload) error {
	if m.Addr == "" {
		return errors.New("mailer: smtp address not configured")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", payload.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", payload.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(payload.Body)
	b.WriteString("\r\n")
	return m.send(m.Addr, m.Auth, m.From, []string{payload.To}, []byte(b.String()))
}
