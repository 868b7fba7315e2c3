package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"petkimlik/internal/config"
	"petkimlik/internal/platform/httpclient"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/ports/notify"
)

var ErrNoRecipients = errors.New("mail: no recipients")

// New elige adapter según config: webhook > smtp > log.
func New(cfg config.MailConfig, log logger.Logger) notify.Mailer {
	switch {
	case strings.TrimSpace(cfg.WebhookURL) != "":
		return NewWebhook(cfg.WebhookURL, cfg.From, httpclient.New(10*time.Second))
	case strings.TrimSpace(cfg.SMTPHost) != "":
		return NewSMTP(cfg)
	default:
		return NewLog(log)
	}
}

func validate(m notify.Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" || strings.ContainsAny(to, "\r\n") {
			return fmt.Errorf("mail: invalid recipient %q", to)
		}
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return errors.New("mail: subject contains newline")
	}
	return nil
}

// SMTPMailer manda con PLAIN auth si hay usuario configurado.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg config.MailConfig) *SMTPMailer {
	m := &SMTPMailer{
		addr: net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.From,
		send: smtp.SendMail,
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(m.addr, m.auth, m.from, msg.To, buildMIME(m.from, msg)); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}

func buildMIME(from string, msg notify.Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// WebhookMailer hace POST JSON a un relay de mail (con reintentos del httpclient).
type WebhookMailer struct {
	url    string
	from   string
	client *httpclient.Client
}

func NewWebhook(url, from string, client *httpclient.Client) *WebhookMailer {
	return &WebhookMailer{url: url, from: from, client: client}
}

type webhookPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (m *WebhookMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	err := m.client.PostJSON(ctx, m.url, nil, webhookPayload{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	}, nil)
	if err != nil {
		return fmt.Errorf("mail: webhook: %w", err)
	}
	return nil
}

// LogMailer solo loguea; es el default en desarrollo.
type LogMailer struct {
	log logger.Logger
}

func NewLog(log logger.Logger) *LogMailer {
	if log == nil {
		log = logger.Nop()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	m.log.Info("mail (log only)", map[string]any{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
		"body":    msg.Body,
	})
	return nil
}
