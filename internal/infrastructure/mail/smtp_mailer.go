// Package mail envía correos por SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/factures-api/internal/application/ports"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/pkg/config"
	"github.com/jhoicas/factures-api/pkg/logger"
)

var _ ports.Mailer = (*SMTPMailer)(nil)

// SMTPMailer adaptador SMTP (STARTTLS en 587, TLS implícito en 465).
type SMTPMailer struct {
	send    func(...*gomail.Message) error
	from    string
	timeout time.Duration
	log     *logger.Logger
}

// NewSMTPMailer construye el adaptador. MAIL_FROM y SMTP_HOST son obligatorios.
func NewSMTPMailer(cfg config.SMTPConfig, log *logger.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: SMTP_HOST es obligatorio")
	}
	if cfg.From == "" {
		return nil, errors.New("mail: MAIL_FROM es obligatorio")
	}
	if log == nil {
		log = logger.Nop()
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Port == 465
	return &SMTPMailer{send: d.DialAndSend, from: cfg.From, timeout: cfg.Timeout, log: log}, nil
}

// Send construye el mensaje multiparte y lo envía con un límite de SMTP_TIMEOUT.
// gomail no acepta contexto: si ctx vence antes, el error envuelve ErrMailTransport y
// ctx.Err(), y el envío en curso termina en segundo plano con su resultado en el log.
func (m *SMTPMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	done := make(chan error, 1)
	go func() { done <- m.send(gm) }()

	select {
	case err := <-done:
		if err != nil {
			m.log.Error().Err(err).Str("to", msg.To).Msg("envío SMTP fallido")
			return fmt.Errorf("%w: %v", domain.ErrMailTransport, err)
		}
		m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email enviado")
		return nil
	case <-ctx.Done():
		m.log.Warn().Err(ctx.Err()).Str("to", msg.To).Msg("envío SMTP sin confirmar, continúa en segundo plano")
		go m.logLate(msg.To, done)
		return fmt.Errorf("%w: resultado desconocido: %w", domain.ErrMailTransport, ctx.Err())
	}
}

func (m *SMTPMailer) logLate(to string, done <-chan error) {
	if err := <-done; err != nil {
		m.log.Error().Err(err).Str("to", to).Msg("envío SMTP tardío fallido")
		return
	}
	m.log.Warn().Str("to", to).Msg("envío SMTP tardío entregado")
}
