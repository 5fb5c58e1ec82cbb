// Package email delivers decision notices to requesters over SMTP.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

// Config holds SMTP transport configuration
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	DialTimeout time.Duration
}

// SMTPSender implements port.MailSender over plain-auth SMTP. Delivery is a
// single attempt; the caller owns the failure.
type SMTPSender struct {
	cfg    Config
	logger *zap.Logger

	// sendMail is swappable for tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(cfg Config, logger *zap.Logger) *SMTPSender {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	s := &SMTPSender{
		cfg:    cfg,
		logger: logger,
	}
	s.sendMail = s.dialAndSend
	return s
}

// dialAndSend performs the SMTP session over a connection dialed with the
// configured timeout. The same duration caps the whole session, so a dead or
// silent server cannot hang a decision past it.
func (s *SMTPSender) dialAndSend(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, s.cfg.DialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.cfg.DialTimeout)); err != nil {
		return err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(a); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

const noticeSubject = "Expense Request Status Update"

// Send delivers a decision notice to the recipient captured on the expense
// record. The message mirrors what requesters have always received.
func (s *SMTPSender) Send(ctx context.Context, recipient entity.Recipient, decision workflow.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	msg := buildMessage(s.cfg.From, recipient, decision)

	if err := s.sendMail(addr, auth, s.cfg.From, []string{recipient.Email}, msg); err != nil {
		s.logger.Error("Failed to send decision notice",
			zap.String("recipient", recipient.Email),
			zap.String("decision", decision.String()),
			zap.Error(err))
		return fmt.Errorf("send decision notice: %w", err)
	}

	s.logger.Info("Decision notice delivered",
		zap.String("recipient", recipient.Email),
		zap.String("decision", decision.String()))
	return nil
}

func buildMessage(from string, recipient entity.Recipient, decision workflow.Status) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", recipient.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", noticeSubject)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\nYour expense request has been %s.\r\n\r\nBest regards,\r\nYour Company\r\n",
		recipient.Name, decision.String())
	return []byte(b.String())
}

// Verify interface compliance
var _ port.MailSender = (*SMTPSender)(nil)
