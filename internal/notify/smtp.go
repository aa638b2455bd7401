package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPSink delivers notifications as HTML email via plain SMTP.
type SMTPSink struct {
	host string
	port string
	from string
}

// NewSMTPSink creates an SMTPSink.
func NewSMTPSink(host, port, from string) *SMTPSink {
	return &SMTPSink{host: host, port: port, from: from}
}

// Notify implements Sink. One message is sent per recipient so a bad address
// does not block the rest.
func (s *SMTPSink) Notify(_ context.Context, kind Kind, recipients []string, payload any) error {
	subject := Subject(kind, payload)
	body := Body(kind, payload)

	var firstErr error
	for _, to := range recipients {
		if err := s.send(to, subject, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *SMTPSink) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
