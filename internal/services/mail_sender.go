package services

import (
	"fmt"
	"net/smtp"
	"strings"
)

type smtpSender struct {
	addr string
	from string
}

// NewSMTPSender returns a MailSender speaking plain SMTP to the relay the
// host environment provides.
func NewSMTPSender(host string, port int, from string) MailSender {
	return &smtpSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
}

func (s *smtpSender) Send(recipients []string, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(s.addr, nil, s.from, recipients, []byte(msg))
}
