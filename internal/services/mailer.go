package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	mail "github.com/go-mail/mail"
)

// Mailer sends one message per call, synchronously
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through a plain SMTP relay
type SMTPMailer struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

// NewSMTPMailerFromEnv builds a mailer from SMTP_* environment variables
func NewSMTPMailerFromEnv() *SMTPMailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@buildhub.local"
	}

	return &SMTPMailer{
		Host: os.Getenv("SMTP_HOST"),
		Port: port,
		From: from,
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
	}
}

func (s *SMTPMailer) Send(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Message templates shared by the account flows

func otpEmail(name, code string) (subject, body string) {
	subject = "Your BuildHub verification code"
	body = fmt.Sprintf(
		"Hello %s,\n\nYour verification code is: %s\n\nThe code expires in 10 minutes. If you did not request it, ignore this email.\n\nTriple G BuildHub",
		name, code)
	return subject, body
}

func approvalEmail(name, status string) (subject, body string) {
	switch status {
	case "approved":
		subject = "Your BuildHub admin account has been approved"
		body = fmt.Sprintf("Hello %s,\n\nYour administrator account has been approved. You can now log in.\n\nTriple G BuildHub", name)
	case "denied":
		subject = "Your BuildHub admin account request was denied"
		body = fmt.Sprintf("Hello %s,\n\nYour administrator account request was denied. Contact support if you believe this is a mistake.\n\nTriple G BuildHub", name)
	case "suspended":
		subject = "Your BuildHub admin account has been suspended"
		body = fmt.Sprintf("Hello %s,\n\nYour administrator account has been suspended. Contact support for details.\n\nTriple G BuildHub", name)
	}
	return subject, body
}
