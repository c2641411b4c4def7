package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP settings for the front-desk mailbox.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// EmailNotifier mails scheduling outcomes to the front desk. It is a
// presentation collaborator, so rendering the payload happens here and
// not in the engine.
type EmailNotifier struct {
	dialer *gomail.Dialer
	cfg    EmailConfig
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
	}
}

var emailSubjects = map[string]string{
	"appointment_created":   "Appointment booked",
	"appointment_moved":     "Appointment rescheduled",
	"appointment_confirmed": "Appointment confirmed",
	"appointment_cancelled": "Appointment cancelled",
	"appointment_no_show":   "Patient did not show",
	"patient_checked_in":    "Patient checked in",
	"visit_completed":       "Visit completed",
	"slot_blocked":          "Calendar time blocked",
	"slot_unblocked":        "Calendar time unblocked",
}

func (n *EmailNotifier) Publish(_ context.Context, eventType string, payload interface{}) error {
	subject, ok := emailSubjects[eventType]
	if !ok {
		subject = eventType
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render notification payload: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", string(body))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
