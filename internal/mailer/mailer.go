package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal"
)

// Dispatcher delivers a promotion alert to the HR mailbox. The scan
// orchestrator only needs this one method; delivery failures are
// reported, never fatal to a run.
type Dispatcher interface {
	DispatchPromotionAlert(alert PromotionAlert) error
}

// PromotionAlert carries everything the mail template needs.
type PromotionAlert struct {
	PersonnelNumber string
	Name            string
	Department      string
	CurrentStep     int
	NextStep        int
	PromotionDate   time.Time
	DaysRemaining   int
}

// SMTPDispatcher sends alerts over plain SMTP with optional auth.
type SMTPDispatcher struct {
	cfg    internal.SMTPConfig
	logger *slog.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPDispatcher(cfg internal.SMTPConfig, logger *slog.Logger) *SMTPDispatcher {
	return &SMTPDispatcher{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
	}
}

func (d *SMTPDispatcher) DispatchPromotionAlert(alert PromotionAlert) error {
	if !d.cfg.Enabled {
		d.logger.Info("smtp disabled, skipping dispatch",
			"personnel_number", alert.PersonnelNumber)
		return nil
	}

	recipients := splitRecipients(d.cfg.To)
	if len(recipients) == 0 {
		return internal.NewDispatchError("no smtp recipients configured", nil)
	}

	msg := buildMessage(d.cfg.From, recipients, alert)

	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	if err := d.send(addr, auth, d.cfg.From, recipients, msg); err != nil {
		return internal.NewDispatchError("smtp delivery failed", err)
	}

	d.logger.Info("promotion alert dispatched",
		"personnel_number", alert.PersonnelNumber,
		"recipients", len(recipients))
	return nil
}

func splitRecipients(to string) []string {
	var out []string
	for _, part := range strings.Split(to, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Subject returns the mail subject line for an alert.
func Subject(alert PromotionAlert) string {
	return fmt.Sprintf("Stufenaufstieg fällig: %s (PN %s)", alert.Name, alert.PersonnelNumber)
}

// Body renders the plain-text mail body.
func Body(alert PromotionAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Für folgende Mitarbeiterin / folgenden Mitarbeiter steht ein Stufenaufstieg an:\n\n")
	fmt.Fprintf(&b, "Name:            %s\n", alert.Name)
	fmt.Fprintf(&b, "Personalnummer:  %s\n", alert.PersonnelNumber)
	if alert.Department != "" {
		fmt.Fprintf(&b, "Abteilung:       %s\n", alert.Department)
	}
	fmt.Fprintf(&b, "Aktuelle Stufe:  %d\n", alert.CurrentStep)
	fmt.Fprintf(&b, "Neue Stufe:      %d\n", alert.NextStep)
	fmt.Fprintf(&b, "Aufstieg am:     %s\n", alert.PromotionDate.Format("02.01.2006"))
	fmt.Fprintf(&b, "Verbleibend:     %d Tage\n\n", alert.DaysRemaining)
	fmt.Fprintf(&b, "Bitte die Eingruppierung prüfen und den Aufstieg im System erfassen.\n")
	return b.String()
}

func buildMessage(from string, to []string, alert PromotionAlert) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(alert))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(Body(alert))
	return []byte(b.String())
}
