package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"talentlink-appointments/config"
	"talentlink-appointments/internal/domain"
)

// SlotLayout is how interview datetimes are written in emails
const SlotLayout = "02/01/2006 at 15:04"

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

// NewEmailService creates a new email service from the SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
	}
}

var templateFuncs = template.FuncMap{
	"slot": func(t time.Time) string { return t.UTC().Format(SlotLayout) },
}

// proposalEmailTemplate lists the three slots offered to the candidate
var proposalEmailTemplate = template.Must(template.New("proposal").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Interview proposal</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1E3A5F; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .slot { background: white; padding: 10px 15px; border-left: 4px solid #1E3A5F; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Interview proposal</h1>
        </div>
        <div class="content">
            <p>Hello {{.CandidateName}},</p>
            <p>{{.CompanyName}} would like to meet you for the <strong>{{.PositionTitle}}</strong> position.
            Please choose one of the following slots (UTC) from your dashboard:</p>
            {{range .Slots}}<div class="slot">{{slot .}}</div>
            {{end}}
            <p>If none of them suit you, you can ask the recruiter for other dates.</p>
        </div>
        <div class="footer">
            <p>This email was sent by TalentLink on behalf of {{.CompanyName}}.</p>
        </div>
    </div>
</body>
</html>`))

// finalEmailTemplate confirms the interview details
var finalEmailTemplate = template.Must(template.New("final").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Interview confirmed</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1E3A5F; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Interview confirmed</h1>
        </div>
        <div class="content">
            <p>Hello {{.CandidateName}},</p>
            <p>Your interview for the <strong>{{.PositionTitle}}</strong> position at {{.CompanyName}} is confirmed.</p>
            <div class="field"><span class="label">Date:</span> {{slot .ChosenDatetime}} (UTC)</div>
            <div class="field"><span class="label">Format:</span> {{.ModeLabel}}</div>
            <div class="field"><span class="label">Location / link:</span> {{.LocationDetails}}</div>
            {{if .AdditionalNotes}}<div class="field"><span class="label">Notes:</span> {{.AdditionalNotes}}</div>{{end}}
        </div>
        <div class="footer">
            <p>This email was sent by TalentLink on behalf of {{.CompanyName}}.</p>
        </div>
    </div>
</body>
</html>`))

// RenderProposal builds the subject and HTML body of a proposal email
func RenderProposal(e domain.ProposalEmail) (string, string, error) {
	var body bytes.Buffer
	if err := proposalEmailTemplate.Execute(&body, e); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	subject := fmt.Sprintf("Interview proposal: %s at %s", e.PositionTitle, e.CompanyName)
	return subject, body.String(), nil
}

// RenderFinal builds the subject and HTML body of a confirmation email
func RenderFinal(e domain.FinalEmail) (string, string, error) {
	data := struct {
		domain.FinalEmail
		ModeLabel string
	}{e, e.Mode.Label()}

	var body bytes.Buffer
	if err := finalEmailTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	subject := fmt.Sprintf("Interview confirmed: %s at %s", e.PositionTitle, e.CompanyName)
	return subject, body.String(), nil
}

// SendProposalEmail emails the proposed slots to the candidate
func (s *EmailService) SendProposalEmail(ctx context.Context, e domain.ProposalEmail) error {
	subject, body, err := RenderProposal(e)
	if err != nil {
		return err
	}
	return s.send(ctx, e.To, subject, body)
}

// SendFinalEmail emails the finalized interview details to the candidate
func (s *EmailService) SendFinalEmail(ctx context.Context, e domain.FinalEmail) error {
	subject, body, err := RenderFinal(e)
	if err != nil {
		return err
	}
	return s.send(ctx, e.To, subject, body)
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue flattens a value onto one header line
func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}

func (s *EmailService) buildMessage(to, subject, body string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		headerValue(s.fromEmail),
		headerValue(to),
		mime.QEncoding.Encode("utf-8", headerValue(subject)),
		body,
	))
}

// send delivers one message, giving up when ctx is done
func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("smtp is not configured")
	}

	addr := net.JoinHostPort(s.host, s.port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.fromEmail); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if _, err := w.Write(s.buildMessage(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return client.Quit()
}

// IsConfigured checks if the email service has a relay and a sender address
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.port != "" && s.fromEmail != ""
}
