package services

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"
	"time"
)

type EmailService struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	devMode bool
}

func NewEmailService(host, port, user, pass, from string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Println("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		from:    from,
		devMode: devMode,
	}
}

// AppointmentEmail carries what both the confirmation and reminder mails show.
type AppointmentEmail struct {
	PatientName string
	DoctorName  string
	Specialty   string
	Date        time.Time
	TimeSlot    string
}

func (s *EmailService) SendAppointmentConfirmation(to string, a AppointmentEmail) error {
	subject := fmt.Sprintf("Appointment requested with %s", a.DoctorName)
	body := emailLayout("Appointment Requested", fmt.Sprintf(`
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0 0 16px;">
        Hi %s, we received your appointment request. The hospital will contact you if anything changes.
      </p>
      %s`, html.EscapeString(a.PatientName), appointmentTable(a)))

	return s.sendHTML(to, subject, body)
}

func (s *EmailService) SendAppointmentReminder(to string, a AppointmentEmail) error {
	subject := fmt.Sprintf("Reminder: appointment tomorrow at %s", a.TimeSlot)
	body := emailLayout("See You Tomorrow", fmt.Sprintf(`
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0 0 16px;">
        Hi %s, this is a reminder of your appointment tomorrow. Please arrive 15 minutes early and bring your Medical ID.
      </p>
      %s`, html.EscapeString(a.PatientName), appointmentTable(a)))

	return s.sendHTML(to, subject, body)
}

func appointmentTable(a AppointmentEmail) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding: 6px 0; color: #94a3b8; font-size: 13px;">%s</td><td style="padding: 6px 0; color: #1e293b; font-size: 14px; font-weight: 600;">%s</td></tr>`,
			label, html.EscapeString(value))
	}

	rows := []string{
		row("Doctor", a.DoctorName),
		row("Specialty", a.Specialty),
		row("Date", a.Date.Format("Monday, 02 Jan 2006")),
		row("Time", a.TimeSlot),
	}
	return `<table style="width: 100%; border-collapse: collapse;">` + strings.Join(rows, "") + `</table>`
}

func emailLayout(heading, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #0ea5e9 0%%, #14b8a6 100%%); padding: 32px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px; font-weight: 700;">Medica</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0; font-size: 14px;">Hospital Services</p>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">%s</h2>
      %s
    </div>
  </div>
</body>
</html>`, html.EscapeString(heading), content)
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		log.Printf("📧 [DEV EMAIL] To: %s | Subject: %s", to, subject)
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}
