package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateLayout = "Mon 2 Jan 2006, 15:04 MST"

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type bookingConfirmationEmailData struct {
	baseEmailData
	CustomerName string
	BookingID    string
	VehicleName  string
	StartAt      string
	EndAt        string
	GrandTotal   string
	Updated      bool
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderBookingConfirmation(c Confirmation) (subject, html string, err error) {
	heading := "Booking confirmed"
	subject = fmt.Sprintf(subjectBookingConfirmedFmt, c.BookingID)
	if c.Updated {
		heading = "Booking updated"
		subject = fmt.Sprintf(subjectBookingUpdatedFmt, c.BookingID)
	}

	html, err = renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   heading,
			Heading: heading,
		},
		CustomerName: c.CustomerName,
		BookingID:    c.BookingID,
		VehicleName:  c.VehicleName,
		StartAt:      c.StartAt.Format(dateLayout),
		EndAt:        c.EndAt.Format(dateLayout),
		GrandTotal:   formatCurrencyEUR(c.GrandTotal),
		Updated:      c.Updated,
	})
	return subject, html, err
}

func formatCurrencyEUR(amount string) string {
	if amount == "" {
		return ""
	}
	return "€" + amount
}
