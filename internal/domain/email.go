package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email     string
	FirstName string
}

// BookingInvitationEmailData holds data for the email sent to a booking invitee.
type BookingInvitationEmailData struct {
	Email         string
	FirstName     string
	OrganizerName string
	RoomName      string
	Title         string
	Description   string
	StartTime     time.Time
	EndTime       time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendBookingInvitation(ctx context.Context, data *BookingInvitationEmailData) error
}
