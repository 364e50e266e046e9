package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/domain"
)

type sentMail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, html, text})
	return nil
}

type fakeRenderer struct {
	templates []string
	err       error
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	r.templates = append(r.templates, name)
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject " + name, "<p>" + name + "</p>", name, nil
}

func TestEmailService_SendBookingInvitation(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer, testLogger)

	err := svc.SendBookingInvitation(context.Background(), &domain.BookingInvitationEmailData{Email: "bob@example.com", Title: "Standup"})
	require.NoError(t, err)
	assert.Equal(t, []string{"booking_invitation"}, renderer.templates)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "bob@example.com", mailer.sent[0].to)
	assert.Equal(t, "subject booking_invitation", mailer.sent[0].subject)
}

func TestEmailService_SendWelcomeMessage(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewEmailService(mailer, &fakeRenderer{}, testLogger)

	require.NoError(t, svc.SendWelcomeMessage(context.Background(), &domain.WelcomeMessageEmailData{Email: "ada@example.com"}))
	require.Len(t, mailer.sent, 1)

	assert.Error(t, svc.SendWelcomeMessage(context.Background(), nil))
}

func TestEmailService_errors(t *testing.T) {
	boom := errors.New("boom")

	svc := NewEmailService(&fakeMailer{}, &fakeRenderer{err: boom}, testLogger)
	err := svc.SendWelcomeMessage(context.Background(), &domain.WelcomeMessageEmailData{Email: "a@b.co"})
	assert.True(t, errors.Is(err, boom))

	svc = NewEmailService(&fakeMailer{err: boom}, &fakeRenderer{}, testLogger)
	err = svc.SendBookingInvitation(context.Background(), &domain.BookingInvitationEmailData{Email: "a@b.co"})
	assert.True(t, errors.Is(err, boom))
}
