package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"mintlite/internal/domain"
	"mintlite/internal/repository"
)

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f7; margin: 0; padding: 24px;">
	<div style="max-width: 560px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
		<h2 style="color: #1a1a2e; margin-top: 0;">{{.Title}}</h2>
		<p style="color: #444; font-size: 15px; line-height: 1.6;">Hi {{.Name}},</p>
		<p style="color: #444; font-size: 15px; line-height: 1.6;">{{.Message}}</p>
		<p style="color: #999; font-size: 12px; margin-top: 32px;">You are receiving this because of your Mintlite alert settings.</p>
	</div>
</body>
</html>`))

type emailAdapter struct {
	client *resend.Client
	users  repository.UserRepository
	from   string
}

func NewEmailAdapter(apiKey, fromEmail string, users repository.UserRepository) Adapter {
	return &emailAdapter{
		client: resend.NewClient(apiKey),
		users:  users,
		from:   fromEmail,
	}
}

func (a *emailAdapter) Channel() domain.Channel {
	return domain.ChannelEmail
}

func (a *emailAdapter) Deliver(ctx context.Context, notif *domain.Notification) DeliveryResult {
	user, err := a.users.GetByID(ctx, notif.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return PermanentFailure("recipient not found")
	}
	if err != nil {
		return TransientFailure(fmt.Sprintf("recipient lookup: %v", err))
	}
	if user.Email == "" {
		return PermanentFailure("recipient has no email address")
	}

	data := struct {
		Title   string
		Name    string
		Message string
	}{
		Title:   notif.Title,
		Name:    user.FullName,
		Message: notif.Message,
	}

	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, data); err != nil {
		return PermanentFailure(fmt.Sprintf("render email: %v", err))
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Mintlite <%s>", a.from),
		To:      []string{user.Email},
		Html:    body.String(),
		Subject: notif.Title,
	}

	sent, err := a.client.Emails.SendWithContext(ctx, params)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return TransientFailure("provider timeout")
	}
	if err != nil {
		return TransientFailure(err.Error())
	}
	return Delivered(sent.Id)
}
