package service

import (
	"github.com/contactdesk/contactdesk/internal/constants"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"github.com/contactdesk/contactdesk/pkg/mailer"
	"go.uber.org/zap"
)

// ConfirmationMailer queues account confirmation emails for delivery
type ConfirmationMailer interface {
	QueueConfirmation(email, username, token string)
}

// EmailNotifier renders confirmation emails and hands them to the
// background dispatcher. Delivery is best-effort; a full queue is
// logged and dropped rather than blocking the signup path.
type EmailNotifier struct {
	dispatcher *mailer.Dispatcher
	baseURL    string
}

func NewEmailNotifier(dispatcher *mailer.Dispatcher, baseURL string) *EmailNotifier {
	return &EmailNotifier{dispatcher: dispatcher, baseURL: baseURL}
}

func (n *EmailNotifier) QueueConfirmation(email, username, token string) {
	body, err := mailer.RenderConfirmation(mailer.ConfirmationData{
		Username:   username,
		AppName:    constants.AppName,
		ConfirmURL: mailer.ConfirmURL(n.baseURL, token),
		PixelURL:   mailer.PixelURL(n.baseURL, username),
	})
	if err != nil {
		logger.GetLogger().Error("Failed to render confirmation email",
			zap.String("email", email),
			zap.Error(err),
		)
		return
	}

	if !n.dispatcher.Enqueue(mailer.Message{
		To:      email,
		Subject: "Confirm your email",
		Body:    body,
	}) {
		logger.GetLogger().Warn("Confirmation email dropped, queue full",
			zap.String("email", email),
		)
	}
}
