package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
)

// EmailSender sends a single email. *mailer.Mailer implements it.
type EmailSender interface {
	SendEmail(recipient, subject, body string) error
}

type emailTemplate struct {
	subject string
	body    func(event models.SocialEvent) string
}

var templates = map[string]emailTemplate{
	models.EventFriendRequestSent: {
		subject: "Tienes una nueva solicitud de amistad",
		body: func(e models.SocialEvent) string {
			return fmt.Sprintf("<p><strong>%s</strong> quiere ser tu amigo en Tranki.</p><p>Abre la app para aceptar o rechazar la solicitud.</p>", actor(e))
		},
	},
	models.EventFriendRequestAccepted: {
		subject: "Aceptaron tu solicitud de amistad",
		body: func(e models.SocialEvent) string {
			return fmt.Sprintf("<p><strong>%s</strong> aceptó tu solicitud de amistad. Ahora verás sus estados en tu feed.</p>", actor(e))
		},
	},
	models.EventStateLiked: {
		subject: "A alguien le gustó tu estado",
		body: func(e models.SocialEvent) string {
			return fmt.Sprintf("<p>A <strong>%s</strong> le gustó el estado que compartiste.</p>", actor(e))
		},
	},
	models.EventStateCommented: {
		subject: "Nuevo comentario en tu estado",
		body: func(e models.SocialEvent) string {
			return fmt.Sprintf("<p><strong>%s</strong> comentó tu estado:</p><blockquote>%s</blockquote>", actor(e), html.EscapeString(e.Text))
		},
	},
}

func actor(e models.SocialEvent) string {
	if e.ActorName == "" {
		return "Un amigo"
	}
	return html.EscapeString(e.ActorName)
}

// Notifier emails the target user of each social event.
type Notifier struct {
	users  db.UserRepository
	sender EmailSender
	logger *zap.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(users db.UserRepository, sender EmailSender, logger *zap.Logger) *Notifier {
	return &Notifier{users: users, sender: sender, logger: logger}
}

// Handle decodes one queued event and emails its target. Malformed messages and
// events for unknown users are dropped; SMTP failures are returned so the
// delivery is retried.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	var event models.SocialEvent
	if err := json.Unmarshal(body, &event); err != nil {
		n.logger.Warn("Dropping malformed social event", zap.Error(err))
		return nil
	}
	if !Notifies(event) {
		return nil
	}
	tpl := templates[event.Type]

	user, err := n.users.GetByID(ctx, event.TargetID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			n.logger.Warn("Notification target not found", zap.String("user_id", event.TargetID), zap.String("type", event.Type))
			return nil
		}
		return fmt.Errorf("failed to load notification target: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	if err := n.sender.SendEmail(user.Email, tpl.subject, tpl.body(event)); err != nil {
		return err
	}
	n.logger.Info("Notification sent", zap.String("user_id", user.ID), zap.String("type", event.Type))
	return nil
}
