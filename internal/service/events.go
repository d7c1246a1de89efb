package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
)

const (
	eventUserRegistered = "user_registered"
	eventUserSignedIn   = "user_signed_in"

	publishTimeout = 5 * time.Second
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

type userEvents struct {
	pub   EventPublisher
	topic string
}

// publish never fails the request; a broker outage only costs the event.
func (e *userEvents) publish(ctx context.Context, typ string, user *models.User) {
	if e == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := UserEvent{
		Type:       typ,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := e.pub.PublishEvent(ctx, e.topic, user.ID, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "event", typ, "user_id", user.ID, "error", err)
	}
}
