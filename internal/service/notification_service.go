package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/events"
)

// NotificationService forwards user lifecycle events to the external message
// channel and emits user-facing notifications. Delivery is fire and forget;
// failures are observed only through the publisher's logging.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  events.Publisher
	logger     *zap.Logger
	cfg        config.EventsConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher events.Publisher, logger *zap.Logger, cfg config.EventsConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to user lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserCreated, n.relayUserEvent)
	n.dispatcher.Subscribe(events.EventUserUpdated, n.relayUserEvent)
	n.dispatcher.Subscribe(events.EventUserDeleted, n.relayUserEvent)
	n.dispatcher.Subscribe(events.EventUserCreated, n.sendWelcomeNotification)
}

func (n *NotificationService) relayUserEvent(_ context.Context, event events.Event) error {
	n.logger.Info("relaying user event",
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserID))
	n.publisher.Publish(n.cfg.UserEventsStream, event.UserID, event)
	return nil
}

func (n *NotificationService) sendWelcomeNotification(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserEventPayload)
	if !ok {
		n.logger.Warn("unexpected payload type on user created event", zap.String("event_id", event.ID))
		return nil
	}

	notification := events.Notification{
		Recipient: payload.Email,
		Subject:   "Welcome to User Management System",
		Content:   fmt.Sprintf("Hello %s, your account has been created successfully!", payload.FullName),
		Timestamp: time.Now(),
	}
	n.publisher.Publish(n.cfg.NotificationsStream, payload.Email, notification)
	return nil
}
