package worker

import (
	"github.com/spec-kit/user-service/internal/service"
)

// StartNotificationWorker registers the event subscribers that relay user
// lifecycle events and notifications to the message channel.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
