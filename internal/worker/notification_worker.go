package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher.
// Handlers run synchronously inside Publish; there is no background queue.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
