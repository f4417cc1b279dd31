package worker

import (
	"github.com/spec-kit/clinic-booking/internal/service"
)

// StartNotificationWorker registers notification handlers and returns the function that stops them.
func StartNotificationWorker(notificationService *service.NotificationService) (stop func()) {
	if notificationService == nil {
		return func() {}
	}
	return notificationService.RegisterHandlers()
}
