package worker

import (
	"context"

	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// ReporterClearer detaches issues from a reporter account.
type ReporterClearer interface {
	ClearReporter(accountID string)
}

// StartReporterCleanup keeps issues of deleted accounts while dropping the
// reporter reference. Only needed for stores without a foreign key doing it.
func StartReporterCleanup(dispatcher events.Dispatcher, clearer ReporterClearer) {
	if dispatcher == nil || clearer == nil {
		return
	}
	dispatcher.Subscribe(events.EventAccountDeleted, func(_ context.Context, event events.Event) error {
		clearer.ClearReporter(event.SubjectID)
		return nil
	})
}
