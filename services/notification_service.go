package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/types/challenge"
)

// Notifier is what the domain services use to reach members.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, t notification.NotificationType, data map[string]any) error
	NotifyMembers(ctx context.Context, members []challenge.Membership, except uuid.UUID, t notification.NotificationType, data map[string]any)
}

type NotificationService struct {
	store      DeviceStore
	dispatcher *NotificationDispatcher
}

func NewNotificationService(store DeviceStore, dispatcher *NotificationDispatcher) *NotificationService {
	return &NotificationService{store: store, dispatcher: dispatcher}
}

var _ Notifier = (*NotificationService)(nil)

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req notification.RegisterDeviceRequest) error {
	return s.store.UpsertDevice(ctx, userID, req)
}

// Notify renders the template and queues a push to every device of the user.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, t notification.NotificationType, data map[string]any) error {
	notif, err := notification.New(userID, t, data)
	if err != nil {
		return err
	}

	devices, err := s.store.ListDevices(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load devices: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}

	s.dispatcher.DispatchNotification(ctx, &DispatchJob{Notification: notif, Devices: devices})
	return nil
}

// NotifyMembers fans out to every member except one. Failures are logged.
func (s *NotificationService) NotifyMembers(ctx context.Context, members []challenge.Membership, except uuid.UUID, t notification.NotificationType, data map[string]any) {
	for _, m := range members {
		if m.UserID == except {
			continue
		}
		if err := s.Notify(ctx, m.UserID, t, data); err != nil {
			logger.Log.Warn("notify member failed",
				zap.Stringer("user_id", m.UserID),
				zap.String("type", string(t)),
				zap.Error(err),
			)
		}
	}
}

func (s *NotificationService) Stop() {
	s.dispatcher.Stop()
}
