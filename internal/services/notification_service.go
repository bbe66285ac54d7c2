package services

import (
	"context"
	"fmt"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/pkg/logger"
	"github.com/theia-io/drivebetter-sub000/pkg/push"
)

// NotificationService fans a freshly created share out to its candidate
// pool. Delivery is best effort: push is an external collaborator and a
// failed send never fails share creation.
type NotificationService interface {
	NotifyShareCreated(ctx context.Context, share *models.RideShare)
}

type notificationService struct {
	provider push.PushProvider
	logger   *logger.Logger
}

func NewNotificationService(provider push.PushProvider, log *logger.Logger) NotificationService {
	return &notificationService{
		provider: provider,
		logger:   log,
	}
}

func (s *notificationService) NotifyShareCreated(ctx context.Context, share *models.RideShare) {
	if s.provider == nil {
		return
	}

	for _, topic := range shareTopics(share) {
		req := &push.NotificationRequest{
			Topic: topic,
			Title: "New ride available",
			Body:  "A ride was shared with you. Open the link to claim it.",
			Data: map[string]string{
				"share_id":  share.ID.Hex(),
				"share_url": share.ShareURL,
				"ride_id":   share.RideID.Hex(),
			},
		}

		if _, err := s.provider.SendNotification(ctx, req); err != nil {
			s.logger.WithShareID(share.ID).WithError(err).
				Warnf("failed to push share notification to topic %s", topic)
		}
	}
}

// shareTopics maps a share's audience onto FCM topics: one per targeted
// driver, one per targeted group, or the broadcast topic for public shares.
func shareTopics(share *models.RideShare) []string {
	switch share.Visibility {
	case models.ShareVisibilityDrivers:
		topics := make([]string, 0, len(share.DriverIDs))
		for _, id := range share.DriverIDs {
			topics = append(topics, fmt.Sprintf("driver_%s", id.Hex()))
		}
		return topics
	case models.ShareVisibilityGroups:
		topics := make([]string, 0, len(share.GroupIDs))
		for _, id := range share.GroupIDs {
			topics = append(topics, fmt.Sprintf("group_%s", id.Hex()))
		}
		return topics
	case models.ShareVisibilityPublic:
		return []string{"drivers_all"}
	default:
		return nil
	}
}
