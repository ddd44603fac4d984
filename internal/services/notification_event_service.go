package services

import (
	"context"

	"github.com/InternBridge/internship-service/internal/events"
	"github.com/InternBridge/internship-service/internal/utils"
)

// notificationEventService is a thin typed layer over the event publisher.
// Publish failures are logged and swallowed so a broker outage never fails a
// user request.
type notificationEventService struct {
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewNotificationEventService(publisher events.EventPublisher, logger utils.Logger) NotificationEventService {
	return &notificationEventService{publisher: publisher, logger: logger}
}

func (s *notificationEventService) ApplicationSubmitted(ctx context.Context, internshipID, applicationID, applicantID, company, title string) {
	s.publish(ctx, events.TypeApplicationSubmitted, events.ApplicationSubmitted{
		InternshipID:  internshipID,
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		Company:       company,
		Title:         title,
	})
}

func (s *notificationEventService) ApplicationStatusChanged(ctx context.Context, internshipID, applicationID, status, changedBy string) {
	s.publish(ctx, events.TypeApplicationStatusChanged, events.ApplicationStatusChanged{
		InternshipID:  internshipID,
		ApplicationID: applicationID,
		Status:        status,
		ChangedBy:     changedBy,
	})
}

func (s *notificationEventService) BadgeAwarded(ctx context.Context, userID, badge string) {
	s.publish(ctx, events.TypeBadgeAwarded, events.BadgeAwarded{
		UserID: userID,
		Badge:  badge,
	})
}

func (s *notificationEventService) UserVerified(ctx context.Context, userID, email string, verified bool, setBy string) {
	s.publish(ctx, events.TypeUserVerified, events.UserVerified{
		UserID:   userID,
		Email:    email,
		Verified: verified,
		SetBy:    setBy,
	})
}

func (s *notificationEventService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Warn("event publish failed", "event_type", eventType, "error", err)
	}
}

func (s *notificationEventService) Close() error {
	return s.publisher.Close()
}
