package notification

import (
	"context"
	"fmt"

	"staybridge/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NotificationService delivers booking event pushes to the owning user's
// devices. Delivery is best-effort.
type NotificationService interface {
	SendBookingEvent(ctx context.Context, event models.NotificationEvent) error
}

// DeviceTokenSource resolves a user's registered push tokens; implemented by
// the user-device subsystem outside this core.
type DeviceTokenSource interface {
	TokensForUser(ctx context.Context, userID string) ([]string, error)
}

// FCMNotificationService implements NotificationService over Firebase Cloud
// Messaging.
type FCMNotificationService struct {
	client *messaging.Client
	Tokens DeviceTokenSource
	Logger *zap.Logger
}

// NewFCMNotificationService initializes the Firebase app from a
// service-account credentials file.
func NewFCMNotificationService(ctx context.Context, credentialsFile string, tokens DeviceTokenSource, logger *zap.Logger) (*FCMNotificationService, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	return &FCMNotificationService{client: client, Tokens: tokens, Logger: logger}, nil
}

func (s *FCMNotificationService) SendBookingEvent(ctx context.Context, event models.NotificationEvent) error {
	tokens, err := s.Tokens.TokensForUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve device tokens for %s: %w", event.UserID, err)
	}
	if len(tokens) == 0 {
		return nil
	}

	title, body := renderBookingEvent(event)
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"flowId":      event.FlowID,
			"event":       event.Event,
			"bookingCode": event.BookingCode,
		},
	}
	res, err := s.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to push booking event: %w", err)
	}
	if res.FailureCount > 0 {
		s.Logger.Warn("some booking event pushes failed",
			zap.String("flow", event.FlowID),
			zap.Int("failures", res.FailureCount))
	}
	return nil
}

func renderBookingEvent(event models.NotificationEvent) (string, string) {
	switch event.Event {
	case "booking_cancelled":
		return "Booking cancelled", fmt.Sprintf("Your booking %s has been cancelled.", event.BookingCode)
	default:
		return "Booking confirmed", fmt.Sprintf("Your booking %s is confirmed. Have a great stay!", event.BookingCode)
	}
}
