package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/events"
)

// NotificationService tells patients and the clinic about booking changes.
// Delivery is stubbed to structured logs.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to booking events and returns a function that removes them.
func (n *NotificationService) RegisterHandlers() (unsubscribe func()) {
	if n.dispatcher == nil {
		return func() {}
	}
	unsubs := []func(){
		n.dispatcher.Subscribe(events.EventAppointmentBooked, n.handleAppointmentBooked),
		n.dispatcher.Subscribe(events.EventAppointmentCancelled, n.handleAppointmentCancelled),
		n.dispatcher.Subscribe(events.EventAppointmentRescheduled, n.handleAppointmentRescheduled),
		n.dispatcher.Subscribe(events.EventCatalogSeeded, n.handleCatalogSeeded),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (n *NotificationService) handleAppointmentBooked(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AppointmentPayload)
	n.logger.Info("AppointmentBooked",
		zap.String("appointment_id", event.SubjectID),
		zap.String("date", payload.Appointment.Date.String()),
		zap.String("time", payload.Appointment.Time))
	n.sendEmailNotificationStub(ctx, event, payload.Appointment.PatientEmail)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAppointmentCancelled(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AppointmentPayload)
	n.logger.Info("AppointmentCancelled", zap.String("appointment_id", event.SubjectID))
	n.sendEmailNotificationStub(ctx, event, payload.Appointment.PatientEmail)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAppointmentRescheduled(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AppointmentPayload)
	n.logger.Info("AppointmentRescheduled",
		zap.String("appointment_id", event.SubjectID),
		zap.String("date", payload.Appointment.Date.String()),
		zap.String("time", payload.Appointment.Time))
	n.sendEmailNotificationStub(ctx, event, payload.Appointment.PatientEmail)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCatalogSeeded(ctx context.Context, event events.Event) error {
	n.logger.Info("CatalogSeeded", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
