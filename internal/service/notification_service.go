package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// forwardTimeout bounds one publish independently of the request deadline.
const forwardTimeout = 2 * time.Second

// EventPublisher forwards serialized events to an external channel.
type EventPublisher interface {
	Enabled() bool
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService logs ticket events and forwards them to the
// configured publisher.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  EventPublisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, publisher EventPublisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if !n.cfg.ForwardEvents || n.publisher == nil || !n.publisher.Enabled() {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), forwardTimeout)
	defer cancel()
	if err := n.publisher.Publish(ctx, n.cfg.Channel, body); err != nil {
		return fmt.Errorf("forward %s event: %w", event.Type, err)
	}
	return nil
}
