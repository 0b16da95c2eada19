package service

import (
	"context"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-support-agent/internal/config"
	"github.com/spec-kit/voice-support-agent/internal/events"
	"github.com/spec-kit/voice-support-agent/internal/persistence"
)

// NotificationService forwards domain events to the Redis channel a downstream
// messaging worker (WhatsApp updates) consumes.
type NotificationService struct {
	dispatcher events.Dispatcher
	redis      *persistence.Redis
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, redis *persistence.Redis, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		redis:      redis,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.forward)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.forward)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.forward)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.forward)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID))

	if strings.TrimSpace(n.cfg.Channel) == "" || n.redis == nil {
		return nil
	}
	payload, err := sonic.Marshal(event)
	if err != nil {
		n.logger.Warn("marshal ticket event", zap.Error(err))
		return nil
	}
	if err := n.redis.Publish(ctx, n.cfg.Channel, payload); err != nil {
		// A session must not fail because the notification side is down.
		n.logger.Warn("publish ticket event", zap.Error(err))
	}
	return nil
}
