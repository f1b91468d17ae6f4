package service

import (
	"context"

	"legal-research-be/internal/pkg/logger"
	"legal-research-be/pkg/events"
	pktNats "legal-research-be/pkg/nats"
)

type IEventLogService interface {
	Start() error
}

// eventLogService consumes the JetStream event feed and writes an audit trail
// through the structured logger. Downstream systems attach their own durable
// consumers to the same stream.
type eventLogService struct {
	subscriber *pktNats.Subscriber
	sysLogger  logger.ILogger
}

func NewEventLogService(subscriber *pktNats.Subscriber, sysLogger logger.ILogger) IEventLogService {
	return &eventLogService{
		subscriber: subscriber,
		sysLogger:  sysLogger,
	}
}

func (s *eventLogService) Start() error {
	return s.subscriber.Subscribe("events.>", "event-log", func(ctx context.Context, event events.Event) error {
		s.sysLogger.Info("events", "Event received", map[string]interface{}{
			"type":    event.EventType(),
			"payload": event.Payload(),
		})
		return nil
	})
}
