package service

import (
	"context"

	"author-be/internal/pkg/logger"
	"author-be/pkg/events"
	pktNats "author-be/pkg/nats"
)

const auditDurable = "content-audit"

// ContentSubscriber is the part of the NATS subscriber the audit trail needs.
type ContentSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// AuditService writes every content stream event to the audit log.
type AuditService struct {
	subscriber ContentSubscriber
	auditLog   logger.ILogger
}

func NewAuditService(subscriber ContentSubscriber, auditLog logger.ILogger) *AuditService {
	return &AuditService{
		subscriber: subscriber,
		auditLog:   auditLog,
	}
}

func (s *AuditService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+".>", auditDurable, s.Handle)
}

func (s *AuditService) Handle(ctx context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+2)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["event"] = event.EventType()
	details["occurred_at"] = event.Timestamp()

	s.auditLog.Info("Audit", event.EventType(), details)
	return nil
}
