// Package audit implements the fire-and-forget audit service: events are
// appended to the audit log repository and optionally published to Kafka
// for downstream consumers. A failed audit write never fails the request
// that produced it.
package audit

import (
	"context"
	"time"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/repository"
	"github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/pkg/logger"
)

// Publisher forwards audit events to an external stream. Optional.
type Publisher interface {
	Publish(ctx context.Context, event *models.AuditEvent) error
	Close() error
}

type auditService struct {
	repo      repository.AuditRepository
	publisher Publisher
	log       logger.Logger
}

// NewAuditService creates the audit service. publisher may be nil when
// streaming is disabled.
func NewAuditService(repo repository.AuditRepository, publisher Publisher, log logger.Logger) service.AuditService {
	return &auditService{
		repo:      repo,
		publisher: publisher,
		log:       log.WithComponent("audit"),
	}
}

func (s *auditService) Record(ctx context.Context, event *models.AuditEvent) {
	// Detach from the request context so client disconnects cannot drop
	// audit records for work that already happened.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	go func() {
		defer cancel()

		if err := s.repo.Record(writeCtx, event); err != nil {
			s.log.Error(writeCtx, "failed to record audit event", err,
				logger.String("action", string(event.Action)),
				logger.String("entity_id", event.EntityID),
			)
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(writeCtx, event); err != nil {
				s.log.Warn(writeCtx, "failed to publish audit event",
					logger.Error(err),
					logger.String("action", string(event.Action)),
				)
			}
		}
	}()
}
