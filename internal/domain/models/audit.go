package models

import (
	"time"

	"github.com/wangov/sso/pkg/constants"
)

// AuditEvent is an append-only record of a security-relevant action.
// Audit writes are fire-and-forget: a failed write is logged but never
// fails the request that produced it.
type AuditEvent struct {
	ID         string                   `json:"id" db:"id"`
	Action     constants.AuditEventType `json:"action" db:"action"`
	EntityType string                   `json:"entity_type" db:"entity_type"`
	EntityID   string                   `json:"entity_id" db:"entity_id"`
	ActorID    string                   `json:"actor_id" db:"actor_id"`
	IPAddress  string                   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  string                   `json:"user_agent,omitempty" db:"user_agent"`
	Metadata   map[string]interface{}   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time                `json:"created_at" db:"created_at"`
}

// NewAuditEvent creates an audit event timestamped now.
func NewAuditEvent(action constants.AuditEventType, entityType, entityID, actorID string) *AuditEvent {
	return &AuditEvent{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		CreatedAt:  time.Now().UTC(),
	}
}

// WithRequestInfo attaches request source information.
func (e *AuditEvent) WithRequestInfo(ip, userAgent string) *AuditEvent {
	e.IPAddress = ip
	e.UserAgent = userAgent
	return e
}

// WithMetadata attaches a metadata entry.
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}
