package models

import "time"

// ServiceAccess records that a subject has granted a client ongoing access
// with a given scope and expiry. Written on every successful code
// redemption; consulted for later revocation and audit.
type ServiceAccess struct {
	ID             string     `json:"id" db:"id"`
	SubjectID      string     `json:"subject_id" db:"subject_id"`
	ClientID       string     `json:"client_id" db:"client_id"`
	OrganizationID string     `json:"organization_id,omitempty" db:"organization_id"`
	Scope          string     `json:"scope" db:"scope"`
	GrantedAt      time.Time  `json:"granted_at" db:"granted_at"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// IsActive reports whether the access record is neither revoked nor expired.
func (a *ServiceAccess) IsActive() bool {
	return a.RevokedAt == nil && time.Now().UTC().Before(a.ExpiresAt)
}
