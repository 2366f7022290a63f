package models

import "time"

// AuthorizationState is a step in the interactive authorization sequence.
// The happy path runs ReceivedRequest through RedirectedToClient; any
// validation failure moves the transaction to RejectedInvalidRequest, which
// is terminal.
type AuthorizationState string

const (
	StateReceivedRequest            AuthorizationState = "received_request"
	StateParametersValidated        AuthorizationState = "parameters_validated"
	StateAwaitingUserAuthentication AuthorizationState = "awaiting_user_authentication"
	StateAuthenticated              AuthorizationState = "authenticated"
	StateGrantIssued                AuthorizationState = "grant_issued"
	StateRedirectedToClient         AuthorizationState = "redirected_to_client"
	StateRejectedInvalidRequest     AuthorizationState = "rejected_invalid_request"
)

// validTransitions maps each state to the states reachable from it.
var validTransitions = map[AuthorizationState][]AuthorizationState{
	StateReceivedRequest:            {StateParametersValidated, StateRejectedInvalidRequest},
	StateParametersValidated:        {StateAwaitingUserAuthentication, StateRejectedInvalidRequest},
	StateAwaitingUserAuthentication: {StateAuthenticated, StateRejectedInvalidRequest},
	StateAuthenticated:              {StateGrantIssued, StateRejectedInvalidRequest},
	StateGrantIssued:                {StateRedirectedToClient},
}

// CanTransitionTo reports whether a transition is permitted.
func (s AuthorizationState) CanTransitionTo(next AuthorizationState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions.
func (s AuthorizationState) IsTerminal() bool {
	return s == StateRedirectedToClient || s == StateRejectedInvalidRequest
}

// PendingAuthorization holds a validated authorization request while the
// user authenticates out of band. It is keyed by an opaque request id,
// stored with a TTL, and consumed exactly once when the login UI reports
// the authenticated subject.
type PendingAuthorization struct {
	RequestID      string             `json:"request_id"`
	ClientID       string             `json:"client_id"`
	RedirectURI    string             `json:"redirect_uri"`
	ResponseType   string             `json:"response_type"`
	Scope          string             `json:"scope"`
	State          string             `json:"state,omitempty"`
	Nonce          string             `json:"nonce,omitempty"`
	OrganizationID string             `json:"organization_id,omitempty"`
	AuthState      AuthorizationState `json:"auth_state"`
	CreatedAt      time.Time          `json:"created_at"`
	ExpiresAt      time.Time          `json:"expires_at"`
}

// IsExpired reports whether the pending request is past its TTL.
func (p *PendingAuthorization) IsExpired() bool {
	return time.Now().UTC().After(p.ExpiresAt)
}
