// Package dto defines the request and response shapes exchanged between the
// HTTP layer and the application services.
package dto

// AuthorizeRequest carries the query parameters of GET /authorize.
type AuthorizeRequest struct {
	ClientID     string `form:"client_id"`
	RedirectURI  string `form:"redirect_uri"`
	ResponseType string `form:"response_type"`
	Scope        string `form:"scope"`
	State        string `form:"state"`
	Nonce        string `form:"nonce"`
}

// CompleteAuthorizationRequest is posted by the login UI once the user has
// authenticated, referencing the pending request by its opaque id.
type CompleteAuthorizationRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	SubjectID string `json:"subject_id" binding:"required"`
}

// RequestInfo carries request source details for audit records.
type RequestInfo struct {
	IP        string
	UserAgent string
}
