package models

// APIError represents a standardized error response format for the API.
// @Description APIError carries an application-specific error code, a human-readable message and optional details.
type APIError struct {
	Code    string      `json:"code"`              // Application-specific error code (e.g. "UPSTREAM_ERROR")
	Message string      `json:"message"`           // Human-readable message describing the error
	Details interface{} `json:"details,omitempty"` // Optional additional details (e.g. upstream status)
}

// Predefined application-specific error codes
const (
	// Generic Errors
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorCodeRequestTimeout      = "REQUEST_TIMEOUT"

	// Input Validation
	ErrorCodeValidation  = "VALIDATION_ERROR" // General validation failure
	ErrorCodeInvalidJSON = "INVALID_JSON"     // Malformed JSON payload

	// Upstream Errors
	ErrorCodeUpstream               = "UPSTREAM_ERROR"           // Layout or GraphQL service failed or answered non-2xx
	ErrorCodeInvalidUpstreamPayload = "INVALID_UPSTREAM_PAYLOAD" // Upstream answered 2xx with an undecodable body
)
