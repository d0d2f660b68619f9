package dto

// ErrorResponse represents a generic error response body.
// Error carries the underlying cause and is only populated in development.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MessageResponse is a body carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}
