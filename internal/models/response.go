// Package models defines API response envelope structures for FanFlow.
package models

// APIResponse is the standard envelope for all HTTP API responses.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Response status constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Success creates a success response with a result payload.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: StatusOK, Result: result}
}

// SuccessWithMessage creates a success response with a message and payload.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: StatusOK, Message: message, Result: result}
}

// Error creates an error response with a user-facing message.
func Error(message string) APIResponse {
	return APIResponse{Status: StatusError, Message: message}
}
