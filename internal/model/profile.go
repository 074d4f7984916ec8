package model

import "time"

// StatusSuccess is the status value of every successful profile response.
const StatusSuccess = "success"

// TimestampLayout is the ISO-8601 layout used for ProfileResponse.Timestamp.
// Fractional seconds are kept, trailing zeros trimmed.
const TimestampLayout = time.RFC3339Nano

// ProfileResponse is the body of a successful GET /me.
type ProfileResponse struct {
	Status    string `json:"status"`
	User      User   `json:"user"`
	Timestamp string `json:"timestamp"`
	Fact      string `json:"fact"`
}

// NewProfileResponse composes a response stamped with at, converted to UTC.
func NewProfileResponse(user User, fact string, at time.Time) *ProfileResponse {
	return &ProfileResponse{
		Status:    StatusSuccess,
		User:      user,
		Timestamp: at.UTC().Format(TimestampLayout),
		Fact:      fact,
	}
}

// WelcomeMessage is the body of GET /.
const WelcomeMessage = "Hello there! Thanks for checking out my API."

// Generic error envelope text. Causes are never exposed to callers.
const (
	ErrorMessageGeneric = "An error occurred while processing your request."
	ErrorMessageRetry   = "Please try again later."
)

// ErrorResponse is the error envelope shared by 5xx and 429 responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GenericError returns the non-leaking 500 envelope.
func GenericError() ErrorResponse {
	return ErrorResponse{
		Error:   ErrorMessageGeneric,
		Message: ErrorMessageRetry,
	}
}
