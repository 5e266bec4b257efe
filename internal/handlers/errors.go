package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// invalidRequestMessage is reported for bodies that fail to decode or validate.
const invalidRequestMessage = "Invalid request data"

// APIError is the body of every error response.
type APIError struct {
	Status  int    `json:"status"  doc:"HTTP status code"`
	Message string `json:"message" doc:"Human readable message"`
	Success bool   `json:"success" doc:"Always false"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) GetStatus() int {
	return e.Status
}

func apiError(status int, msg string) *APIError {
	return &APIError{Status: status, Message: msg}
}

// newHumaError replaces huma.NewError so errors raised by huma itself (body
// decoding, validation, middleware) use the same model. Validation failures
// are reported as plain 400s.
func newHumaError(status int, msg string, _ ...error) huma.StatusError {
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return apiError(http.StatusBadRequest, invalidRequestMessage)
	}

	return apiError(status, msg)
}

func init() {
	huma.NewError = newHumaError
}
