package response

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
)

// ErrorResponse is the body of every failed request: a human-readable detail
// string plus a machine code.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data) //struct to json
}

// Error maps an AppError onto its status code and detail body. Anything else
// becomes an opaque 500; internals never leak to the client.
func Error(w http.ResponseWriter, err error) {

	if appErr, ok := apperrors.IsAppError(err); ok {

		body := ErrorResponse{Detail: appErr.Message, Code: appErr.Code}
		if appErr.Detail != "" {
			body.Detail = appErr.Detail
		}

		WriteJson(w, appErr.StatusCode, body)
		return
	}

	WriteJson(w, http.StatusInternalServerError, ErrorResponse{
		Detail: "An unexpected error occurred",
		Code:   apperrors.ErrCodeInternal,
	})
}

func Message(w http.ResponseWriter, statusCode int, message string) {
	WriteJson(w, statusCode, MessageResponse{Message: message})
}
