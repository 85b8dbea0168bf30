// Package response writes the JSON envelope for routes served outside the huma API
// (router fallbacks and middleware rejections).
package response

import (
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

// Version is the envelope format version, sent as "v".
const Version = 1

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Ok wraps data in a success envelope.
func Ok(data any) Envelope {
	return Envelope{Version: Version, Success: true, Data: data}
}

// Fail builds an error envelope. Error and Message carry the same text.
func Fail(code domainerrors.Code, message string, details any) Envelope {
	return Envelope{
		Version: Version,
		Success: false,
		Error:   message,
		Code:    string(code),
		Message: message,
		Details: details,
	}
}

// JSON writes env with the given status code.
func JSON(w http.ResponseWriter, status int, env Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := codec.NewEncoder(w).Encode(env); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, Ok(data), logger)
}

// Error writes an error response for code with the code's HTTP status.
func Error(w http.ResponseWriter, code domainerrors.Code, message string, logger *slog.Logger) {
	JSON(w, code.HTTPStatus(), Fail(code, message, nil), logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeNotFound, message, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, message string, logger *slog.Logger) {
	JSON(w, http.StatusMethodNotAllowed, Fail(domainerrors.CodeValidation, message, nil), logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeInternal, message, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain errors keep their code and details, unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		JSON(w, domainErr.HTTPStatus(), Fail(domainErr.Code, domainErr.Message, domainErr.Details), logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
