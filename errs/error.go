package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Application error codes. They map the domain error taxonomy onto HTTP
// statuses at the handler boundary.
const (
	ECONFLICT         = "conflict"          // duplicate username / email
	EINTERNAL         = "internal"          // storage or unexpected failure
	EINVALID          = "invalid"           // malformed or rejected input
	ENOTFOUND         = "not_found"         // entity absent
	ENOTAUTHENTICATED = "not_authenticated" // missing / invalid / expired token
	EUNAUTHORIZED     = "unauthorized"      // authenticated but not the owner
)

// Error is an application error. Code is machine-readable, Message is
// human-readable and safe to show to a client.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. Not used by the app itself,
// only for logging and debugging.
func (e *Error) Error() string {
	return fmt.Sprintf("chirper error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	ECONFLICT:         http.StatusConflict,
	EINVALID:          http.StatusBadRequest,
	ENOTFOUND:         http.StatusNotFound,
	ENOTAUTHENTICATED: http.StatusUnauthorized,
	EUNAUTHORIZED:     http.StatusForbidden,
	EINTERNAL:         http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code of an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// logger receives internal errors surfaced at the handler boundary.
// Replaced once by SetLogger in main.
var logger = zap.NewNop()

// SetLogger directs LogError output to the app's logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// ReturnError translates an error into a JSON {message} response with the
// matching status. Internal errors are logged and masked, so no stack or
// driver detail ever leaks to the client.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
		message = "Internal error."
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// LogError logs an error together with the request's method and path.
func LogError(r *http.Request, err error) {
	logger.Error("request error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}
