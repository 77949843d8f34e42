package response

import "net/http"

// Error is an HTTP status paired with the message safe to show the caller.
type Error struct {
	Code    int
	Message string
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, message string) Error {
	return Error{
		Code:    code,
		Message: message,
	}
}

var (
	ErrUnauthorized = NewError(http.StatusUnauthorized, "unauthorized")
	ErrInternal     = NewError(http.StatusInternalServerError, "internal server error")
)
