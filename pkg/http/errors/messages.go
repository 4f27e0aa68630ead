package errors

import "net/http"

// Fixed client-facing messages, one per status. Error bodies never carry
// per-request detail.
const (
	MessageBadRequest       = "bad request"
	MessageNotFound         = "resource not found"
	MessageMethodNotAllowed = "method not allowed"
	MessageUnprocessable    = "unprocessable"
	MessageInternal         = "internal service error has occured"
)

// MessageFor returns the fixed message rendered for status.
func MessageFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return MessageBadRequest
	case http.StatusNotFound:
		return MessageNotFound
	case http.StatusMethodNotAllowed:
		return MessageMethodNotAllowed
	case http.StatusUnprocessableEntity:
		return MessageUnprocessable
	default:
		return MessageInternal
	}
}
