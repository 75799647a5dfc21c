package stream

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned by Send, without touching the network, when
// the history is empty or the token is missing.
var ErrInvalidRequest = errors.New("stream: history and token are required")

// Kind classifies a failed send.
type Kind int

const (
	KindTransport Kind = iota // the proxy could not be reached or the body broke off
	KindRateLimit             // 429
	KindQuota                 // 402
	KindUpstream              // any other non-2xx
	KindAuth                  // 401, or no usable session on the client side
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRateLimit:
		return "rate_limit"
	case KindQuota:
		return "quota"
	case KindUpstream:
		return "upstream"
	case KindAuth:
		return "auth"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var defaultMessages = map[Kind]string{
	KindTransport: "Connection lost. Please check your network and try again.",
	KindRateLimit: "Rate limit exceeded. Please wait a moment and try again. 🙏",
	KindQuota:     "Service temporarily unavailable. Please try again later. 🙏",
	KindUpstream:  "Failed to get response",
	KindAuth:      "Please sign in to continue.",
}

// Error is the terminal failure of a send. Message is safe to show to the
// user.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, status int, message string, err error) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}
