package commands

import (
	"errors"
	"fmt"
)

var (
	ErrCommandNotFound   = errors.New("command not found")
	ErrUnknownSubcommand = errors.New("unknown subcommand")
	ErrNoHandler         = errors.New("command has no handler")
	ErrHandlerPanic      = errors.New("handler panicked")
)

// Rejection is returned by a CheckFunc to refuse an invocation. Message is
// shown privately to the invoker; Reason labels the rejection in metrics.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected (%s): %s", r.Reason, r.Message)
}

func Reject(reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}
