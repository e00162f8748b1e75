package interaction

import (
	"errors"
	"fmt"

	"bot-dispatch/internal/metrics"
)

type Reason string

const (
	// ReasonExpired means the reply window closed before the first answer.
	ReasonExpired Reason = "expired"
	// ReasonFailed means Discord rejected the answer or the request failed.
	ReasonFailed Reason = "failed"
)

var (
	ErrExpired          = errors.New("interaction reply window expired")
	ErrAlreadyResponded = errors.New("interaction already acknowledged")
)

// ReplyError is returned by every reply primitive of an Invocation.
type ReplyError struct {
	Message       string
	InteractionID string
	Reason        Reason
	Err           error
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s (interaction %s, %s): %v", e.Message, e.InteractionID, e.Reason, e.Err)
}

func (e *ReplyError) Unwrap() error {
	return e.Err
}

func newReplyError(msg, interactionID string, reason Reason, err error) *ReplyError {
	metrics.ReplyFailures.WithLabelValues(string(reason)).Inc()
	return &ReplyError{Message: msg, InteractionID: interactionID, Reason: reason, Err: err}
}

// IsExpired reports whether err is a ReplyError caused by the reply window.
func IsExpired(err error) bool {
	var re *ReplyError
	return errors.As(err, &re) && re.Reason == ReasonExpired
}
