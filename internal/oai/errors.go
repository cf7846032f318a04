package oai

import (
	"errors"
	"fmt"
)

// ErrTransient indicates a transport-level failure (timeout, connection
// failure) that exhausted the client's local retries. The whole run can be
// resumed later; progress up to the failing page is preserved by the caller.
var ErrTransient = errors.New("transient transport failure")

// RequestError is a fatal, non-retried error for an unexpected HTTP status.
type RequestError struct {
	StatusCode int
	Body       string // truncated response body
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("unexpected HTTP %d: %s", e.StatusCode, e.Body)
}

// ProtocolError is a fatal error carried in the OAI error envelope. The
// "noRecordsMatch" case for a date scope is handled by the client as a valid
// empty result and never surfaces as a ProtocolError.
type ProtocolError struct {
	Code    string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error %q: %s", e.Code, e.Message)
}

// IsTransient returns true if the error is recoverable by resuming the run.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsFatal returns true for errors that must terminate the run after a final
// checkpoint and best-effort flush.
func IsFatal(err error) bool {
	var reqErr *RequestError
	var protoErr *ProtocolError
	return errors.As(err, &reqErr) || errors.As(err, &protoErr)
}

// IsStaleToken returns true if the remote host no longer recognizes a
// resumption token. Tokens can expire across long idle gaps between runs;
// in date-partitioned mode the scope is restarted from scratch.
func IsStaleToken(err error) bool {
	var protoErr *ProtocolError
	return errors.As(err, &protoErr) && protoErr.Code == "badResumptionToken"
}
