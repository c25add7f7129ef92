package erp

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transport and codec layers. Callers classify with
// errors.Is; RemoteError and TimeoutError carry extra diagnostics.
var (
	ErrConnectFailed     = errors.New("erp: connect failed")
	ErrIO                = errors.New("erp: io error")
	ErrTimeout           = errors.New("erp: response timeout")
	ErrMalformedResponse = errors.New("erp: malformed response document")
	ErrEmptySearchTerm   = errors.New("erp: search term is empty")
	ErrUnsafeSearchTerm  = errors.New("erp: search term contains markup characters")
)

// TimeoutError is returned when the framing rule was not satisfied before the
// deadline. Partial holds whatever bytes had accumulated, for diagnostics.
type TimeoutError struct {
	Partial []byte
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("erp: response timeout after %d buffered bytes", len(e.Partial))
}

// Is lets errors.Is(err, ErrTimeout) match.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// RemoteError is returned when the ERP answered with a non-zero error code.
// It is never retried; the router treats it like an empty result set.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("erp: remote rejected request (code %d)", e.Code)
	}
	return fmt.Sprintf("erp: remote rejected request (code %d): %s", e.Code, e.Message)
}
