package gate

import "errors"

// Rejection codes surfaced to the HTTP layer
const (
	CodeContentPolicy = "CONTENT_POLICY_VIOLATION"
	CodeRateLimited   = "RATE_LIMITED"
)

// Rejection is returned when a submission fails a pre-acceptance check.
// A rejected submission creates nothing: no message, no notification, no
// history.
type Rejection struct {
	Code    string
	Message string
}

func (e *Rejection) Error() string {
	return e.Message
}

// IsContentPolicyViolation reports whether err is a denylist rejection
func IsContentPolicyViolation(err error) bool {
	var rej *Rejection
	return errors.As(err, &rej) && rej.Code == CodeContentPolicy
}

// IsRateLimited reports whether err is a throttling rejection
func IsRateLimited(err error) bool {
	var rej *Rejection
	return errors.As(err, &rej) && rej.Code == CodeRateLimited
}
