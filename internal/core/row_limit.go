package core

import "fmt"

// LimitMode selects where the row limit boundary sits.
type LimitMode string

const (
	// LimitInclusive accepts exactly N data rows; row N+1 is rejected.
	LimitInclusive LimitMode = "inclusive"

	// LimitExclusive accepts N-1 data rows; row N is rejected. This matches
	// the behaviour of earlier deployments, but the rejection message states
	// N-1 so text and enforcement agree.
	LimitExclusive LimitMode = "exclusive"
)

// ParseLimitMode converts a config string to a LimitMode.
func ParseLimitMode(s string) (LimitMode, error) {
	switch LimitMode(s) {
	case LimitInclusive, LimitExclusive:
		return LimitMode(s), nil
	case "":
		return LimitInclusive, nil
	}
	return "", fmt.Errorf("unknown row limit mode %q", s)
}

// RowLimiter caps the number of data rows accepted per upload.
// A RowLimiter belongs to a single pipeline run and is not safe for
// concurrent use.
type RowLimiter struct {
	allowed  int
	accepted int
}

// NewRowLimiter builds a limiter for the configured limit and mode.
func NewRowLimiter(limit int, mode LimitMode) *RowLimiter {
	allowed := limit
	if mode == LimitExclusive {
		allowed = limit - 1
	}
	if allowed < 0 {
		allowed = 0
	}
	return &RowLimiter{allowed: allowed}
}

// Check is called before a row is validated. It fails once the accepted
// count has reached the allowed maximum.
func (l *RowLimiter) Check() error {
	if l.accepted >= l.allowed {
		return &Error{Kind: KindRowCountExceeded, Limit: l.allowed}
	}
	return nil
}

// Accept records a row that passed validation.
func (l *RowLimiter) Accept() {
	l.accepted++
}

// Accepted returns the number of rows recorded so far.
func (l *RowLimiter) Accepted() int {
	return l.accepted
}

// Allowed returns the effective maximum number of rows.
func (l *RowLimiter) Allowed() int {
	return l.allowed
}
