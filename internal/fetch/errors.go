package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure so the pipeline can decide skip-vs-abort
// explicitly instead of swallowing everything at the call site.
type Kind int

const (
	// KindTransient covers network errors, timeouts and non-2xx responses.
	KindTransient Kind = iota
	// KindParse covers unexpected payload shape or missing fields.
	KindParse
	// KindInsufficientData marks a series too short to analyze.
	KindInsufficientData
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindParse:
		return "parse"
	case KindInsufficientData:
		return "insufficient_data"
	}
	return "unknown"
}

// Error is a classified fetch failure for one ticker/source.
type Error struct {
	Kind   Kind
	Op     string
	Ticker string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Ticker, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, op, ticker string, err error) *Error {
	return &Error{Kind: kind, Op: op, Ticker: ticker, Err: err}
}

// KindOf extracts the failure kind, defaulting to transient for untyped errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}

func IsInsufficientData(err error) bool {
	return KindOf(err) == KindInsufficientData
}
