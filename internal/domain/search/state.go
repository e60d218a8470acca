package search

import "github.com/yanqian/aqi-search/internal/domain/aqi"

// Kind tags the variant held by a State.
type Kind int

const (
	KindIdle Kind = iota
	KindLoading
	KindSuccess
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is exactly one of Idle, Loading, Success(reading) or Failed(message).
// The zero value is Idle.
type State struct {
	kind    Kind
	reading aqi.Reading
	message string
}

// Idle is the initial state.
func Idle() State { return State{kind: KindIdle} }

// Loading marks a query in flight.
func Loading() State { return State{kind: KindLoading} }

// Succeeded holds a completed reading.
func Succeeded(reading aqi.Reading) State { return State{kind: KindSuccess, reading: reading} }

// Failed holds the message shown to the user.
func Failed(message string) State { return State{kind: KindFailed, message: message} }

// Kind reports the active variant.
func (s State) Kind() Kind { return s.kind }

// Reading returns the stored reading; ok is false outside Success.
func (s State) Reading() (aqi.Reading, bool) {
	if s.kind != KindSuccess {
		return aqi.Reading{}, false
	}
	return s.reading, true
}

// Message returns the failure message; empty outside Failed.
func (s State) Message() string {
	if s.kind != KindFailed {
		return ""
	}
	return s.message
}

func (s State) String() string {
	switch s.kind {
	case KindSuccess:
		return "success(" + s.reading.City + ")"
	case KindFailed:
		return "failed(" + s.message + ")"
	default:
		return s.kind.String()
	}
}
