package scraper

import (
	stderrors "errors"
	"fmt"

	"threadgrab/pkg/errors"
)

// Reason is why a walk stopped
type Reason int

const (
	// BoundaryReached means the next post was at or below the stop-at id
	BoundaryReached Reason = iota
	// LimitReached means the configured number of posts was processed
	LimitReached
	// ThreadStart means the last post replied to nothing
	ThreadStart
	// FetchFailed means a lookup failed and the walk was aborted
	FetchFailed
	// Interrupted means the run was cancelled from outside
	Interrupted
)

// Exit codes for each kind of termination
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

func (r Reason) String() string {
	switch r {
	case BoundaryReached:
		return "boundary"
	case LimitReached:
		return "limit"
	case ThreadStart:
		return "thread-start"
	case FetchFailed:
		return "fetch-failed"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Outcome summarizes a finished walk
type Outcome struct {
	Reason    Reason
	Processed int
	// LastID is the post being handled when the walk stopped
	LastID string
	// Err is set for FetchFailed
	Err error
}

// Message is the one-line termination message
func (o Outcome) Message() string {
	switch o.Reason {
	case BoundaryReached:
		return "reached or passed the requested id"
	case LimitReached:
		return "reached the limit"
	case ThreadStart:
		return "reached the beginning of the thread"
	case FetchFailed:
		return fmt.Sprintf("failed to fetch %s: %s", o.LastID, describe(o.Err))
	case Interrupted:
		return "interrupted"
	default:
		return "stopped"
	}
}

// ExitCode is the process status for this outcome
func (o Outcome) ExitCode() int {
	switch o.Reason {
	case FetchFailed:
		return ExitFailure
	case Interrupted:
		return ExitInterrupted
	default:
		return ExitOK
	}
}

// describe renders a fetch error without repeating the post id
func describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	var fe *errors.FetchError
	if stderrors.As(err, &fe) {
		return fe.Reason()
	}
	var te *errors.TransportError
	if stderrors.As(err, &te) && te.Err != nil {
		return te.Err.Error()
	}
	return err.Error()
}
