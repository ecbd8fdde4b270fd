// Package errs defines categorized errors for the maintenance run.
// Kinds map to how far an error is allowed to travel: validation and
// connection errors end the run, task and report errors are contained
// and surfaced as data.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindValidation marks bad input detected before any connection is opened.
	KindValidation Kind = "validation"
	// KindConnection marks an unreachable relational store or cache.
	KindConnection Kind = "connection"
	// KindTask marks a failure inside one task.
	KindTask Kind = "task"
	// KindReport marks a failure building one report section.
	KindReport Kind = "report"
	// KindConfig marks an unreadable or incomplete configuration.
	KindConfig Kind = "config"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the outermost *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
