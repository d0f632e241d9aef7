package workflow

import "errors"

// Kind classifies workflow failures so the HTTP layer can map them to
// status codes without inspecting message text.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindDependency
)

// Error is a workflow failure carrying a short summary and an elaboration,
// matching the error/details wire contract.
type Error struct {
	Kind    Kind
	Summary string
	Details string
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Summary
	}
	return e.Summary + ": " + e.Details
}

func newValidation(summary, details string) *Error {
	return &Error{Kind: KindValidation, Summary: summary, Details: details}
}

func newNotFound(summary, details string) *Error {
	return &Error{Kind: KindNotFound, Summary: summary, Details: details}
}

func newConflict(summary, details string) *Error {
	return &Error{Kind: KindConflict, Summary: summary, Details: details}
}

func newDependency(summary, details string) *Error {
	return &Error{Kind: KindDependency, Summary: summary, Details: details}
}

// AsError extracts a workflow *Error from err, degrading anything else to a
// dependency failure.
func AsError(err error) *Error {
	var wfErr *Error
	if errors.As(err, &wfErr) {
		return wfErr
	}
	return &Error{Kind: KindDependency, Summary: "Internal server error", Details: err.Error()}
}
