package query

import "fmt"

// NotFoundError reports that a query matched no data in scope. Recoverable:
// the caller is expected to try a different question.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string {
	return e.Reason
}

// NotFoundf builds a NotFoundError from a format string
func NotFoundf(format string, args ...any) *NotFoundError {
	return &NotFoundError{Reason: fmt.Sprintf(format, args...)}
}

// AmbiguousPlayerError reports that a player name resolved to several
// candidates. Choices carries the list to surface to the user.
type AmbiguousPlayerError struct {
	Input   string
	Choices []string
}

func (e *AmbiguousPlayerError) Error() string {
	return fmt.Sprintf("Ambiguous player '%s'", e.Input)
}
