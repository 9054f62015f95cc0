package task

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned by Peek when there are no pending tasks.
var ErrEmpty = errors.New("no pending tasks")

// ValidationError reports malformed input.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// DuplicateError reports a name collision on add.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("task %q already exists", e.Name)
}

// NotFoundError reports an unknown task name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.Name)
}

// DependencyConflictError reports that a task cannot be completed because
// another task still depends on it.
type DependencyConflictError struct {
	Name      string
	BlockedBy string
}

func (e *DependencyConflictError) Error() string {
	return fmt.Sprintf("cannot complete %q: task %q depends on it", e.Name, e.BlockedBy)
}

// IOError reports a failure writing or reading the durable medium.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CorruptionError reports a stored document that cannot be restored.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("corrupt task data: %v", e.Err)
	}
	return fmt.Sprintf("corrupt task data in %s: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// IsDomainError reports whether err is an expected condition that should be
// shown to the user rather than abort the program.
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	var (
		validation *ValidationError
		duplicate  *DuplicateError
		notFound   *NotFoundError
		conflict   *DependencyConflictError
	)
	return errors.Is(err, ErrEmpty) ||
		errors.As(err, &validation) ||
		errors.As(err, &duplicate) ||
		errors.As(err, &notFound) ||
		errors.As(err, &conflict)
}
