// Package errors provides standardized error types and helpers for the pagefold core.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the core failure taxonomy
var (
	// ErrMalformedEncoding indicates a raw xpoint string did not match the grammar
	ErrMalformedEncoding = errors.New("malformed position encoding")
	// ErrEmptyContent indicates an attempt to hash degenerate/empty content
	ErrEmptyContent = errors.New("empty content")
	// ErrIndexBuildFailed indicates a position index build did not complete
	ErrIndexBuildFailed = errors.New("index build failed")
	// ErrNotIndexed indicates a position could not be resolved against an index
	ErrNotIndexed = errors.New("position not indexed")
	// ErrInvalidRange indicates a range whose start is ordered after its end
	ErrInvalidRange = errors.New("invalid position range")
)

// EncodingError represents a parse failure with the offending input attached.
type EncodingError struct {
	Raw     string // Raw input that failed to parse
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *EncodingError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("malformed encoding %q: %s", e.Raw, e.Message)
	}
	return fmt.Sprintf("malformed encoding: %s", e.Message)
}

func (e *EncodingError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedEncoding
}

// BuildError represents a per-book index build failure.
type BuildError struct {
	BookID   string // Book whose index build failed
	Fragment int    // 1-based fragment being walked when the failure occurred (0 if unknown)
	Err      error  // Underlying error
}

func (e *BuildError) Error() string {
	if e.Fragment > 0 {
		return fmt.Sprintf("index build failed for book %s at fragment %d: %v", e.BookID, e.Fragment, e.Err)
	}
	return fmt.Sprintf("index build failed for book %s: %v", e.BookID, e.Err)
}

// Unwrap reports both the sentinel and the underlying cause, so
// errors.Is matches ErrIndexBuildFailed as well as, say, context.Canceled.
func (e *BuildError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrIndexBuildFailed, e.Err}
	}
	return []error{ErrIndexBuildFailed}
}

// NotIndexedError represents a lookup miss against a built index.
// This is an expected outcome for annotations recorded against a document
// revision the index has not seen; callers fall back rather than abort.
type NotIndexedError struct {
	Encoding string // Canonical form of the position that missed
	BookID   string // Book the index belongs to, if known
}

func (e *NotIndexedError) Error() string {
	if e.BookID != "" {
		return fmt.Sprintf("position %s not indexed for book %s", e.Encoding, e.BookID)
	}
	return fmt.Sprintf("position %s not indexed", e.Encoding)
}

func (e *NotIndexedError) Unwrap() error {
	return ErrNotIndexed
}

// NewEncoding creates an EncodingError.
func NewEncoding(raw, message string) *EncodingError {
	return &EncodingError{Raw: raw, Message: message}
}

// NewBuild creates a BuildError.
func NewBuild(bookID string, fragment int, err error) *BuildError {
	return &BuildError{BookID: bookID, Fragment: fragment, Err: err}
}

// NewNotIndexed creates a NotIndexedError.
func NewNotIndexed(encoding, bookID string) *NotIndexedError {
	return &NotIndexedError{Encoding: encoding, BookID: bookID}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
