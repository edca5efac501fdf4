package episode

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMetadata reports an episode directory without a metadata document.
	ErrMissingMetadata = errors.New("missing metadata")
	// ErrEmptyEpisode reports a metadata document with no frames.
	ErrEmptyEpisode = errors.New("empty episode")
	// ErrInvalidRange reports a frame or episode range that selects nothing.
	ErrInvalidRange = errors.New("invalid range")
	// ErrDestinationExists reports a destination that is already populated.
	ErrDestinationExists = errors.New("destination exists")
	// ErrMissingEpisodeDirectory reports a requested episode index that was not discovered.
	ErrMissingEpisodeDirectory = errors.New("missing episode directory")
)

// Error kinds reported through ErrorKind.
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
)

// Error pairs a sentinel with a human-readable detail and a classification.
type Error struct {
	Kind   string
	Err    error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind implements the classifier consulted by the CLI for exit codes.
func (e *Error) ErrorKind() string { return e.Kind }

func newError(kind string, sentinel error, format string, args ...any) error {
	return &Error{Kind: kind, Err: sentinel, Detail: fmt.Sprintf(format, args...)}
}

// MissingMetadata builds an ErrMissingMetadata error for path.
func MissingMetadata(path string) error {
	return newError(KindNotFound, ErrMissingMetadata, "%s", path)
}

// EmptyEpisode builds an ErrEmptyEpisode error for path.
func EmptyEpisode(path string) error {
	return newError(KindValidation, ErrEmptyEpisode, "no frames under \"data\" in %s", path)
}

// InvalidRange builds an ErrInvalidRange error.
func InvalidRange(format string, args ...any) error {
	return newError(KindValidation, ErrInvalidRange, format, args...)
}

// DestinationExists builds an ErrDestinationExists error for path.
func DestinationExists(path string) error {
	return newError(KindConflict, ErrDestinationExists, "%s is not empty (delete it first or choose another destination)", path)
}

// MissingEpisodeDirectory builds an ErrMissingEpisodeDirectory error.
func MissingEpisodeDirectory(format string, args ...any) error {
	return newError(KindNotFound, ErrMissingEpisodeDirectory, format, args...)
}

// ErrorClassifier is implemented by errors that declare a kind.
type ErrorClassifier interface {
	ErrorKind() string
}

// KindOf returns the classification of err, or "" when err is unclassified.
func KindOf(err error) string {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return ""
}
