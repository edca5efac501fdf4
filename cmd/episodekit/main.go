package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"episodekit/internal/episode"
)

const (
	exitFailure    = 1
	exitValidation = 2
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps validation failures (bad ranges, empty episodes, flag errors)
// to 2 and everything else to 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var usage *usageError
	if errors.As(err, &usage) || episode.KindOf(err) == episode.KindValidation {
		return exitValidation
	}
	return exitFailure
}

// usageError marks invalid command-line input.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}
