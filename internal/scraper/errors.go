package scraper

import (
	"errors"
	"fmt"
)

var (
	errMissingTitle = errors.New("missing title")
	errMissingLink  = errors.New("missing link")
)

// NetworkError means a source could not be reached or answered with a
// non-2xx status. The source yields no articles for this run.
type NetworkError struct {
	Source string
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s (%s): status %d", e.Source, e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means a document or a single item could not be parsed. Item
// is the title prefix when the error concerns one entry, empty when the
// whole document was unreadable.
type ParseError struct {
	Source string
	Item   string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("parse %s item %q: %v", e.Source, e.Item, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

func (e *statusError) retryable() bool {
	return e.Code == 429 || e.Code >= 500
}
