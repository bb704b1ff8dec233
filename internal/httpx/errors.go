package httpx

import (
	"errors"
	"fmt"
)

// ErrBlockedByRobots is returned when robots.txt disallows a path.
var ErrBlockedByRobots = errors.New("blocked by robots.txt")

// FetchError carries the upstream HTTP status of a failed fetch.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Status
	}
	return 0
}
