package hub

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for hub errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected hub status")
	ErrNotFound         = errors.New("hub resource not found")
	ErrDecode           = errors.New("decode hub response")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hub: status %d (%s) from %s", e.Status, http.StatusText(e.Status), e.URL)
}

// Is matches ErrUnexpectedStatus always and ErrNotFound for 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnexpectedStatus:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}
