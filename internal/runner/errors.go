package runner

import (
	"errors"
	"net/http"
)

// Domain errors for run control operations.
var (
	ErrAlreadyRunning = errors.New("a run is already in progress")
	ErrNotRunning     = errors.New("no run is in progress")
)

// MapHTTPStatus maps run control errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrAlreadyRunning) || errors.Is(err, ErrNotRunning) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
