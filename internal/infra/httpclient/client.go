package httpclient

import (
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// New returns the client used for calls to the authentication collaborator.
// A zero timeout falls back to a short default so a slow collaborator can
// never hold requests open indefinitely.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
