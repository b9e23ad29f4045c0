package client

import (
	"errors"
	"fmt"
)

// ErrNetwork wraps transport failures: the request never produced an HTTP
// response.
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}
