package serper

import "fmt"

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("serper: unexpected status %d: %s", e.StatusCode, e.Body)
}

// truncateBody keeps error messages readable when the provider returns a page of HTML.
func truncateBody(b []byte) string {
	const limit = 256
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}

// HTTPStatus reports the response status for error classification.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }
