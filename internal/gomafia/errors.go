package gomafia

import "fmt"

// ParseError represents malformed markup in a scraped gomafia page.
// Parse failures are never retried by the transport layer.
type ParseError struct {
	Page    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s page: %s: %v", e.Page, e.Message, e.Err)
	}
	return fmt.Sprintf("failed to parse %s page: %s", e.Page, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(page, message string, err error) error {
	return &ParseError{Page: page, Message: message, Err: err}
}

// IsParseError checks if an error is a ParseError
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}

// HTTPError represents a non-success response from gomafia
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gomafia returned status %d for %s", e.StatusCode, e.URL)
}
