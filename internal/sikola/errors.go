package sikola

import (
	"errors"
	"fmt"
)

var (
	ErrNotLoggedIn        = errors.New("sikola: not logged in")
	ErrMissingCredentials = errors.New("sikola: username and password are required")
)

// NetworkError is returned when a request could not complete at all.
type NetworkError struct {
	Op  string
	Url string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("sikola: %s (%s): %v", e.Op, e.Url, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the portal answers with an error status.
type StatusError struct {
	Op     string
	Url    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sikola: %s (%s): unexpected status %d", e.Op, e.Url, e.Status)
}

// MissingElementError is returned when an element the scraper depends on is
// not on the page, this usually means the portal's markup changed.
type MissingElementError struct {
	Page     string
	Selector string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("sikola: could not find %q on %s", e.Selector, e.Page)
}

// StructureError is returned when an element exists but its contents are not
// shaped the way the scraper expects.
type StructureError struct {
	Page   string
	Detail string
	Err    error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sikola: unexpected structure on %s: %s: %v", e.Page, e.Detail, e.Err)
	}
	return fmt.Sprintf("sikola: unexpected structure on %s: %s", e.Page, e.Detail)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// LoginRejectedError is returned when the login form was submitted but the
// response does not show a logged in user.
type LoginRejectedError struct {
	Status int
	// text of the portal's alert banner, empty if there was none
	Message string
}

func (e *LoginRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sikola: login failed (status %d)", e.Status)
	}
	return fmt.Sprintf("sikola: login failed (status %d): %s", e.Status, e.Message)
}

// IsMarkupError reports whether err was caused by the portal's markup not
// matching what the scraper expects.
func IsMarkupError(err error) bool {
	var missing *MissingElementError
	var structure *StructureError
	return errors.As(err, &missing) || errors.As(err, &structure)
}
