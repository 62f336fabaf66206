package scraper

import (
	"errors"
	"fmt"
)

// ErrCredentialsRequired is returned before any session is acquired when a
// credential field is missing.
//
//nolint:staticcheck // message is returned verbatim to API clients
var ErrCredentialsRequired = errors.New("Username and password are required!")

// Login failure messages. They are part of the response contract and differ
// only by the trailing space.
const (
	msgLoginFailed     = "Login failed!"
	msgIdentityMissing = "Login failed! "
)

// LoginError reports that the portal did not authenticate the user.
type LoginError struct {
	// State is where the failure was detected
	State LoginState

	// Err is the underlying wait failure, if any
	Err error

	message string
}

func (e *LoginError) Error() string {
	return e.message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// NavigationError reports that a page or region did not become ready in time.
type NavigationError struct {
	Step string
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// IsLoginFailure reports whether err is, or wraps, a *LoginError.
func IsLoginFailure(err error) bool {
	var loginErr *LoginError
	return errors.As(err, &loginErr)
}

// IsNavigationFailure reports whether err is, or wraps, a *NavigationError.
func IsNavigationFailure(err error) bool {
	var navErr *NavigationError
	return errors.As(err, &navErr)
}
