package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/tugas/pkg/browser"
	"github.com/entrhq/tugas/pkg/logging"
	"github.com/entrhq/tugas/pkg/portal"
)

// LoginState is a step of the login flow.
type LoginState int

const (
	StateInit LoginState = iota
	StateNavigatedToLogin
	StateCredentialsEntered
	StateSubmitted
	StateWaitingRedirect
	StateAuthenticated
	StateLoginFailed
)

func (s LoginState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateNavigatedToLogin:
		return "navigated-to-login"
	case StateCredentialsEntered:
		return "credentials-entered"
	case StateSubmitted:
		return "submitted"
	case StateWaitingRedirect:
		return "waiting-redirect"
	case StateAuthenticated:
		return "authenticated"
	case StateLoginFailed:
		return "login-failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Authenticator drives a page through the portal's login form.
type Authenticator struct {
	target portal.Target
	delays Delays
	logger *logging.Logger
}

// NewAuthenticator creates an authenticator for target.
func NewAuthenticator(target portal.Target, delays Delays, logger *logging.Logger) *Authenticator {
	return &Authenticator{target: target, delays: delays, logger: logger}
}

func (a *Authenticator) withLogger(logger *logging.Logger) *Authenticator {
	clone := *a
	clone.logger = logger
	return &clone
}

// Login authenticates creds on page and returns the user identifier shown
// in the portal's header.
func (a *Authenticator) Login(ctx context.Context, page browser.Page, creds Credentials) (string, error) {
	flow := &loginFlow{Authenticator: a, page: page, state: StateInit}
	return flow.run(ctx, creds)
}

// loginFlow is the state of a single Login call.
type loginFlow struct {
	*Authenticator
	page  browser.Page
	state LoginState
}

func (f *loginFlow) advance(next LoginState) {
	f.logger.Debugf("login %s -> %s", f.state, next)
	f.state = next
}

func (f *loginFlow) fail(message string, cause error) error {
	err := &LoginError{State: f.state, Err: cause, message: message}
	f.advance(StateLoginFailed)
	return err
}

func (f *loginFlow) run(ctx context.Context, creds Credentials) (string, error) {
	t := f.target

	f.logger.Infof("Navigating to login page...")
	if err := f.page.Navigate(t.LoginURL, NavigationTimeout); err != nil {
		return "", &NavigationError{Step: "open login page", Err: err}
	}
	f.advance(StateNavigatedToLogin)

	if err := f.page.Fill(t.UsernameInput, creds.Username); err != nil {
		return "", fmt.Errorf("enter username: %w", err)
	}
	if err := f.page.Fill(t.PasswordInput, creds.Password); err != nil {
		return "", fmt.Errorf("enter password: %w", err)
	}
	f.advance(StateCredentialsEntered)

	if err := sleep(ctx, f.delays.PostType); err != nil {
		return "", err
	}

	if err := f.page.Click(t.SubmitButton); err != nil {
		return "", fmt.Errorf("submit login form: %w", err)
	}
	f.advance(StateSubmitted)

	f.advance(StateWaitingRedirect)
	waitErr := f.page.WaitForPredicate(t.LandingPredicate(), RedirectTimeout)
	if waitErr != nil || f.page.URL() != t.LandingURL {
		f.logger.Verbosef("landing page not reached (at %s)", f.page.URL())
		return "", f.fail(msgLoginFailed, waitErr)
	}

	if err := f.page.WaitForElement(t.Identity, IdentityTimeout); err != nil {
		f.logger.Errorf("Error waiting for user text: %v", err)
		return "", f.fail(msgIdentityMissing, err)
	}
	f.advance(StateAuthenticated)
	f.logger.Infof("Login successful!")

	text, err := f.page.Text(t.Identity)
	if err != nil {
		return "", fmt.Errorf("read user identity: %w", err)
	}

	user := parseIdentity(text, t.IdentityMarker)
	f.logger.Infof("Logged in as: %s", user)
	return user, nil
}

// parseIdentity trims the header text and returns the piece between the
// first marker and any second one. The piece itself is not trimmed. A
// missing marker yields "".
func parseIdentity(text, marker string) string {
	if marker == "" {
		return strings.TrimSpace(text)
	}
	parts := strings.Split(strings.TrimSpace(text), marker)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
