package browser

import (
	"errors"
	"time"
)

// Page is the automation capability the login and extraction flows need.
// *Session implements it on top of Playwright; tests use in-memory fakes.
type Page interface {
	// Navigate loads url and waits until the DOM is parsed and the network
	// has settled, all within timeout.
	Navigate(url string, timeout time.Duration) error

	// Fill types value into the input matched by selector.
	Fill(selector, value string) error

	// Click activates the control matched by selector.
	Click(selector string) error

	// WaitForPredicate waits until the JavaScript predicate returns true.
	WaitForPredicate(expression string, timeout time.Duration) error

	// WaitForElement waits until selector matches an element in the DOM.
	WaitForElement(selector string, timeout time.Duration) error

	// Exists reports whether selector currently matches an element.
	Exists(selector string) (bool, error)

	// URL returns the current page address.
	URL() string

	// Text returns the rendered text of the element matched by selector.
	Text(selector string) (string, error)

	// Snapshot returns the serialized live DOM. It never mutates the page.
	Snapshot() (string, error)
}

// Options configures how sessions are launched and admitted.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Args are extra Chromium command line switches
	Args []string

	// Install downloads the Playwright driver and Chromium on Initialize
	Install bool

	// MaxSessions caps live sessions; 0 means unbounded
	MaxSessions int

	// AcquireTimeout bounds the wait for a free slot when MaxSessions is
	// reached; 0 waits until the context is done
	AcquireTimeout time.Duration

	// LaunchRate limits browser starts per second; 0 means unlimited
	LaunchRate float64
}

// Stats is a snapshot of the manager's session counters.
type Stats struct {
	Acquired int64
	Released int64
	Live     int
}

// Default values for session launching
const (
	DefaultMaxSessions    = 4
	DefaultAcquireTimeout = 2 * time.Minute
)

// DefaultArgs relax the sandbox so Chromium starts inside containers.
var DefaultArgs = []string{"--no-sandbox", "--disable-setuid-sandbox"}

// DefaultOptions returns options for unattended execution.
func DefaultOptions() Options {
	return Options{
		Headless:       true,
		Args:           append([]string(nil), DefaultArgs...),
		Install:        true,
		MaxSessions:    DefaultMaxSessions,
		AcquireTimeout: DefaultAcquireTimeout,
	}
}

var (
	// ErrNotInitialized is returned when a session is requested before Initialize
	ErrNotInitialized = errors.New("browser: session manager not initialized")

	// ErrGateTimeout is returned when no session slot frees up in time
	ErrGateTimeout = errors.New("browser: timed out waiting for a free session slot")
)

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
