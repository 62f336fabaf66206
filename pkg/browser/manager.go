package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"

	"github.com/entrhq/tugas/pkg/logging"
)

// SessionManager launches one isolated browser per invocation, tracks live
// sessions and guarantees their release.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	initialized bool

	opts    Options
	policy  *NetworkPolicy
	logger  *logging.Logger
	gate    chan struct{}
	limiter *rate.Limiter

	// launch is replaced in tests
	launch func(ctx context.Context) (*Session, error)

	acquired int64
	released int64
}

// NewSessionManager creates a new session manager. A nil policy blocks the
// default resource types.
func NewSessionManager(opts Options, policy *NetworkPolicy, logger *logging.Logger) *SessionManager {
	if policy == nil {
		policy = DefaultNetworkPolicy()
	}

	m := &SessionManager{
		sessions: make(map[string]*Session),
		opts:     opts,
		policy:   policy,
		logger:   logger,
	}

	if opts.MaxSessions > 0 {
		m.gate = make(chan struct{}, opts.MaxSessions)
	}
	if opts.LaunchRate > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(opts.LaunchRate), 1)
	}

	m.launch = m.launchChromium
	return m
}

func runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
}

// Install downloads the Playwright driver and Chromium.
func Install() error {
	if err := playwright.Install(runOptions()); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// Initialize starts the Playwright driver, installing it first when
// configured to. It must be called before Acquire and is safe to call again.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if m.opts.Install {
		if err := Install(); err != nil {
			return err
		}
	}

	pw, err := playwright.Run(runOptions())
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Acquire waits for an admission slot and launches a new session.
func (m *SessionManager) Acquire(ctx context.Context) (*Session, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			m.leave()
			return nil, fmt.Errorf("launch throttled: %w", err)
		}
	}

	session, err := m.launch(ctx)
	if err != nil {
		m.leave()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.acquired++
	m.mu.Unlock()

	m.logger.Verbosef("[%s] browser launched", session.ID)
	return session, nil
}

// Release terminates the session's browser. Only the first call for a given
// session has any effect.
func (m *SessionManager) Release(session *Session) error {
	if session == nil {
		return nil
	}

	var err error
	session.releaseOnce.Do(func() {
		err = session.close()

		m.mu.Lock()
		delete(m.sessions, session.ID)
		m.released++
		m.mu.Unlock()

		m.leave()
		m.logger.Infof("[%s] Browser closed.", session.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// SessionFunc runs against an exclusively owned page. id correlates logs.
type SessionFunc func(ctx context.Context, id string, page Page) error

// WithSession brackets fn between Acquire and Release. The session is
// released exactly once however fn returns, panics included.
func (m *SessionManager) WithSession(ctx context.Context, fn SessionFunc) (err error) {
	session, err := m.Acquire(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := m.Release(session); releaseErr != nil {
			m.logger.Warnf("[%s] %v", session.ID, releaseErr)
			if err == nil {
				err = releaseErr
			}
		}
	}()

	return fn(ctx, session.ID, session)
}

// Stats returns the session counters.
func (m *SessionManager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Acquired: m.acquired,
		Released: m.released,
		Live:     len(m.sessions),
	}
}

// Shutdown releases every live session and stops Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	live := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		live = append(live, session)
	}
	m.mu.Unlock()

	var errs []error
	for _, session := range live {
		if err := m.Release(session); err != nil {
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.initialized = false
	}

	return errors.Join(errs...)
}

// enter takes an admission slot, waiting at most AcquireTimeout.
func (m *SessionManager) enter(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}

	select {
	case m.gate <- struct{}{}:
		return nil
	default:
	}

	m.logger.Verbosef("all %d session slots busy, waiting", cap(m.gate))

	var timeout <-chan time.Time
	if m.opts.AcquireTimeout > 0 {
		timer := time.NewTimer(m.opts.AcquireTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case m.gate <- struct{}{}:
		return nil
	case <-timeout:
		return ErrGateTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SessionManager) leave() {
	if m.gate != nil {
		<-m.gate
	}
}

// launchChromium starts an isolated browser with one page and the network
// policy installed.
func (m *SessionManager) launchChromium(_ context.Context) (*Session, error) {
	m.mu.Lock()
	pw := m.playwright
	initialized := m.initialized
	m.mu.Unlock()

	if !initialized {
		return nil, ErrNotInitialized
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.opts.Headless),
		Args:     m.opts.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		NoViewport: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		page:      page,
		closeFn: func() error {
			return browser.Close()
		},
	}

	if err := m.policy.Install(page, m.logger.With("network")); err != nil {
		browser.Close()
		return nil, err
	}

	return session, nil
}
