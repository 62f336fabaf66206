package browser

import (
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is one isolated browser with its single active page. It is owned
// by exactly one invocation and must be handed back via SessionManager.Release.
type Session struct {
	// ID correlates log lines of one invocation
	ID string

	// CreatedAt is the timestamp when the browser was launched
	CreatedAt time.Time

	page    playwright.Page
	closeFn func() error

	releaseOnce sync.Once
}

// Navigate loads url, waiting for DOM content and then network idle. Both
// waits share one timeout budget. Playwright's network idle means no open
// connections for 500ms, stricter than allowing two, so a page that keeps
// polling runs into the timeout.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(millis(timeout)),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	// Playwright treats a zero timeout as "wait forever"
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return fmt.Errorf("navigation failed: timeout %s exceeded before network idle", timeout)
	}

	err = s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(millis(remaining)),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(selector, value string) error {
	if err := s.page.Fill(selector, value); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// Click clicks an element matching the selector.
func (s *Session) Click(selector string) error {
	if err := s.page.Click(selector); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// WaitForPredicate polls a JavaScript predicate until it returns a truthy value.
func (s *Session) WaitForPredicate(expression string, timeout time.Duration) error {
	_, err := s.page.WaitForFunction(expression, nil, playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	if err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

// WaitForElement waits for selector to be attached to the DOM. Visibility is
// not required.
func (s *Session) WaitForElement(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(millis(timeout)),
	})
	if err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

// Exists queries selector without waiting.
func (s *Session) Exists(selector string) (bool, error) {
	element, err := s.page.QuerySelector(selector)
	if err != nil {
		return false, fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return false, nil
	}
	_ = element.Dispose()
	return true, nil
}

// URL returns the current page address.
func (s *Session) URL() string {
	return s.page.URL()
}

// Text returns the rendered text of the element matched by selector.
func (s *Session) Text(selector string) (string, error) {
	text, err := s.page.InnerText(selector)
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}

// Snapshot returns the current DOM serialized as HTML.
func (s *Session) Snapshot() (string, error) {
	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("snapshot failed: %w", err)
	}
	return content, nil
}

func (s *Session) close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
