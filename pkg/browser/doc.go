// Package browser provides isolated, exclusively owned browser sessions
// through Playwright.
//
// Every invocation gets its own Chromium process with a single page. The
// process is launched headless with the sandbox relaxed so it starts inside
// containers, and it is terminated when the invocation ends.
//
// # Session Lifecycle
//
//  1. Initialize: start the Playwright driver once per process
//  2. Acquire: wait for an admission slot, launch Chromium, install the
//     network policy on its page
//  3. Use: drive the page through the Page interface
//  4. Release: terminate the browser; repeated calls are no-ops
//  5. Shutdown: release everything still live and stop the driver
//
// WithSession wraps steps 2 through 4 so that release happens exactly once on
// every exit path.
//
// # Admission
//
// MaxSessions bounds how many browsers may be live at the same time. Acquire
// blocks while the bound is reached, for at most AcquireTimeout. LaunchRate
// additionally throttles how often new browser processes start.
//
// # Network Policy
//
// Requests for images, fetch calls, media, fonts and stylesheets are aborted
// before they leave the browser. This trims page load time without affecting
// the markup the scraper reads.
//
// # Example Usage
//
//	manager := browser.NewSessionManager(browser.DefaultOptions(), nil, logger)
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	err := manager.WithSession(ctx, func(ctx context.Context, id string, page browser.Page) error {
//	    return page.Navigate("https://example.com", time.Minute)
//	})
package browser
