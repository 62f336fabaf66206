// Package scraper logs into the portal and reads the user's pending tasks.
//
// A Fetcher runs two flows inside one browser session:
//
//   - Authenticator walks the login form as a small state machine:
//     init, navigated, credentials entered, submitted, waiting for the
//     redirect, then authenticated or failed.
//   - Extractor waits for the upcoming-events listing, expands it once
//     with the view-more control and parses a DOM snapshot with goquery,
//     grouping tasks under their bucket heading.
//
// Both flows only use browser.Page, so they run against fakes in tests.
// Failures are typed: ErrCredentialsRequired, *LoginError and
// *NavigationError. Login error messages are returned to API clients
// unchanged.
//
// Example:
//
//	fetcher := scraper.NewFetcher(manager, portal.DefaultTarget(), scraper.DefaultDelays(), logger)
//	result, err := fetcher.Fetch(ctx, scraper.Credentials{Username: "u", Password: "p"})
//	if err != nil {
//	    return err
//	}
//	for _, heading := range result.Tasks.Keys() {
//	    fmt.Println(heading, len(result.Tasks.Tasks(heading)))
//	}
package scraper
