// Package portal describes the e-learning portal the scraper drives.
//
// Everything here is a contract with pages this project does not control:
// addresses, element selectors and the declarative description of the
// upcoming-events listing. Changing the portal's markup should only ever
// require changes in this package.
package portal

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the production portal.
const DefaultBaseURL = "https://ebelajar.stiki.ac.id"

// Target holds the addresses and selectors of the login flow plus the
// listing descriptor used by the extraction engine.
type Target struct {
	// LoginURL is the address of the login form
	LoginURL string

	// LandingURL is the exact address the portal redirects to after a
	// successful login
	LandingURL string

	// UsernameInput, PasswordInput and SubmitButton locate the login form
	UsernameInput string
	PasswordInput string
	SubmitButton  string

	// Identity is only rendered for authenticated users; its text carries
	// the user identifier after IdentityMarker
	Identity       string
	IdentityMarker string

	Listing Listing
}

// Listing is a declarative description of what to extract from the
// upcoming-events block and how to recognise each field.
type Listing struct {
	// Region is the listing root; HiddenClass marks the inactive variant
	Region      string
	HiddenClass string

	// ViewMore expands the listing once; it becomes disabled when loading
	// has finished
	ViewMore string

	// Offsets are the day offsets of the bucket containers, in query order
	Offsets []int

	// DayAttribute names the attribute carrying a container's offset
	DayAttribute string

	Heading string
	Item    string
	Name    string
	Date    string

	// Course is looked up under the name element's parent
	Course string

	// ExcludeMarker drops any item whose name contains it
	ExcludeMarker string
}

// DefaultTarget returns the target for the production portal.
func DefaultTarget() Target {
	t, _ := NewTarget(DefaultBaseURL)
	return t
}

// NewTarget returns the default selectors with addresses derived from baseURL.
func NewTarget(baseURL string) (Target, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return Target{}, fmt.Errorf("invalid portal URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return Target{}, fmt.Errorf("portal URL must be absolute: %q", baseURL)
	}
	base := u.String()

	return Target{
		LoginURL:       base + "/login",
		LandingURL:     base + "/my/",
		UsernameInput:  `input[name="username"]`,
		PasswordInput:  `input[name="password"]`,
		SubmitButton:   "#loginbtn",
		Identity:       "#action-menu-toggle-0 > span > span.usertext",
		IdentityMarker: "id ",
		Listing: Listing{
			Region:        `[data-region="event-list-content"]`,
			HiddenClass:   "hidden",
			ViewMore:      `button[data-action="view-more"]`,
			Offsets:       []int{-14, 1, 7, 30},
			DayAttribute:  "data-start-day",
			Heading:       "h5",
			Item:          "ul li",
			Name:          ".event-name",
			Date:          ".span5",
			Course:        "div",
			ExcludeMarker: "Feedback",
		},
	}, nil
}

// ContainerSelector returns the selector of the bucket container for offset,
// restricted to the visible listing variant.
func (l Listing) ContainerSelector(offset int) string {
	return fmt.Sprintf(`%s:not(.%s) > [%s="%d"]`, l.Region, l.HiddenClass, l.DayAttribute, offset)
}

// ViewMoreDisabledPredicate returns a JavaScript predicate that holds once the
// view-more control exists and is disabled.
func (l Listing) ViewMoreDisabledPredicate() string {
	return fmt.Sprintf(`() => {
	const btn = document.querySelector(%q);
	return !!btn && btn.disabled;
}`, l.ViewMore)
}

// LandingPredicate returns a JavaScript predicate that holds once the page
// address equals the landing address.
func (t Target) LandingPredicate() string {
	return fmt.Sprintf(`() => window.location.href === %q`, t.LandingURL)
}
