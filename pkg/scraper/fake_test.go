package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/entrhq/tugas/pkg/browser"
	"github.com/entrhq/tugas/pkg/portal"
)

var errWaitTimeout = errors.New("timeout exceeded")

// fakePage simulates the portal in memory. Clicking the submit button moves
// to redirectTo; clicking view-more finishes loading unless viewMoreStuck.
type fakePage struct {
	target portal.Target

	url           string
	redirectTo    string
	navigateErr   error
	present       map[string]bool
	texts         map[string]string
	snapshot      string
	viewMoreStuck bool

	viewMoreLoaded bool
	calls          []string
}

func newFakePage(target portal.Target) *fakePage {
	return &fakePage{
		target:     target,
		redirectTo: target.LandingURL,
		present: map[string]bool{
			target.Identity:       true,
			target.Listing.Region: true,
		},
		texts: map[string]string{
			target.Identity: "  Budi Santoso id 20190001 ",
		},
	}
}

func (p *fakePage) record(format string, args ...interface{}) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakePage) Navigate(url string, timeout time.Duration) error {
	p.record("navigate %s", url)
	if p.navigateErr != nil {
		return p.navigateErr
	}
	p.url = url
	return nil
}

func (p *fakePage) Fill(selector, value string) error {
	p.record("fill %s", selector)
	return nil
}

func (p *fakePage) Click(selector string) error {
	p.record("click %s", selector)
	switch selector {
	case p.target.SubmitButton:
		if p.redirectTo != "" {
			p.url = p.redirectTo
		}
	case p.target.Listing.ViewMore:
		p.viewMoreLoaded = !p.viewMoreStuck
	}
	return nil
}

func (p *fakePage) WaitForPredicate(expression string, timeout time.Duration) error {
	switch expression {
	case p.target.LandingPredicate():
		p.record("wait landing")
		if p.url != p.target.LandingURL {
			return errWaitTimeout
		}
	case p.target.Listing.ViewMoreDisabledPredicate():
		p.record("wait view-more disabled")
		if !p.viewMoreLoaded {
			return errWaitTimeout
		}
	default:
		return fmt.Errorf("unexpected predicate %q", expression)
	}
	return nil
}

func (p *fakePage) WaitForElement(selector string, timeout time.Duration) error {
	p.record("wait element %s", selector)
	if !p.present[selector] {
		return errWaitTimeout
	}
	return nil
}

func (p *fakePage) Exists(selector string) (bool, error) {
	p.record("exists %s", selector)
	return p.present[selector], nil
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) Text(selector string) (string, error) {
	p.record("text %s", selector)
	text, ok := p.texts[selector]
	if !ok {
		return "", fmt.Errorf("no element for %s", selector)
	}
	return text, nil
}

func (p *fakePage) Snapshot() (string, error) {
	p.record("snapshot")
	return p.snapshot, nil
}

func (p *fakePage) called(prefix string) bool {
	for _, call := range p.calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

// fakeRunner hands the same fake page to every session and counts brackets.
type fakeRunner struct {
	page     browser.Page
	acquired int
	released int
}

func (r *fakeRunner) WithSession(ctx context.Context, fn browser.SessionFunc) error {
	r.acquired++
	defer func() { r.released++ }()
	return fn(ctx, "0f8fad5b-d9cb-469f-a165-70867728950e", r.page)
}

func loadDashboard(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/dashboard.html")
	require.NoError(t, err)
	return string(data)
}

// noDelays keeps tests from sleeping.
var noDelays = Delays{}
