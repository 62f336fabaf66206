package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/entrhq/tugas/pkg/browser"
	"github.com/entrhq/tugas/pkg/logging"
	"github.com/entrhq/tugas/pkg/portal"
)

// Extractor reads the upcoming-events listing of an authenticated page.
type Extractor struct {
	listing portal.Listing
	delays  Delays
	logger  *logging.Logger
}

// NewExtractor creates an extractor for listing.
func NewExtractor(listing portal.Listing, delays Delays, logger *logging.Logger) *Extractor {
	return &Extractor{listing: listing, delays: delays, logger: logger}
}

func (e *Extractor) withLogger(logger *logging.Logger) *Extractor {
	clone := *e
	clone.logger = logger
	return &clone
}

// Extract waits for the listing, expands it once and parses a snapshot of
// the resulting DOM.
func (e *Extractor) Extract(ctx context.Context, page browser.Page) (TaskGroup, error) {
	e.logger.Infof("Fetching tasks...")

	if err := sleep(ctx, e.delays.PostLogin); err != nil {
		return TaskGroup{}, err
	}

	if err := page.WaitForElement(e.listing.Region, ListingTimeout); err != nil {
		return TaskGroup{}, &NavigationError{Step: "wait for task listing", Err: err}
	}

	if err := e.expand(page); err != nil {
		return TaskGroup{}, err
	}

	if err := sleep(ctx, e.delays.PostExpand); err != nil {
		return TaskGroup{}, err
	}

	content, err := page.Snapshot()
	if err != nil {
		return TaskGroup{}, fmt.Errorf("snapshot page: %w", err)
	}

	group, err := ParseListing(content, page.URL(), e.listing)
	if err != nil {
		return TaskGroup{}, err
	}

	e.logger.Verbosef("extracted %d tasks in %d buckets", group.Len(), len(group.Keys()))
	e.logger.Infof("Tasks fetched successfully!")
	return group, nil
}

// expand loads the rest of the listing when a view-more control is present.
func (e *Extractor) expand(page browser.Page) error {
	present, err := page.Exists(e.listing.ViewMore)
	if err != nil {
		return fmt.Errorf("look for view-more control: %w", err)
	}
	if !present {
		e.logger.Verbosef("no view-more control; using the initially rendered items")
		return nil
	}

	if err := page.Click(e.listing.ViewMore); err != nil {
		return fmt.Errorf("click view-more control: %w", err)
	}
	if err := page.WaitForPredicate(e.listing.ViewMoreDisabledPredicate(), ExpandTimeout); err != nil {
		return &NavigationError{Step: "expand task listing", Err: err}
	}
	return nil
}

// ParseListing interprets the listing descriptor against an HTML document.
// Relative task links resolve against pageURL.
func ParseListing(content, pageURL string, listing portal.Listing) (TaskGroup, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return TaskGroup{}, fmt.Errorf("parse page snapshot: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var group TaskGroup
	for _, offset := range listing.Offsets {
		container := doc.Find(listing.ContainerSelector(offset)).First()
		if container.Length() == 0 {
			continue
		}

		heading := strings.TrimSpace(container.Find(listing.Heading).First().Text())
		container.Find(listing.Item).Each(func(_ int, item *goquery.Selection) {
			if task, ok := parseItem(item, heading, base, listing); ok {
				group.Add(task)
			}
		})
	}
	return group, nil
}

func parseItem(item *goquery.Selection, heading string, base *url.URL, listing portal.Listing) (Task, bool) {
	name := item.Find(listing.Name).First()
	date := item.Find(listing.Date).First()
	if name.Length() == 0 || date.Length() == 0 {
		return Task{}, false
	}

	nameText := name.Text()
	if listing.ExcludeMarker != "" && strings.Contains(nameText, listing.ExcludeMarker) {
		return Task{}, false
	}

	course := ""
	if el := name.Parent().Find(listing.Course).First(); el.Length() > 0 {
		course = strings.Join(strings.Fields(el.Text()), " ")
	}

	href, _ := name.Attr("href")

	return Task{
		Name:        strings.TrimSpace(nameText),
		URL:         resolveLink(base, href),
		Course:      course,
		Date:        strings.TrimSpace(date.Text()),
		HeadingDate: heading,
	}, true
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
