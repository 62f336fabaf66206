package scraper

import (
	"context"

	"github.com/entrhq/tugas/pkg/browser"
	"github.com/entrhq/tugas/pkg/logging"
	"github.com/entrhq/tugas/pkg/portal"
)

// SessionRunner runs a function inside an isolated browser session and
// releases it on every exit path. *browser.SessionManager implements it.
type SessionRunner interface {
	WithSession(ctx context.Context, fn browser.SessionFunc) error
}

// Fetcher runs the full login and extraction pipeline for one user.
type Fetcher struct {
	runner    SessionRunner
	auth      *Authenticator
	extractor *Extractor
	logger    *logging.Logger
}

// NewFetcher wires a pipeline against target.
func NewFetcher(runner SessionRunner, target portal.Target, delays Delays, logger *logging.Logger) *Fetcher {
	return &Fetcher{
		runner:    runner,
		auth:      NewAuthenticator(target, delays, logger),
		extractor: NewExtractor(target.Listing, delays, logger),
		logger:    logger,
	}
}

// Fetch validates creds, then logs in and extracts the task listing in a
// fresh session. Invalid credentials never acquire a session.
func (f *Fetcher) Fetch(ctx context.Context, creds Credentials) (*FetchResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var result *FetchResult
	err := f.runner.WithSession(ctx, func(ctx context.Context, id string, page browser.Page) error {
		logger := f.logger.With("session " + shortID(id))

		user, err := f.auth.withLogger(logger).Login(ctx, page, creds)
		if err != nil {
			logger.Warnf("login for %s failed: %v", creds.Username, err)
			return err
		}

		tasks, err := f.extractor.withLogger(logger).Extract(ctx, page)
		if err != nil {
			logger.Warnf("extraction failed: %v", err)
			return err
		}

		result = &FetchResult{User: user, Tasks: tasks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
