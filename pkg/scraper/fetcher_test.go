package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tugas/pkg/logging"
	"github.com/entrhq/tugas/pkg/portal"
)

func newTestFetcher(page *fakePage) (*Fetcher, *fakeRunner) {
	runner := &fakeRunner{page: page}
	return NewFetcher(runner, page.target, noDelays, logging.Discard()), runner
}

func TestFetchRequiresCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"empty", Credentials{}},
		{"missing password", Credentials{Username: "budi"}},
		{"missing username", Credentials{Password: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, runner := newTestFetcher(newFakePage(portal.DefaultTarget()))

			result, err := fetcher.Fetch(context.Background(), tt.creds)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrCredentialsRequired)
			assert.Equal(t, "Username and password are required!", err.Error())
			assert.Zero(t, runner.acquired, "validation must happen before any session is acquired")
		})
	}
}

func TestFetchSuccess(t *testing.T) {
	page := newFakePage(portal.DefaultTarget())
	page.snapshot = loadDashboard(t)
	fetcher, runner := newTestFetcher(page)

	result, err := fetcher.Fetch(context.Background(), testCreds)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "20190001", result.User)
	assert.Equal(t, []string{"Tomorrow", "Next 7 days", ""}, result.Tasks.Keys())
	assert.Equal(t, 1, runner.acquired)
	assert.Equal(t, 1, runner.released)
}

func TestFetchLoginFailureReleasesSession(t *testing.T) {
	target := portal.DefaultTarget()
	page := newFakePage(target)
	page.redirectTo = ""
	fetcher, runner := newTestFetcher(page)

	result, err := fetcher.Fetch(context.Background(), testCreds)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, "Login failed!", err.Error())
	assert.False(t, page.called("snapshot"), "extraction must not run after a failed login")
	assert.Equal(t, runner.acquired, runner.released)
}

func TestFetchExtractionFailure(t *testing.T) {
	target := portal.DefaultTarget()
	page := newFakePage(target)
	delete(page.present, target.Listing.Region)
	fetcher, runner := newTestFetcher(page)

	_, err := fetcher.Fetch(context.Background(), testCreds)
	require.Error(t, err)
	assert.True(t, IsNavigationFailure(err))
	assert.Equal(t, 1, runner.released)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0f8fad5b", shortID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.Equal(t, "abc", shortID("abc"))
}
