package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelaysBudget(t *testing.T) {
	// 255s of step waits, 150s of page actions, 9s of settle pauses
	assert.Equal(t, 414*time.Second, DefaultDelays().Budget())
	assert.Equal(t, 405*time.Second, Delays{}.Budget())
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), 0))
}
