package policy

import (
	"testing"
	"time"

	"aujobs-engine/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInitialVersusRegular(t *testing.T) {
	cfg := config.Defaults()

	cfg.Scrape.InitialRun = false
	regular, err := Resolve("seek", cfg)
	require.NoError(t, err)
	assert.Equal(t, 20, regular.MaxPages)
	assert.Equal(t, 2*24*time.Hour, regular.RecencyWindow)
	assert.False(t, regular.InitialRun)

	cfg.Scrape.InitialRun = true
	initial, err := Resolve("seek", cfg)
	require.NoError(t, err)
	assert.Equal(t, 31*24*time.Hour, initial.RecencyWindow)
	assert.True(t, initial.InitialRun)
}

// Initial-run depth and recency must never be smaller than the regular run's
// for any source under default configuration.
func TestResolveModeMonotonicity(t *testing.T) {
	for _, source := range []string{"seek", "gradconnection", "prosple", "adzuna"} {
		cfg := config.Defaults()

		cfg.Scrape.InitialRun = false
		regular, err := Resolve(source, cfg)
		require.NoError(t, err, source)

		cfg.Scrape.InitialRun = true
		initial, err := Resolve(source, cfg)
		require.NoError(t, err, source)

		assert.GreaterOrEqual(t, initial.MaxPages, regular.MaxPages, source)
		assert.GreaterOrEqual(t, initial.RecencyWindow, regular.RecencyWindow, source)
	}
}

func TestResolveProspleOverride(t *testing.T) {
	cfg := config.Defaults()

	cfg.Scrape.InitialRun = false
	pol, err := Resolve("prosple", cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Sources.Prosple.RegularMaxPages, pol.MaxPages)

	// Initial runs ignore the per-source regular cap.
	cfg.Scrape.InitialRun = true
	pol, err = Resolve("prosple", cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Scrape.MaxPages, pol.MaxPages)
}

func TestResolveAdzunaHourWindows(t *testing.T) {
	cfg := config.Defaults()

	cfg.Scrape.InitialRun = false
	pol, err := Resolve("adzuna", cfg)
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, pol.RecencyWindow)

	cfg.Scrape.InitialRun = true
	pol, err = Resolve("adzuna", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2000*time.Hour, pol.RecencyWindow)
}

func TestResolveRejectsBadConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Scrape.MaxPages = 0
	_, err := Resolve("seek", cfg)
	assert.Error(t, err)

	cfg = config.Defaults()
	cfg.Scrape.DaysFromPosted = 0
	_, err = Resolve("seek", cfg)
	assert.Error(t, err)

	cfg = config.Defaults()
	cfg.Sources.Prosple.RegularMaxPages = 0
	_, err = Resolve("prosple", cfg)
	assert.Error(t, err)
}

func TestRecencyDays(t *testing.T) {
	pol := RunPolicy{RecencyWindow: 48 * time.Hour}
	assert.Equal(t, 2, pol.RecencyDays())
}
