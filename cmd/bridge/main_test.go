package main

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/smartrent-bridge/internal/config"
)

// Restarts reuse the stop channel registered once in main.
func TestRunStopsOnSignalAcrossRestarts(t *testing.T) {
	t.Setenv("PORT", "0")
	t.Setenv("STORAGE_PATH", t.TempDir())
	t.Setenv("SMARTRENT_EMAIL", "")
	t.Setenv("SMARTRENT_PASSWORD", "")

	stop := make(chan os.Signal, 1)
	for attempt := 1; attempt <= 2; attempt++ {
		done := make(chan error, 1)
		go func() { done <- run(config.New(), zerolog.Nop(), stop) }()

		stop <- os.Interrupt
		select {
		case err := <-done:
			require.NoError(t, err, "attempt %d", attempt)
		case <-time.After(5 * time.Second):
			t.Fatalf("attempt %d: run did not return after stop signal", attempt)
		}
	}
}
