package cli

import (
	"testing"
	"time"

	"eventdash/internal/calendar"
	"eventdash/internal/config"
)

func TestClockFromConfig(t *testing.T) {
	clock := ClockFromConfig(&config.Config{Today: "2025-10-22"})
	if got := clock.Today().String(); got != "2025-10-22" {
		t.Errorf("Today() = %s, want 2025-10-22", got)
	}

	wall := ClockFromConfig(&config.Config{})
	if got, want := wall.Today().String(), calendar.Clock(calendar.SystemClock).Today().String(); got != want {
		// Only differs if the test straddles midnight.
		if time.Now().Hour() != 0 {
			t.Errorf("Today() = %s, want %s", got, want)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	for _, format := range []string{"text", "json", "tint"} {
		logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: format})
		if logger == nil {
			t.Fatalf("SetupLogger(%s) returned nil", format)
		}
		if logger.Component() != "app" {
			t.Errorf("component = %q, want app", logger.Component())
		}
	}
}
