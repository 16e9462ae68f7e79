package domain

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "unknown", duration: 0, expected: ""},
		{name: "negative", duration: -time.Second, expected: ""},
		{name: "under a minute", duration: 59 * time.Second, expected: "00:59"},
		{name: "two minutes five", duration: 125 * time.Second, expected: "02:05"},
		{name: "exactly ten minutes", duration: 10 * time.Minute, expected: "10:00"},
		{name: "over an hour rolls into minutes", duration: 3725 * time.Second, expected: "62:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.duration); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
