package domain

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackRequest is a queued playback request. It is immutable once created.
// Source may be a URL or a raw search string; resolution happens when the
// orchestrator picks the request up.
type TrackRequest struct {
	Source         string
	Title          string
	Duration       time.Duration // 0 when unknown
	VoiceChannelID snowflake.ID  // the requester's voice channel at enqueue time
	TextChannelID  snowflake.ID  // channel for status replies
	RequesterID    snowflake.ID
}

// ResolvedStream is a playable media reference derived from a TrackRequest.
// It is consumed exactly once by the decoder and never cached.
type ResolvedStream struct {
	StreamURL string
	Title     string
	Duration  time.Duration
}

// FormatDuration renders a duration as zero-padded MM:SS, or "" when the
// duration is unknown. Durations of an hour or more roll into the minutes
// field.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
