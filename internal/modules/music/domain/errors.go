package domain

import "errors"

// Failure classes surfaced by the player core. ErrConnectFailed,
// ErrResolveFailed and ErrPlaybackFailed are per-track failures: the
// orchestrator reports them and moves on to the next queued track.
// ErrQueueTimeout ends the orchestrator loop. The remaining errors are
// synchronous precondition rejections with no state change.
var (
	ErrConnectFailed    = errors.New("failed to connect to voice channel")
	ErrResolveFailed    = errors.New("failed to resolve track")
	ErrPlaybackFailed   = errors.New("playback failed")
	ErrQueueTimeout     = errors.New("queue idle timeout")
	ErrNotConnected     = errors.New("not connected to a voice channel")
	ErrNothingPlaying   = errors.New("nothing is playing")
	ErrAlreadyPaused    = errors.New("playback is already paused")
	ErrNotPaused        = errors.New("playback is not paused")
	ErrVolumeOutOfRange = errors.New("volume must be between 0 and 100")
)
