package application

import "time"

// Settings hold the tunables of the playback core. Zero values fall back to
// the defaults below, so tests can override only what they exercise.
type Settings struct {
	// IdleTimeout is how long the orchestrator waits on an empty queue
	// before shutting itself down.
	IdleTimeout time.Duration

	// ConnectTimeout bounds a single voice join attempt.
	ConnectTimeout time.Duration

	// ConnectAttempts is the total number of join attempts per Connect call.
	ConnectAttempts int

	// ConnectBackoff is the wait between failed join attempts.
	ConnectBackoff time.Duration

	// SettleDelay is the pause after force-disconnecting a stale handle,
	// giving the gateway time to acknowledge the teardown.
	SettleDelay time.Duration

	// LivenessInterval is how often the orchestrator re-checks the voice
	// connection while audio is playing.
	LivenessInterval time.Duration

	// DefaultVolume is the initial playback volume in percent.
	DefaultVolume int
}

func (s Settings) withDefaults() Settings {
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = 300 * time.Second
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = 15 * time.Second
	}
	if s.ConnectAttempts <= 0 {
		s.ConnectAttempts = 3
	}
	if s.ConnectBackoff <= 0 {
		s.ConnectBackoff = 3 * time.Second
	}
	if s.SettleDelay <= 0 {
		s.SettleDelay = time.Second
	}
	if s.LivenessInterval <= 0 {
		s.LivenessInterval = time.Second
	}
	if s.DefaultVolume <= 0 {
		s.DefaultVolume = 50
	}
	return s
}
