package ports

import "github.com/telmaren/cadenza/internal/modules/music/domain"

// PlaybackSession is one active decode-and-send stream.
type PlaybackSession interface {
	// Done delivers exactly one value when the stream ends. A nil value
	// means the stream finished normally or was deliberately stopped.
	Done() <-chan error

	// SetPaused suspends or resumes sending without ending the session.
	SetPaused(paused bool)

	// Paused reports whether the session is currently paused.
	Paused() bool

	// Stop ends the session. Done still fires afterwards. Idempotent.
	Stop()
}

// AudioSink starts playback of a resolved stream over a voice connection.
// volume is a multiplier in [0.0, 1.0] applied at decode start.
type AudioSink interface {
	Start(conn VoiceConn, stream *domain.ResolvedStream, volume float64) (PlaybackSession, error)
}
