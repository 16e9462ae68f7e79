package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jonas747/dca"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

var _ ports.AudioSink = (*DCASink)(nil)

// DCASink streams audio to Discord by piping the source URL through ffmpeg
// and the dca Opus encoder.
type DCASink struct{}

// NewDCASink creates the sink.
func NewDCASink() *DCASink {
	return &DCASink{}
}

// Start begins decoding the stream URL and sending Opus frames over the
// connection. The volume multiplier is fixed at encode start; dca expresses
// it as an integer where 256 is unity gain.
func (s *DCASink) Start(conn ports.VoiceConn, stream *domain.ResolvedStream, volume float64) (ports.PlaybackSession, error) {
	vconn, ok := conn.(*VoiceConnection)
	if !ok {
		return nil, fmt.Errorf("unsupported voice connection type %T", conn)
	}

	options := *dca.StdEncodeOptions
	options.RawOutput = true
	options.Bitrate = 128
	options.Application = dca.AudioApplicationLowDelay
	options.Volume = int(volume * 256)
	options.BufferedFrames = 1000

	encode, err := dca.EncodeFile(stream.StreamURL, &options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlaybackFailed, err)
	}

	if err := vconn.vc.Speaking(true); err != nil {
		encode.Cleanup()
		return nil, fmt.Errorf("%w: %v", domain.ErrPlaybackFailed, err)
	}

	streamDone := make(chan error)
	session := &dcaSession{
		encode: encode,
		done:   make(chan error, 1),
	}
	session.streaming = dca.NewStream(encode, vconn.vc, streamDone)

	go func() {
		err := <-streamDone
		encode.Cleanup()
		_ = vconn.vc.Speaking(false)
		if errors.Is(err, io.EOF) || session.stopped.Load() {
			err = nil
		}
		session.done <- err
	}()

	return session, nil
}

type dcaSession struct {
	encode    *dca.EncodeSession
	streaming *dca.StreamingSession
	done      chan error
	stopped   atomic.Bool
	stopOnce  sync.Once
}

// Done delivers exactly one value when the stream ends.
func (s *dcaSession) Done() <-chan error {
	return s.done
}

// SetPaused suspends or resumes frame sending.
func (s *dcaSession) SetPaused(paused bool) {
	s.streaming.SetPaused(paused)
}

// Paused reports whether frame sending is suspended.
func (s *dcaSession) Paused() bool {
	return s.streaming.Paused()
}

// Stop kills the encoder; the streaming session then unblocks and Done fires
// with a nil error.
func (s *dcaSession) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.streaming.SetPaused(false)
		s.encode.Cleanup()
	})
}
