package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

// fastSettings keeps orchestration timings short enough for tests.
func fastSettings() Settings {
	return Settings{
		IdleTimeout:      200 * time.Millisecond,
		ConnectTimeout:   100 * time.Millisecond,
		ConnectAttempts:  3,
		ConnectBackoff:   5 * time.Millisecond,
		SettleDelay:      time.Millisecond,
		LivenessInterval: 10 * time.Millisecond,
		DefaultVolume:    50,
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// fakeConn is a test double for ports.VoiceConn.
type fakeConn struct {
	channelID snowflake.ID

	mu          sync.Mutex
	ready       bool
	disconnects int
}

func (c *fakeConn) ChannelID() snowflake.ID { return c.channelID }

func (c *fakeConn) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = false
	c.disconnects++
	return nil
}

func (c *fakeConn) setReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

func (c *fakeConn) disconnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

// fakeGateway is a test double for ports.VoiceGateway. The first `failures`
// join attempts fail.
type fakeGateway struct {
	mu       sync.Mutex
	failures int
	calls    int
	conns    []*fakeConn
}

func (g *fakeGateway) Join(_ context.Context, _, channelID snowflake.ID) (ports.VoiceConn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.calls <= g.failures {
		return nil, errors.New("join failed")
	}
	conn := &fakeConn{channelID: channelID, ready: true}
	g.conns = append(g.conns, conn)
	return conn, nil
}

func (g *fakeGateway) joinCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) connAt(t *testing.T, index int) *fakeConn {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if index >= len(g.conns) {
		t.Fatalf("expected at least %d connections, got %d", index+1, len(g.conns))
	}
	return g.conns[index]
}

func (g *fakeGateway) liveConns() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	live := 0
	for _, conn := range g.conns {
		if conn.IsReady() {
			live++
		}
	}
	return live
}

// fakeSession is a test double for ports.PlaybackSession.
type fakeSession struct {
	done chan error
	once sync.Once

	mu      sync.Mutex
	paused  bool
	stopped bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{done: make(chan error, 1)}
}

func (s *fakeSession) Done() <-chan error { return s.done }

func (s *fakeSession) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *fakeSession) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *fakeSession) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.done <- nil
	})
}

// finish ends the session as if the stream completed with err.
func (s *fakeSession) finish(err error) {
	s.once.Do(func() {
		s.done <- err
	})
}

func (s *fakeSession) wasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// fakeSink is a test double for ports.AudioSink.
type fakeSink struct {
	mu       sync.Mutex
	sessions []*fakeSession
	volumes  []float64
	startErr error
}

func (s *fakeSink) Start(_ ports.VoiceConn, _ *domain.ResolvedStream, volume float64) (ports.PlaybackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startErr != nil {
		return nil, s.startErr
	}
	session := newFakeSession()
	s.sessions = append(s.sessions, session)
	s.volumes = append(s.volumes, volume)
	return session, nil
}

func (s *fakeSink) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *fakeSink) sessionAt(t *testing.T, index int) *fakeSession {
	t.Helper()
	var session *fakeSession
	waitUntil(t, time.Second, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.sessions) {
			session = s.sessions[index]
			return true
		}
		return false
	}, fmt.Sprintf("session %d never started", index))
	return session
}

func (s *fakeSink) volumeAt(t *testing.T, index int) float64 {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= len(s.volumes) {
		t.Fatalf("expected at least %d sink starts, got %d", index+1, len(s.volumes))
	}
	return s.volumes[index]
}

// fakeResolver is a test double for ports.TrackResolver. Sources listed in
// failing resolve with an error.
type fakeResolver struct {
	mu       sync.Mutex
	failing  map[string]bool
	resolved []string
}

func (r *fakeResolver) failOn(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing == nil {
		r.failing = make(map[string]bool)
	}
	r.failing[source] = true
}

func (r *fakeResolver) Resolve(_ context.Context, source string) (*domain.ResolvedStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing[source] {
		return nil, fmt.Errorf("%w: %s", domain.ErrResolveFailed, source)
	}
	r.resolved = append(r.resolved, source)
	return &domain.ResolvedStream{
		StreamURL: "https://stream.test/" + source,
		Title:     "Track " + source,
	}, nil
}

func (r *fakeResolver) Lookup(_ context.Context, query string) (string, string, time.Duration, error) {
	return "Track " + query, "https://source.test/" + query, 125 * time.Second, nil
}

// fakeNotifier records status messages for assertions.
type fakeNotifier struct {
	mu         sync.Mutex
	nowPlaying []string
	infos      []string
	errors     []string
}

func (n *fakeNotifier) NowPlaying(_ snowflake.ID, stream *domain.ResolvedStream) {
	n.mu.Lock()
	defer n.mu.Unlock()
	entry := stream.Title
	if formatted := domain.FormatDuration(stream.Duration); formatted != "" {
		entry += " [" + formatted + "]"
	}
	n.nowPlaying = append(n.nowPlaying, entry)
}

func (n *fakeNotifier) Info(_ snowflake.ID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, message)
}

func (n *fakeNotifier) Error(_ snowflake.ID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *fakeNotifier) nowPlayingCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.nowPlaying)
}

func (n *fakeNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

func (n *fakeNotifier) infoCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.infos)
}

func (n *fakeNotifier) lastNowPlaying(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.nowPlaying) == 0 {
		t.Fatal("expected at least one now-playing notification")
	}
	return n.nowPlaying[len(n.nowPlaying)-1]
}

// fakeVoiceState is a test double for ports.VoiceStateProvider.
type fakeVoiceState struct {
	mu     sync.Mutex
	humans map[snowflake.ID]int
}

func (v *fakeVoiceState) setHumans(channelID snowflake.ID, count int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.humans == nil {
		v.humans = make(map[snowflake.ID]int)
	}
	v.humans[channelID] = count
}

func (v *fakeVoiceState) GetUserVoiceChannel(_, _ snowflake.ID) (snowflake.ID, error) {
	return 0, nil
}

func (v *fakeVoiceState) CountHumans(_, channelID snowflake.ID) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.humans[channelID], nil
}

// newTestPlayer wires a Player with fakes and fast settings.
func newTestPlayer(settings Settings) (*Player, *fakeGateway, *fakeResolver, *fakeSink, *fakeNotifier) {
	gateway := &fakeGateway{}
	resolver := &fakeResolver{}
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	player := NewPlayer(snowflake.ID(1), gateway, resolver, sink, notifier, settings)
	return player, gateway, resolver, sink, notifier
}

func testRequest(source string, duration time.Duration) domain.TrackRequest {
	return domain.TrackRequest{
		Source:         source,
		Title:          "Track " + source,
		Duration:       duration,
		VoiceChannelID: snowflake.ID(100),
		TextChannelID:  snowflake.ID(200),
		RequesterID:    snowflake.ID(300),
	}
}
