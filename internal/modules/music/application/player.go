package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

// Player orchestrates playback for one guild. It owns the guild's queue and
// voice connection and runs at most one orchestrator goroutine at a time:
// dequeue a request, ensure the voice connection, resolve the source, stream
// it, repeat. Per-track failures are reported to the guild's text channel and
// the loop moves on; only an idle queue timeout or an explicit Stop ends it.
type Player struct {
	guildID  snowflake.ID
	queue    *domain.Queue
	conns    *ConnectionManager
	resolver ports.TrackResolver
	sink     ports.AudioSink
	notifier ports.Notifier
	settings Settings

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	session     ports.PlaybackSession
	current     *domain.ResolvedStream
	volume      int // percent
	lastTextCh  snowflake.ID
}

// NewPlayer creates an idle player for the guild.
func NewPlayer(guildID snowflake.ID, gateway ports.VoiceGateway, resolver ports.TrackResolver,
	sink ports.AudioSink, notifier ports.Notifier, settings Settings) *Player {
	settings = settings.withDefaults()
	return &Player{
		guildID:  guildID,
		queue:    domain.NewQueue(),
		conns:    NewConnectionManager(guildID, gateway, settings),
		resolver: resolver,
		sink:     sink,
		notifier: notifier,
		settings: settings,
		volume:   settings.DefaultVolume,
	}
}

// Enqueue appends a request to the tail of the queue. It never blocks.
func (p *Player) Enqueue(req domain.TrackRequest) {
	p.queue.Enqueue(req)
}

// Start launches the orchestrator goroutine. Starting a running player is a
// no-op, so callers can fire it unconditionally after every enqueue.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
	slog.Info("player started", "guild_id", p.guildID)
}

// Stop cancels the orchestrator and halts any current audio output, then
// waits for the goroutine to finish. Queued requests are kept: a later Start
// resumes with the leftovers. Stopping an idle player is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	running := p.running
	cancel := p.cancel
	done := p.done
	session := p.session
	p.mu.Unlock()

	// Cancel before stopping the session so the loop cannot dequeue and
	// drop the next request while the stop is in flight.
	if running {
		cancel()
	}
	if session != nil {
		session.Stop()
	}
	if running {
		<-done
	}
}

// Running reports whether the orchestrator goroutine is active.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Player) run(ctx context.Context, done chan struct{}) {
	defer func() {
		p.conns.Disconnect()
		p.mu.Lock()
		p.running = false
		p.session = nil
		p.current = nil
		p.mu.Unlock()
		close(done)
		slog.Info("player stopped", "guild_id", p.guildID)
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		req, err := p.queue.Dequeue(ctx, p.settings.IdleTimeout)
		if err != nil {
			if errors.Is(err, domain.ErrQueueTimeout) {
				slog.Info("queue idle, leaving voice channel",
					"guild_id", p.guildID, "idle_timeout", p.settings.IdleTimeout)
				p.notifyIdleTimeout()
			}
			return
		}

		p.mu.Lock()
		p.lastTextCh = req.TextChannelID
		p.mu.Unlock()

		conn, err := p.conns.Ensure(ctx, req.VoiceChannelID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("voice connect failed",
				"guild_id", p.guildID, "channel_id", req.VoiceChannelID, "error", err)
			p.notifier.Error(req.TextChannelID,
				fmt.Sprintf("Could not join the voice channel to play **%s**.", req.Title))
			continue
		}

		stream, err := p.resolver.Resolve(ctx, req.Source)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("track resolution failed",
				"guild_id", p.guildID, "source", req.Source, "error", err)
			p.notifier.Error(req.TextChannelID,
				fmt.Sprintf("Could not load **%s**.", req.Title))
			continue
		}
		if stream.Title == "" {
			stream.Title = req.Title
		}
		if stream.Duration == 0 {
			stream.Duration = req.Duration
		}

		session, err := p.sink.Start(conn, stream, p.volumeMultiplier())
		if err != nil {
			slog.Error("failed to start playback",
				"guild_id", p.guildID, "title", stream.Title, "error", err)
			p.notifier.Error(req.TextChannelID,
				fmt.Sprintf("Could not play **%s**.", stream.Title))
			continue
		}

		p.mu.Lock()
		p.session = session
		p.current = stream
		p.mu.Unlock()

		slog.Info("now playing",
			"guild_id", p.guildID, "title", stream.Title, "duration", stream.Duration)
		p.notifier.NowPlaying(req.TextChannelID, stream)

		p.awaitPlayback(ctx, conn, session, req.TextChannelID)

		p.mu.Lock()
		p.session = nil
		p.current = nil
		p.mu.Unlock()
	}
}

// awaitPlayback blocks until the session ends, the connection drops, or ctx
// is canceled. The liveness ticker catches connections that die without the
// sink noticing.
func (p *Player) awaitPlayback(ctx context.Context, conn ports.VoiceConn,
	session ports.PlaybackSession, textChannelID snowflake.ID) {
	ticker := time.NewTicker(p.settings.LivenessInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-session.Done():
			if err != nil {
				slog.Error("playback ended with error", "guild_id", p.guildID, "error", err)
				p.notifier.Error(textChannelID, "Playback failed, skipping to the next track.")
			}
			return
		case <-ticker.C:
			if !conn.IsReady() {
				slog.Warn("voice connection dropped mid-playback", "guild_id", p.guildID)
				session.Stop()
				<-session.Done()
				return
			}
		case <-ctx.Done():
			session.Stop()
			<-session.Done()
			return
		}
	}
}

func (p *Player) notifyIdleTimeout() {
	p.mu.Lock()
	textCh := p.lastTextCh
	idle := p.settings.IdleTimeout
	p.mu.Unlock()

	if textCh == 0 {
		return
	}
	p.notifier.Info(textCh,
		fmt.Sprintf("Leaving the voice channel after %s with nothing to play.", idle))
}

// Pause suspends the current audio output.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return domain.ErrNothingPlaying
	}
	if p.session.Paused() {
		return domain.ErrAlreadyPaused
	}
	p.session.SetPaused(true)
	return nil
}

// Resume continues paused audio output.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return domain.ErrNothingPlaying
	}
	if !p.session.Paused() {
		return domain.ErrNotPaused
	}
	p.session.SetPaused(false)
	return nil
}

// Skip stops the current track only; the orchestrator moves on to the next
// queued request.
func (p *Player) Skip() error {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return domain.ErrNothingPlaying
	}
	session.Stop()
	return nil
}

// SetVolume sets the playback volume in percent. Values outside [0, 100] are
// rejected with no state change. The new level takes effect from the next
// track start.
func (p *Player) SetVolume(percent int) error {
	if percent < 0 || percent > 100 {
		return domain.ErrVolumeOutOfRange
	}
	p.mu.Lock()
	p.volume = percent
	p.mu.Unlock()
	return nil
}

// Volume returns the current volume in percent.
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) volumeMultiplier() float64 {
	return float64(p.Volume()) / 100
}

// Current returns a snapshot of the playing track, or nil when idle. The
// snapshot also reports whether playback is paused.
func (p *Player) Current() (*domain.ResolvedStream, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, false
	}
	snapshot := *p.current
	return &snapshot, p.session != nil && p.session.Paused()
}

// Queued returns a snapshot of the pending requests in FIFO order.
func (p *Player) Queued() []domain.TrackRequest {
	return p.queue.Tracks()
}

// Connect joins the given voice channel without starting playback.
func (p *Player) Connect(ctx context.Context, channelID snowflake.ID) error {
	_, err := p.conns.Connect(ctx, channelID)
	return err
}

// Disconnect stops the orchestrator and releases the voice connection.
func (p *Player) Disconnect() {
	p.Stop()
	p.conns.Disconnect()
}

// ConnectedChannel returns the channel of the live voice connection, or 0
// when not connected.
func (p *Player) ConnectedChannel() snowflake.ID {
	conn := p.conns.Current()
	if conn == nil {
		return 0
	}
	return conn.ChannelID()
}
