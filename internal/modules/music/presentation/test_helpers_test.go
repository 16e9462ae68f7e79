package presentation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application"
	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

// stubConn / stubGateway implement the voice ports just far enough for
// handler tests.
type stubConn struct {
	channelID snowflake.ID

	mu    sync.Mutex
	ready bool
}

func (c *stubConn) ChannelID() snowflake.ID { return c.channelID }

func (c *stubConn) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *stubConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = false
	return nil
}

type stubGateway struct {
	err error
}

func (g *stubGateway) Join(_ context.Context, _, channelID snowflake.ID) (ports.VoiceConn, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &stubConn{channelID: channelID, ready: true}, nil
}

type stubSession struct {
	mu     sync.Mutex
	paused bool
	done   chan error
	once   sync.Once
}

func (s *stubSession) Done() <-chan error { return s.done }

func (s *stubSession) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *stubSession) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *stubSession) Stop() {
	s.once.Do(func() { s.done <- nil })
}

type stubSink struct {
	mu       sync.Mutex
	sessions []*stubSession
}

func (s *stubSink) Start(_ ports.VoiceConn, _ *domain.ResolvedStream, _ float64) (ports.PlaybackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := &stubSession{done: make(chan error, 1)}
	s.sessions = append(s.sessions, session)
	return session, nil
}

type stubResolver struct {
	err error
}

func (r *stubResolver) Resolve(_ context.Context, source string) (*domain.ResolvedStream, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &domain.ResolvedStream{StreamURL: "https://stream.test/" + source, Title: "Track"}, nil
}

func (r *stubResolver) Lookup(_ context.Context, query string) (string, string, time.Duration, error) {
	if r.err != nil {
		return "", "", 0, r.err
	}
	return "Track " + query, "https://source.test/" + query, 125 * time.Second, nil
}

type stubNotifier struct{}

func (stubNotifier) NowPlaying(snowflake.ID, *domain.ResolvedStream) {}
func (stubNotifier) Info(snowflake.ID, string)                       {}
func (stubNotifier) Error(snowflake.ID, string)                      {}

// stubVoiceState maps users to their voice channel.
type stubVoiceState struct {
	channels map[snowflake.ID]snowflake.ID
}

func (v *stubVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if v.channels == nil {
		return 0, nil
	}
	return v.channels[userID], nil
}

func (v *stubVoiceState) CountHumans(_, _ snowflake.ID) (int, error) {
	return 0, errors.New("not implemented")
}

func newTestRegistry() *application.Registry {
	settings := application.Settings{
		IdleTimeout:      100 * time.Millisecond,
		ConnectTimeout:   50 * time.Millisecond,
		ConnectAttempts:  1,
		ConnectBackoff:   time.Millisecond,
		SettleDelay:      time.Millisecond,
		LivenessInterval: 10 * time.Millisecond,
		DefaultVolume:    50,
	}
	return application.NewRegistry(func(guildID snowflake.ID) *application.Player {
		return application.NewPlayer(guildID, &stubGateway{}, &stubResolver{}, &stubSink{}, stubNotifier{}, settings)
	})
}

func testTrackRequest(title, url string, duration time.Duration) domain.TrackRequest {
	return domain.TrackRequest{
		Source:         url,
		Title:          title,
		Duration:       duration,
		VoiceChannelID: snowflake.ID(100),
		TextChannelID:  snowflake.ID(200),
		RequesterID:    snowflake.ID(300),
	}
}

func commandInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   "1",
			ChannelID: "200",
			Member: &discordgo.Member{
				User: &discordgo.User{ID: "300"},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Type:  discordgo.ApplicationCommandOptionString,
		Name:  name,
		Value: value,
	}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Type:  discordgo.ApplicationCommandOptionInteger,
		Name:  name,
		Value: float64(value),
	}
}
