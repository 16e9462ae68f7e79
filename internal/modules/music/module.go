package music

import (
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/bot"
	"github.com/telmaren/cadenza/internal/modules/music/application"
	"github.com/telmaren/cadenza/internal/modules/music/infrastructure"
	"github.com/telmaren/cadenza/internal/modules/music/presentation"
)

func init() {
	bot.Register(&Module{})
}

var (
	_ bot.Module             = (*Module)(nil)
	_ bot.ConfigurableModule = (*Module)(nil)
)

// Module provides voice playback: one orchestrator per guild draining a FIFO
// queue of resolved tracks into the guild's voice connection.
type Module struct {
	config   *Config
	registry *application.Registry
	watcher  *application.IdleWatcher
	handlers *presentation.CommandHandlers
	events   *presentation.EventHandlers
}

// Name returns the unique identifier for this module.
func (m *Module) Name() string {
	return "music"
}

// Commands returns the slash commands that this module provides.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns a map of command names to their handlers.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":       m.handlers.HandleJoin,
		"leave":      m.handlers.HandleLeave,
		"play":       m.handlers.HandlePlay,
		"pause":      m.handlers.HandlePause,
		"resume":     m.handlers.HandleResume,
		"stop":       m.handlers.HandleStop,
		"skip":       m.handlers.HandleSkip,
		"volume":     m.handlers.HandleVolume,
		"nowplaying": m.handlers.HandleNowPlaying,
		"queue":      m.handlers.HandleQueue,
	}
}

// EventHandlers returns event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.events.HandleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads and validates module-specific configuration.
func (m *Module) LoadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the playback core to the Discord session.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music module requires a Discord session")
	}

	gateway := infrastructure.NewVoiceGateway(deps.Session)
	sink := infrastructure.NewDCASink()
	resolver := infrastructure.NewResolver(m.config.ResolveTimeout)
	notifier := infrastructure.NewNotifier(deps.Session)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)

	settings := application.Settings{
		IdleTimeout:      m.config.QueueIdleTimeout,
		ConnectTimeout:   m.config.ConnectTimeout,
		ConnectAttempts:  m.config.ConnectAttempts,
		ConnectBackoff:   m.config.ConnectBackoff,
		SettleDelay:      m.config.SettleDelay,
		LivenessInterval: m.config.LivenessInterval,
		DefaultVolume:    m.config.DefaultVolume,
	}

	m.registry = application.NewRegistry(func(guildID snowflake.ID) *application.Player {
		return application.NewPlayer(guildID, gateway, resolver, sink, notifier, settings)
	})
	m.watcher = application.NewIdleWatcher(m.registry, voiceState, m.config.LeaveGracePeriod)
	m.handlers = presentation.NewCommandHandlers(m.registry, resolver, voiceState)
	m.events = presentation.NewEventHandlers(m.watcher)

	slog.Info("initialized music module")
	return nil
}

// Shutdown stops all players and drops their voice connections.
func (m *Module) Shutdown() error {
	if m.registry != nil {
		m.registry.StopAll()
	}
	return nil
}
