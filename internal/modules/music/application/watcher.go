package application

import (
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
)

// IdleWatcher disconnects players whose voice channel has no human members
// left. A grace period guards against brief gaps like a user switching
// channels; membership is re-checked after the grace window before acting.
type IdleWatcher struct {
	registry   *Registry
	voiceState ports.VoiceStateProvider
	grace      time.Duration

	mu      sync.Mutex
	pending map[snowflake.ID]struct{}
}

// NewIdleWatcher creates a watcher over the registry's players.
func NewIdleWatcher(registry *Registry, voiceState ports.VoiceStateProvider, grace time.Duration) *IdleWatcher {
	return &IdleWatcher{
		registry:   registry,
		voiceState: voiceState,
		grace:      grace,
		pending:    make(map[snowflake.ID]struct{}),
	}
}

// HandleChannelLeft is invoked when a human user leaves channelID in guildID.
// If the bot occupies that channel and no humans remain, one grace-period
// check is scheduled per guild.
func (w *IdleWatcher) HandleChannelLeft(guildID, channelID snowflake.ID) {
	player := w.registry.Get(guildID)
	if player == nil || player.ConnectedChannel() != channelID {
		return
	}

	humans, err := w.voiceState.CountHumans(guildID, channelID)
	if err != nil {
		slog.Warn("failed to count voice channel members",
			"guild_id", guildID, "channel_id", channelID, "error", err)
		return
	}
	if humans > 0 {
		return
	}

	w.mu.Lock()
	if _, ok := w.pending[guildID]; ok {
		w.mu.Unlock()
		return
	}
	w.pending[guildID] = struct{}{}
	w.mu.Unlock()

	slog.Info("voice channel empty, starting leave countdown",
		"guild_id", guildID, "channel_id", channelID, "grace", w.grace)
	go w.disconnectAfterGrace(guildID, channelID)
}

func (w *IdleWatcher) disconnectAfterGrace(guildID, channelID snowflake.ID) {
	defer func() {
		w.mu.Lock()
		delete(w.pending, guildID)
		w.mu.Unlock()
	}()

	time.Sleep(w.grace)

	// A human may have rejoined during the grace window.
	humans, err := w.voiceState.CountHumans(guildID, channelID)
	if err != nil || humans > 0 {
		return
	}
	player := w.registry.Get(guildID)
	if player == nil || player.ConnectedChannel() != channelID {
		return
	}

	slog.Info("voice channel still empty, disconnecting",
		"guild_id", guildID, "channel_id", channelID)
	player.Disconnect()
}
