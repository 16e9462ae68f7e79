package presentation

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application"
)

// EventHandlers routes gateway events into the playback core.
type EventHandlers struct {
	watcher *application.IdleWatcher
}

// NewEventHandlers creates the event handler set.
func NewEventHandlers(watcher *application.IdleWatcher) *EventHandlers {
	return &EventHandlers{watcher: watcher}
}

// HandleVoiceStateUpdate feeds human channel departures to the idle watcher.
func (h *EventHandlers) HandleVoiceStateUpdate(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	// Bots moving around never trigger the leave countdown.
	if event.Member != nil && event.Member.User != nil && event.Member.User.Bot {
		return
	}
	if s.State.User != nil && event.UserID == s.State.User.ID {
		return
	}
	// Only a departure can leave a channel empty.
	if event.BeforeUpdate == nil || event.BeforeUpdate.ChannelID == "" ||
		event.BeforeUpdate.ChannelID == event.ChannelID {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Warn("failed to parse guild ID from voice state update", "error", err)
		return
	}
	channelID, err := snowflake.Parse(event.BeforeUpdate.ChannelID)
	if err != nil {
		slog.Warn("failed to parse channel ID from voice state update", "error", err)
		return
	}

	h.watcher.HandleChannelLeft(guildID, channelID)
}
