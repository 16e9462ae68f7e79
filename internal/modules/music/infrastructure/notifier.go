package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

var _ ports.Notifier = (*Notifier)(nil)

const (
	colorNotifySuccess = 0x08c404
	colorNotifyError   = 0xE74C3C
)

// Notifier sends playback status embeds to guild text channels. Delivery
// failures are logged and dropped so the playback loop never blocks on them.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier creates a notifier backed by the given session.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

// NowPlaying announces the track that just started.
func (n *Notifier) NowPlaying(channelID snowflake.ID, stream *domain.ResolvedStream) {
	description := fmt.Sprintf("**%s**", stream.Title)
	if formatted := domain.FormatDuration(stream.Duration); formatted != "" {
		description += fmt.Sprintf(" [%s]", formatted)
	}

	n.send(channelID, &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: "Now Playing"},
		Description: description,
		Color:       colorNotifySuccess,
	})
}

// Info sends an informational status message.
func (n *Notifier) Info(channelID snowflake.ID, message string) {
	n.send(channelID, &discordgo.MessageEmbed{
		Description: message,
		Color:       colorNotifySuccess,
	})
}

// Error sends a failure status message.
func (n *Notifier) Error(channelID snowflake.ID, message string) {
	n.send(channelID, &discordgo.MessageEmbed{
		Description: message,
		Color:       colorNotifyError,
	})
}

func (n *Notifier) send(channelID snowflake.ID, embed *discordgo.MessageEmbed) {
	if _, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed); err != nil {
		slog.Error("failed to send status message", "channel_id", channelID, "error", err)
	}
}
