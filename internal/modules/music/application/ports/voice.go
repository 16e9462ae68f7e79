package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConn is a live link to a single voice channel.
type VoiceConn interface {
	// ChannelID returns the voice channel this connection is bound to.
	ChannelID() snowflake.ID

	// IsReady reports whether the connection is usable for sending audio.
	IsReady() bool

	// Disconnect tears the connection down. Calling it on an already
	// disconnected handle is harmless.
	Disconnect() error
}

// VoiceGateway establishes voice connections on behalf of the bot.
type VoiceGateway interface {
	// Join connects to the given voice channel. ctx bounds the handshake;
	// implementations must not leave a half-open connection behind when ctx
	// expires.
	Join(ctx context.Context, guildID, channelID snowflake.ID) (VoiceConn, error)
}

// VoiceStateProvider exposes the gateway's cached view of voice channel
// membership.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the channel the user currently occupies,
	// or 0 if they are not in any voice channel.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)

	// CountHumans returns the number of non-bot members in the channel.
	CountHumans(guildID, channelID snowflake.ID) (int, error)
}
