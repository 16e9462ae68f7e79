package ports

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

// Notifier reports playback status to a guild text channel. Implementations
// must never block the caller on delivery problems; failures are logged and
// dropped.
type Notifier interface {
	NowPlaying(channelID snowflake.ID, stream *domain.ResolvedStream)
	Info(channelID snowflake.ID, message string)
	Error(channelID snowflake.ID, message string)
}
