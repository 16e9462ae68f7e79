package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
)

var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)

// VoiceStateProvider reads voice channel membership from the gateway's state
// cache.
type VoiceStateProvider struct {
	session *discordgo.Session
}

// NewVoiceStateProvider creates a provider backed by the given session.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{session: session}
}

// GetUserVoiceChannel returns the channel the user currently occupies, or 0.
func (p *VoiceStateProvider) GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	guild, err := p.session.State.Guild(guildID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to get guild %s from state: %w", guildID, err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID != userID.String() {
			continue
		}
		channelID, err := snowflake.Parse(vs.ChannelID)
		if err != nil {
			return 0, fmt.Errorf("failed to parse channel ID %q: %w", vs.ChannelID, err)
		}
		return channelID, nil
	}
	return 0, nil
}

// CountHumans returns the number of non-bot members in the channel. Members
// missing from the state cache are counted as humans, erring on the side of
// staying connected.
func (p *VoiceStateProvider) CountHumans(guildID, channelID snowflake.ID) (int, error) {
	guild, err := p.session.State.Guild(guildID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to get guild %s from state: %w", guildID, err)
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID.String() {
			continue
		}
		member, err := p.session.State.Member(guildID.String(), vs.UserID)
		if err == nil && member.User != nil && member.User.Bot {
			continue
		}
		count++
	}
	return count, nil
}
