package infrastructure

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
)

var (
	_ ports.VoiceGateway = (*VoiceGateway)(nil)
	_ ports.VoiceConn    = (*VoiceConnection)(nil)
)

// VoiceGateway joins voice channels over an active Discord gateway session.
type VoiceGateway struct {
	session *discordgo.Session
}

// NewVoiceGateway creates a gateway backed by the given session.
func NewVoiceGateway(session *discordgo.Session) *VoiceGateway {
	return &VoiceGateway{session: session}
}

// Join connects to the channel muted for input, waiting until the handshake
// completes or ctx expires. A join that completes after ctx expiry is torn
// down so no orphaned handle lingers.
func (g *VoiceGateway) Join(ctx context.Context, guildID, channelID snowflake.ID) (ports.VoiceConn, error) {
	type joinResult struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	results := make(chan joinResult, 1)

	go func() {
		vc, err := g.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
		results <- joinResult{vc: vc, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return &VoiceConnection{vc: res.vc, channelID: channelID}, nil
	case <-ctx.Done():
		go func() {
			if res := <-results; res.err == nil && res.vc != nil {
				_ = res.vc.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
}

// VoiceConnection wraps a discordgo voice connection behind the VoiceConn
// port.
type VoiceConnection struct {
	vc        *discordgo.VoiceConnection
	channelID snowflake.ID
}

// ChannelID returns the voice channel this connection is bound to.
func (c *VoiceConnection) ChannelID() snowflake.ID {
	return c.channelID
}

// IsReady reports whether the connection is usable for sending audio.
func (c *VoiceConnection) IsReady() bool {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready
}

// Disconnect tears the connection down.
func (c *VoiceConnection) Disconnect() error {
	return c.vc.Disconnect()
}
