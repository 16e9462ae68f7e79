package ping

import (
	"github.com/bwmarrin/discordgo"

	"github.com/telmaren/cadenza/internal/bot"
)

func init() {
	bot.Register(&Module{})
}

var _ bot.Module = (*Module)(nil)

// Module provides a minimal liveness check command.
type Module struct{}

func (m *Module) Name() string {
	return "ping"
}

func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check whether the bot is responsive",
		},
	}
}

func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"ping": handlePing,
	}
}

func (m *Module) EventHandlers() []bot.EventHandler {
	return nil
}

func (m *Module) Init(_ bot.ModuleDependencies) error {
	return nil
}

func (m *Module) Shutdown() error {
	return nil
}

func handlePing(_ *discordgo.Session, _ *discordgo.InteractionCreate, r bot.Responder) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pong!",
		},
	})
}
