package presentation

import (
	"github.com/bwmarrin/discordgo"

	"github.com/telmaren/cadenza/internal/bot"
)

// Embed colors for command replies.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	})
}

func respondError(r bot.Responder, description string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorError,
	})
}
