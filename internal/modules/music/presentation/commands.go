package presentation

import "github.com/bwmarrin/discordgo"

// Commands returns the slash commands provided by the music module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join your current voice channel",
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "play",
			Description: "Queue a track by URL or search query",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "URL or search terms",
					Required:    true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pause the current track",
		},
		{
			Name:        "resume",
			Description: "Resume the paused track",
		},
		{
			Name:        "stop",
			Description: "Stop playback, keeping the queue",
		},
		{
			Name:        "skip",
			Description: "Skip to the next queued track",
		},
		{
			Name:        "volume",
			Description: "Show or set the playback volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "Volume from 0 to 100",
					Required:    false,
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the currently playing track",
		},
		{
			Name:        "queue",
			Description: "Show the pending tracks",
		},
	}
}
