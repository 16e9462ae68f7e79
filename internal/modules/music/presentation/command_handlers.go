package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/bot"
	"github.com/telmaren/cadenza/internal/modules/music/application"
	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

const maxQueueLines = 10

// CommandHandlers routes music slash commands onto the playback core.
type CommandHandlers struct {
	registry   *application.Registry
	resolver   ports.TrackResolver
	voiceState ports.VoiceStateProvider
}

// NewCommandHandlers creates the handler set.
func NewCommandHandlers(registry *application.Registry, resolver ports.TrackResolver,
	voiceState ports.VoiceStateProvider) *CommandHandlers {
	return &CommandHandlers{
		registry:   registry,
		resolver:   resolver,
		voiceState: voiceState,
	}
}

type interactionIDs struct {
	guildID       snowflake.ID
	userID        snowflake.ID
	textChannelID snowflake.ID
}

func parseInteractionIDs(i *discordgo.InteractionCreate) (interactionIDs, error) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionIDs{}, fmt.Errorf("failed to parse guild ID: %w", err)
	}
	if i.Member == nil || i.Member.User == nil {
		return interactionIDs{}, errors.New("interaction has no guild member")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionIDs{}, fmt.Errorf("failed to parse user ID: %w", err)
	}
	textChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionIDs{}, fmt.Errorf("failed to parse channel ID: %w", err)
	}
	return interactionIDs{
		guildID:       guildID,
		userID:        userID,
		textChannelID: textChannelID,
	}, nil
}

// HandleJoin connects the bot to the caller's voice channel.
func (h *CommandHandlers) HandleJoin(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return err
	}

	channelID, err := h.voiceState.GetUserVoiceChannel(ids.guildID, ids.userID)
	if err != nil || channelID == 0 {
		return respondError(r, "You must be in a voice channel.")
	}

	player := h.registry.GetOrCreate(ids.guildID)
	if err := player.Connect(context.Background(), channelID); err != nil {
		return respondError(r, "Could not join the voice channel.")
	}
	return respondSuccess(r, fmt.Sprintf("Connected to <#%s>.", channelID))
}

// HandleLeave disconnects the bot, stopping playback but keeping the queue.
func (h *CommandHandlers) HandleLeave(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return err
	}

	player := h.registry.Get(ids.guildID)
	if player == nil || player.ConnectedChannel() == 0 {
		return respondError(r, "Not connected to a voice channel.")
	}
	player.Disconnect()
	return respondSuccess(r, "Disconnected.")
}

// HandlePlay resolves the query, queues the track and makes sure the
// orchestrator is running.
func (h *CommandHandlers) HandlePlay(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return err
	}

	voiceChannelID, err := h.voiceState.GetUserVoiceChannel(ids.guildID, ids.userID)
	if err != nil || voiceChannelID == 0 {
		return respondError(r, "You must be in a voice channel to play music.")
	}

	var query string
	for _, option := range i.ApplicationCommandData().Options {
		if option.Name == "query" {
			query = strings.TrimSpace(option.StringValue())
		}
	}
	if query == "" {
		return respondError(r, "Give me a URL or something to search for.")
	}

	title, canonicalURL, duration, err := h.resolver.Lookup(context.Background(), query)
	if err != nil {
		return respondError(r, "Could not find anything for that query.")
	}

	player := h.registry.GetOrCreate(ids.guildID)
	player.Enqueue(domain.TrackRequest{
		Source:         canonicalURL,
		Title:          title,
		Duration:       duration,
		VoiceChannelID: voiceChannelID,
		TextChannelID:  ids.textChannelID,
		RequesterID:    ids.userID,
	})
	player.Start()

	reply := fmt.Sprintf("Queued **%s**", title)
	if formatted := domain.FormatDuration(duration); formatted != "" {
		reply += fmt.Sprintf(" [%s]", formatted)
	}
	return respondSuccess(r, reply+".")
}

// HandlePause pauses the current track.
func (h *CommandHandlers) HandlePause(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	player, err := h.activePlayer(i)
	if err != nil {
		return respondError(r, "Nothing is playing.")
	}

	switch err := player.Pause(); {
	case errors.Is(err, domain.ErrNothingPlaying):
		return respondError(r, "Nothing is playing.")
	case errors.Is(err, domain.ErrAlreadyPaused):
		return respondError(r, "Playback is already paused.")
	case err != nil:
		return err
	}
	return respondSuccess(r, "Paused.")
}

// HandleResume resumes paused playback.
func (h *CommandHandlers) HandleResume(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	player, err := h.activePlayer(i)
	if err != nil {
		return respondError(r, "Nothing is playing.")
	}

	switch err := player.Resume(); {
	case errors.Is(err, domain.ErrNothingPlaying):
		return respondError(r, "Nothing is playing.")
	case errors.Is(err, domain.ErrNotPaused):
		return respondError(r, "Playback is not paused.")
	case err != nil:
		return err
	}
	return respondSuccess(r, "Resumed.")
}

// HandleStop stops playback. Queued tracks are kept for a later /play.
func (h *CommandHandlers) HandleStop(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	player, err := h.activePlayer(i)
	if err != nil || !player.Running() {
		return respondError(r, "Nothing is playing.")
	}
	player.Stop()
	return respondSuccess(r, "Stopped. Queued tracks are kept.")
}

// HandleSkip skips to the next queued track.
func (h *CommandHandlers) HandleSkip(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	player, err := h.activePlayer(i)
	if err != nil {
		return respondError(r, "Nothing is playing.")
	}
	if err := player.Skip(); err != nil {
		return respondError(r, "Nothing is playing.")
	}
	return respondSuccess(r, "Skipped.")
}

// HandleVolume sets the playback volume, or reports it when called without an
// argument.
func (h *CommandHandlers) HandleVolume(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return err
	}

	var level *int64
	for _, option := range i.ApplicationCommandData().Options {
		if option.Name == "level" {
			value := option.IntValue()
			level = &value
		}
	}

	player := h.registry.GetOrCreate(ids.guildID)
	if level == nil {
		return respondSuccess(r, fmt.Sprintf("Volume is %d%%.", player.Volume()))
	}

	if err := player.SetVolume(int(*level)); err != nil {
		return respondError(r, "Volume must be between 0 and 100.")
	}
	return respondSuccess(r, fmt.Sprintf("Volume set to %d%%. Takes effect from the next track.", *level))
}

// HandleNowPlaying shows the current track.
func (h *CommandHandlers) HandleNowPlaying(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	player, err := h.activePlayer(i)
	if err != nil {
		return respondError(r, "Nothing is playing.")
	}

	current, paused := player.Current()
	if current == nil {
		return respondError(r, "Nothing is playing.")
	}

	description := fmt.Sprintf("**%s**", current.Title)
	if formatted := domain.FormatDuration(current.Duration); formatted != "" {
		description += fmt.Sprintf(" [%s]", formatted)
	}
	if paused {
		description += " (paused)"
	}
	return respondEmbed(r, &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: "Now Playing"},
		Description: description,
		Color:       colorSuccess,
	})
}

// HandleQueue lists the pending tracks.
func (h *CommandHandlers) HandleQueue(_ *discordgo.Session, i *discordgo.InteractionCreate, r bot.Responder) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return err
	}

	player := h.registry.Get(ids.guildID)
	if player == nil {
		return respondSuccess(r, "The queue is empty.")
	}
	queued := player.Queued()
	if len(queued) == 0 {
		return respondSuccess(r, "The queue is empty.")
	}

	var sb strings.Builder
	for n, req := range queued {
		if n == maxQueueLines {
			fmt.Fprintf(&sb, "... and %d more", len(queued)-maxQueueLines)
			break
		}
		fmt.Fprintf(&sb, "%d. **%s**", n+1, req.Title)
		if formatted := domain.FormatDuration(req.Duration); formatted != "" {
			fmt.Fprintf(&sb, " [%s]", formatted)
		}
		sb.WriteString("\n")
	}
	return respondEmbed(r, &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: "Queue"},
		Description: sb.String(),
		Color:       colorSuccess,
	})
}

func (h *CommandHandlers) activePlayer(i *discordgo.InteractionCreate) (*application.Player, error) {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return nil, err
	}
	player := h.registry.Get(ids.guildID)
	if player == nil {
		return nil, domain.ErrNothingPlaying
	}
	return player, nil
}
