// Package discord creates the gateway session the bot runs on.
package discord

import (
	"log/slog"

	"bot-dispatch/internal/config"

	"github.com/bwmarrin/discordgo"
)

// Intents covers what the interaction layer needs. Slash commands, buttons
// and modals arrive without any privileged intent.
const Intents = discordgo.IntentsGuilds

func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	discord, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		slog.Error("Failed to create discord session", "error", err)
		return nil, err
	}

	discord.Identify.Intents = Intents
	// Each interaction is handled on its own goroutine.
	discord.SyncEvents = false

	return discord, nil
}

func ReadyHandler(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Bot is online", "user", r.User.Username, "guilds", len(r.Guilds))
}
