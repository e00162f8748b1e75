package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// RegisterCommands creates every descriptor with Discord. An empty guildID
// registers the commands globally. Failed creations are logged and leave a
// nil slot in the result.
func RegisterCommands(session CommandSession, commands []*discordgo.ApplicationCommand, appID, guildID string) []*discordgo.ApplicationCommand {
	registered := make([]*discordgo.ApplicationCommand, len(commands))
	target := registrationScope(guildID)

	for i, cmd := range commands {
		kind, subcommands := describe(cmd)
		result, err := session.ApplicationCommandCreate(appID, guildID, cmd)
		if err != nil {
			slog.Error("Cannot register command", "name", cmd.Name, "kind", kind, "scope", target, "error", err)
			continue
		}
		registered[i] = result
		slog.Info("Registered command", "name", cmd.Name, "kind", kind, "subcommands", subcommands, "scope", target)
	}

	return registered
}

// Sync registers everything the manager currently holds.
func Sync(session CommandSession, m *Manager, appID, guildID string) []*discordgo.ApplicationCommand {
	registered := RegisterCommands(session, m.Descriptors(), appID, guildID)

	failed := 0
	for _, cmd := range registered {
		if cmd == nil {
			failed++
		}
	}
	slog.Info("Command sync finished", "registered", len(registered)-failed, "failed", failed, "scope", registrationScope(guildID))
	return registered
}

// CleanupCommands deletes the registered commands. Every deletion is attempted;
// the failures are returned joined.
func CleanupCommands(session CommandSession, commands []*discordgo.ApplicationCommand, appID, guildID string) error {
	var errs []error
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		if err := session.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			slog.Error("Cannot delete command", "name", cmd.Name, "scope", registrationScope(guildID), "error", err)
			errs = append(errs, fmt.Errorf("delete command %s: %w", cmd.Name, err))
		}
	}
	return errors.Join(errs...)
}

// describe reports whether cmd is a group and how many subcommands it has.
func describe(cmd *discordgo.ApplicationCommand) (string, int) {
	subcommands := 0
	for _, o := range cmd.Options {
		if o != nil && o.Type == discordgo.ApplicationCommandOptionSubCommand {
			subcommands++
		}
	}
	if subcommands > 0 {
		return "group", subcommands
	}
	return "command", 0
}

func registrationScope(guildID string) string {
	if guildID == "" {
		return "global"
	}
	return "guild:" + guildID
}
