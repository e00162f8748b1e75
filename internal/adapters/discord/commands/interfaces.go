package commands

import (
	"context"

	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/core/cooldown"
	"bot-dispatch/internal/logging"

	"github.com/bwmarrin/discordgo"
)

// Executable is anything the Manager can dispatch to by name: a single
// Command or a Group of subcommands.
type Executable interface {
	Name() string
	Description() string
	Execute(ctx context.Context, inv *interaction.Invocation) error
	Descriptor() *discordgo.ApplicationCommand
	Attach(rt Runtime)
}

// Runtime carries the shared collaborators handed to every registered entry.
type Runtime struct {
	Logger    logging.Logger
	Cooldowns *cooldown.Tracker
}

type HandlerFunc func(ctx context.Context, inv *interaction.Invocation) error

// CheckFunc runs after the built-in guild and cooldown checks. Returning a
// *Rejection refuses the invocation with its message; any other error is
// handled like a failing handler.
type CheckFunc func(ctx context.Context, inv *interaction.Invocation) error

type CommandSession interface {
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

type GuildLookup interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

type CommandDispatcher interface {
	Dispatch(ctx context.Context, name string, inv *interaction.Invocation) error
}

// ComponentHandler reports handled=false when a component interaction does
// not belong to it.
type ComponentHandler interface {
	HandleComponent(ctx context.Context, inv *interaction.Invocation) (bool, error)
}

type ModalDispatcher interface {
	Dispatch(ctx context.Context, inv *interaction.Invocation) error
}
