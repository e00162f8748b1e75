package commands

import (
	"context"
	"fmt"
	"sync"

	"bot-dispatch/internal/adapters/discord/formatting"
	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/core/permissions"
	"bot-dispatch/internal/logging"
	"bot-dispatch/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

// Group is a top-level command whose children are selected as subcommands.
// The group itself has no cooldown or scope gate; every child validates its
// own invocation.
type Group struct {
	name        string
	description string
	permission  permissions.Requirement
	guildOnly   bool

	mu       sync.RWMutex
	children map[string]*Command
	order    []string
	rt       Runtime
}

type GroupOption func(*Group)

func WithGroupPermission(req permissions.Requirement) GroupOption {
	return func(g *Group) { g.permission = req }
}

func WithGroupGuildOnly() GroupOption {
	return func(g *Group) { g.guildOnly = true }
}

func NewGroup(name, description string, opts ...GroupOption) *Group {
	g := &Group{
		name:        name,
		description: description,
		children:    make(map[string]*Command),
		rt:          Runtime{Logger: logging.Nop()},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Group) Name() string        { return g.name }
func (g *Group) Description() string { return g.description }

// Add registers children, replacing any child with the same name.
func (g *Group) Add(cmds ...*Command) *Group {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, cmd := range cmds {
		if _, exists := g.children[cmd.Name()]; !exists {
			g.order = append(g.order, cmd.Name())
		}
		g.children[cmd.Name()] = cmd
		cmd.attach(g.rt, g.childKey(cmd.Name()))
	}
	return g
}

func (g *Group) Child(name string) (*Command, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cmd, ok := g.children[name]
	return cmd, ok
}

// Children returns the subcommands in the order they were added.
func (g *Group) Children() []*Command {
	g.mu.RLock()
	defer g.mu.RUnlock()

	children := make([]*Command, 0, len(g.order))
	for _, name := range g.order {
		children = append(children, g.children[name])
	}
	return children
}

func (g *Group) Attach(rt Runtime) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rt.Logger != nil {
		g.rt.Logger = rt.Logger
	}
	if rt.Cooldowns != nil {
		g.rt.Cooldowns = rt.Cooldowns
	}
	for name, child := range g.children {
		child.attach(g.rt, g.childKey(name))
	}
}

func (g *Group) childKey(child string) string {
	return g.name + " " + child
}

func (g *Group) logger() logging.Logger {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rt.Logger
}

// Execute dispatches to the selected subcommand. A selection that was never
// registered means the descriptor Discord holds is out of sync with the
// group and is returned as ErrUnknownSubcommand.
func (g *Group) Execute(ctx context.Context, inv *interaction.Invocation) error {
	selected := selectedSubcommand(inv.Options())
	if selected == nil {
		return fmt.Errorf("%w: /%s called without a subcommand", ErrUnknownSubcommand, g.name)
	}

	child, ok := g.Child(selected.Name)
	if !ok {
		return fmt.Errorf("%w: /%s %s", ErrUnknownSubcommand, g.name, selected.Name)
	}

	inv.EnterSubcommand(selected.Name, selected.Options)
	return g.run(ctx, child, inv)
}

func (g *Group) run(ctx context.Context, child *Command, inv *interaction.Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			key := g.childKey(child.Name())
			metrics.CommandExecutions.WithLabelValues(key, "failure").Inc()
			g.logger().Error(scope, "subcommand failed", fmt.Errorf("%w: %v", ErrHandlerPanic, r), logFields(inv, g.name)...)
			err = inv.Respond(interaction.Private(formatting.MsgGenericFailure))
		}
	}()

	return child.Execute(ctx, inv)
}

func selectedSubcommand(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range opts {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt
		}
	}
	return nil
}

// Descriptor returns one application command with a subcommand option per
// child.
func (g *Group) Descriptor() *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     g.name,
		Description:              g.description,
		DefaultMemberPermissions: permissions.Resolve(g.permission),
	}
	if g.guildOnly {
		dm := false
		cmd.DMPermission = &dm
	}
	for _, child := range g.Children() {
		cmd.Options = append(cmd.Options, child.subcommandOption())
	}
	return cmd
}
