package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"bot-dispatch/internal/adapters/discord/formatting"
	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/core/cooldown"
	"bot-dispatch/internal/core/permissions"
	"bot-dispatch/internal/logging"
	"bot-dispatch/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

const scope = "commands"

// Definition describes a single slash command.
type Definition struct {
	Name        string
	Description string
	// GuildOnly rejects invocations from direct messages.
	GuildOnly  bool
	Permission permissions.Requirement
	Cooldown   time.Duration
	Options    []*discordgo.ApplicationCommandOption
	Check      CheckFunc
	// Customize may adjust the exported descriptor.
	Customize func(*discordgo.ApplicationCommand)
	Handler   HandlerFunc
}

type Command struct {
	def Definition

	mu  sync.RWMutex
	rt  Runtime
	key string
}

func New(def Definition) *Command {
	return &Command{
		def: def,
		key: def.Name,
		rt: Runtime{
			Logger:    logging.Nop(),
			Cooldowns: cooldown.NewTracker(),
		},
	}
}

func (c *Command) Name() string                        { return c.def.Name }
func (c *Command) Description() string                 { return c.def.Description }
func (c *Command) Cooldown() time.Duration             { return c.def.Cooldown }
func (c *Command) Permission() permissions.Requirement { return c.def.Permission }
func (c *Command) GuildOnly() bool                     { return c.def.GuildOnly }

func (c *Command) Attach(rt Runtime) {
	c.attach(rt, c.def.Name)
}

// SetLogger replaces only the logger of the command.
func (c *Command) SetLogger(logger logging.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if logger != nil {
		c.rt.Logger = logger
	}
}

// attach installs shared collaborators. key is the cooldown key; children of
// a group are keyed by "group child".
func (c *Command) attach(rt Runtime, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rt.Logger != nil {
		c.rt.Logger = rt.Logger
	}
	if rt.Cooldowns != nil {
		c.rt.Cooldowns = rt.Cooldowns
	}
	c.key = key
}

func (c *Command) runtime() (Runtime, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rt, c.key
}

// Execute validates the invocation, runs the handler and answers the invoker.
// Handler failures never escape: they are logged and answered with a generic
// message. The returned error is always a reply-channel failure.
func (c *Command) Execute(ctx context.Context, inv *interaction.Invocation) error {
	rt, key := c.runtime()
	fields := logFields(inv, c.def.Name)

	if err := c.validate(ctx, inv, rt.Cooldowns, key); err != nil {
		var rejection *Rejection
		if errors.As(err, &rejection) {
			metrics.CommandRejections.WithLabelValues(key, rejection.Reason).Inc()
			rt.Logger.Debug(scope, "command rejected", append(fields, "reason", rejection.Reason)...)
			return inv.Respond(interaction.Private(rejection.Message))
		}
		return c.fail(rt.Logger, inv, key, err, fields)
	}

	start := time.Now()
	err := c.invoke(ctx, inv)
	metrics.CommandDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())

	if err != nil {
		return c.fail(rt.Logger, inv, key, err, fields)
	}

	metrics.CommandExecutions.WithLabelValues(key, "success").Inc()
	rt.Logger.Info(scope, "command executed", append(fields, logging.Audit...)...)
	return nil
}

func (c *Command) fail(logger logging.Logger, inv *interaction.Invocation, key string, err error, fields []any) error {
	metrics.CommandExecutions.WithLabelValues(key, "failure").Inc()
	logger.Error(scope, "command failed", err, fields...)
	return inv.Respond(interaction.Private(formatting.MsgGenericFailure))
}

func (c *Command) validate(ctx context.Context, inv *interaction.Invocation, tracker *cooldown.Tracker, key string) error {
	if c.def.GuildOnly && !inv.InGuild() {
		return Reject("guild_only", formatting.MsgGuildOnly)
	}

	if wait := tracker.CheckAndReserve(key, c.def.Cooldown, inv.UserID()); wait > 0 {
		return Reject("cooldown", formatting.MsgCooldown(commandPath(inv, c.def.Name), wait))
	}

	if c.def.Check != nil {
		return safeCall(ctx, inv, c.def.Check)
	}
	return nil
}

func (c *Command) invoke(ctx context.Context, inv *interaction.Invocation) error {
	if c.def.Handler == nil {
		return ErrNoHandler
	}
	return safeCall(ctx, inv, c.def.Handler)
}

// safeCall turns a panic in caller code into ErrHandlerPanic.
func safeCall(ctx context.Context, inv *interaction.Invocation, fn func(context.Context, *interaction.Invocation) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return fn(ctx, inv)
}

// Descriptor returns the application command registered with Discord.
func (c *Command) Descriptor() *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     c.def.Name,
		Description:              c.def.Description,
		DefaultMemberPermissions: permissions.Resolve(c.def.Permission),
		Options:                  copyOptions(c.def.Options),
	}
	if c.def.GuildOnly {
		dm := false
		cmd.DMPermission = &dm
	}
	if c.def.Customize != nil {
		c.def.Customize(cmd)
	}
	return cmd
}

// copyOptions copies the slice and the options so a Customize hook cannot
// change the definition.
func copyOptions(options []*discordgo.ApplicationCommandOption) []*discordgo.ApplicationCommandOption {
	if options == nil {
		return nil
	}
	out := make([]*discordgo.ApplicationCommandOption, len(options))
	for i, o := range options {
		if o == nil {
			continue
		}
		cp := *o
		cp.Choices = slices.Clone(o.Choices)
		cp.ChannelTypes = slices.Clone(o.ChannelTypes)
		cp.Options = copyOptions(o.Options)
		out[i] = &cp
	}
	return out
}

// subcommandOption exports the command as a child of a group descriptor.
func (c *Command) subcommandOption() *discordgo.ApplicationCommandOption {
	d := c.Descriptor()
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        d.Name,
		Description: d.Description,
		Options:     d.Options,
	}
}

func logFields(inv *interaction.Invocation, name string) []any {
	command := inv.CommandName()
	if command == "" {
		command = name
	}
	fields := []any{"command", command}
	if sub := inv.Subcommand(); sub != "" {
		fields = append(fields, "subcommand", sub)
	}
	return append(fields, "user_id", inv.UserID(), "guild_id", inv.GuildID(), "interaction_id", inv.ID())
}

func commandPath(inv *interaction.Invocation, name string) string {
	command := inv.CommandName()
	if command == "" {
		return name
	}
	if sub := inv.Subcommand(); sub != "" {
		return command + " " + sub
	}
	return command
}
