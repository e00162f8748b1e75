// Package interaction wraps a single Discord interaction and exposes the
// reply primitives used by commands, pagination sessions and modals.
package interaction

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultReplyWindow is how long after creation a first reply is attempted.
const DefaultReplyWindow = 3 * time.Minute

type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Invocation is one inbound interaction: a slash command, a button click or a
// modal submission. It remembers whether the interaction was acknowledged so
// callers can pick between a first reply and a follow-up.
type Invocation struct {
	Session Session
	Event   *discordgo.InteractionCreate

	window time.Duration
	now    func() time.Time

	mu         sync.Mutex
	responded  bool
	subcommand string
	options    []*discordgo.ApplicationCommandInteractionDataOption
}

type Option func(*Invocation)

func WithReplyWindow(d time.Duration) Option {
	return func(inv *Invocation) {
		if d > 0 {
			inv.window = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(inv *Invocation) { inv.now = now }
}

func New(s Session, e *discordgo.InteractionCreate, opts ...Option) *Invocation {
	inv := &Invocation{
		Session: s,
		Event:   e,
		window:  DefaultReplyWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(inv)
	}
	if isCommand(e) {
		inv.options = e.ApplicationCommandData().Options
	}
	return inv
}

func isCommand(e *discordgo.InteractionCreate) bool {
	if e == nil || e.Interaction == nil {
		return false
	}
	return e.Type == discordgo.InteractionApplicationCommand ||
		e.Type == discordgo.InteractionApplicationCommandAutocomplete
}

func (inv *Invocation) ID() string {
	return inv.Event.ID
}

func (inv *Invocation) Type() discordgo.InteractionType {
	return inv.Event.Type
}

func (inv *Invocation) User() *discordgo.User {
	if inv.Event.Member != nil && inv.Event.Member.User != nil {
		return inv.Event.Member.User
	}
	return inv.Event.User
}

func (inv *Invocation) UserID() string {
	if u := inv.User(); u != nil {
		return u.ID
	}
	return ""
}

func (inv *Invocation) GuildID() string {
	return inv.Event.GuildID
}

func (inv *Invocation) InGuild() bool {
	return inv.Event.GuildID != ""
}

// MemberPermissions returns the invoker's computed permissions in the
// channel, or 0 outside a guild.
func (inv *Invocation) MemberPermissions() int64 {
	if inv.Event.Member == nil {
		return 0
	}
	return inv.Event.Member.Permissions
}

// CreatedAt derives the interaction creation time from its snowflake.
func (inv *Invocation) CreatedAt() (time.Time, error) {
	return discordgo.SnowflakeTimestamp(inv.Event.ID)
}

func (inv *Invocation) CommandName() string {
	if !isCommand(inv.Event) {
		return ""
	}
	return inv.Event.ApplicationCommandData().Name
}

func (inv *Invocation) Subcommand() string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.subcommand
}

// EnterSubcommand scopes option lookups to the selected subcommand.
func (inv *Invocation) EnterSubcommand(name string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.subcommand = name
	inv.options = options
}

func (inv *Invocation) Options() []*discordgo.ApplicationCommandInteractionDataOption {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.options
}

func (inv *Invocation) Option(name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range inv.Options() {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func (inv *Invocation) StringOption(name string) string {
	if opt := inv.Option(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

func (inv *Invocation) IntOption(name string) int64 {
	if opt := inv.Option(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionInteger {
		return opt.IntValue()
	}
	return 0
}

func (inv *Invocation) BoolOption(name string) bool {
	if opt := inv.Option(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionBoolean {
		return opt.BoolValue()
	}
	return false
}

// UserOption returns the snowflake of a user option.
func (inv *Invocation) UserOption(name string) string {
	if opt := inv.Option(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionUser {
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return ""
}

func (inv *Invocation) CustomID() string {
	switch inv.Event.Type {
	case discordgo.InteractionMessageComponent:
		return inv.Event.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return inv.Event.ModalSubmitData().CustomID
	}
	return ""
}

// ModalValues flattens the text inputs of a modal submission by custom id.
func (inv *Invocation) ModalValues() map[string]string {
	values := make(map[string]string)
	if inv.Event.Type != discordgo.InteractionModalSubmit {
		return values
	}
	for _, row := range inv.Event.ModalSubmitData().Components {
		actions, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range actions.Components {
			if input, ok := c.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

func (inv *Invocation) Responded() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.responded
}
