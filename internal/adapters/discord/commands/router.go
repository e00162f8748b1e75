package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/adapters/discord/modals"
	"bot-dispatch/internal/logging"
	"bot-dispatch/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

// Handlers declares which interaction kinds the router subscribes to. Nil
// slots are not installed.
type Handlers struct {
	Commands     CommandDispatcher
	Autocomplete CommandDispatcher
	Components   ComponentHandler
	Modals       ModalDispatcher
	Ready        func(s *discordgo.Session, r *discordgo.Ready)
}

type EventSource interface {
	AddHandler(handler interface{}) func()
}

type Router struct {
	handlers    Handlers
	logger      logging.Logger
	replyWindow time.Duration
}

type RouterOption func(*Router)

func WithRouterLogger(logger logging.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithReplyWindow(d time.Duration) RouterOption {
	return func(r *Router) { r.replyWindow = d }
}

func NewRouter(handlers Handlers, opts ...RouterOption) *Router {
	r := &Router{
		handlers:    handlers,
		logger:      logging.Nop(),
		replyWindow: interaction.DefaultReplyWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	slog.Info("Router initialized",
		"commands", handlers.Commands != nil,
		"autocomplete", handlers.Autocomplete != nil,
		"components", handlers.Components != nil,
		"modals", handlers.Modals != nil,
	)
	return r
}

// Install subscribes the router to the event source and returns a function
// removing every subscription it made.
func (r *Router) Install(source EventSource) func() {
	var removers []func()

	if r.handlers.Ready != nil {
		removers = append(removers, source.AddHandler(r.handlers.Ready))
	}
	if r.wantsInteractions() {
		removers = append(removers, source.AddHandler(r.HandleFunc()))
	}

	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

func (r *Router) wantsInteractions() bool {
	h := r.handlers
	return h.Commands != nil || h.Autocomplete != nil || h.Components != nil || h.Modals != nil
}

func (r *Router) HandleFunc() func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		r.Handle(context.Background(), s, i)
	}
}

// Handle routes one interaction. Routing errors are logged here; they are
// not answered, since they indicate a registration mismatch rather than a
// user mistake.
func (r *Router) Handle(ctx context.Context, s interaction.Session, i *discordgo.InteractionCreate) {
	inv := interaction.New(s, i, interaction.WithReplyWindow(r.replyWindow))

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if r.handlers.Commands == nil {
			return
		}
		err = r.handlers.Commands.Dispatch(ctx, inv.CommandName(), inv)

	case discordgo.InteractionApplicationCommandAutocomplete:
		if r.handlers.Autocomplete == nil {
			return
		}
		err = r.handlers.Autocomplete.Dispatch(ctx, inv.CommandName(), inv)

	case discordgo.InteractionMessageComponent:
		if r.handlers.Components == nil {
			return
		}
		var handled bool
		handled, err = r.handlers.Components.HandleComponent(ctx, inv)
		if !handled && err == nil {
			r.logger.Debug(scope, "component not handled", "custom_id", inv.CustomID())
		}

	case discordgo.InteractionModalSubmit:
		if r.handlers.Modals == nil {
			return
		}
		err = r.handlers.Modals.Dispatch(ctx, inv)

	default:
		return
	}

	if err != nil {
		r.report(inv, err)
	}
}

func (r *Router) report(inv *interaction.Invocation, err error) {
	var replyErr *interaction.ReplyError
	switch {
	case errors.As(err, &replyErr):
		r.logger.Warn(scope, "reply failed", "interaction_id", replyErr.InteractionID, "reason", replyErr.Reason, "error", err)
	case errors.Is(err, ErrCommandNotFound):
		r.logger.Warn(scope, "interaction does not match any registration", "interaction_id", inv.ID(), "error", err)
	case errors.Is(err, ErrUnknownSubcommand):
		metrics.DispatchErrors.WithLabelValues("unknown_subcommand").Inc()
		r.logger.Warn(scope, "interaction does not match any registration", "interaction_id", inv.ID(), "error", err)
	case errors.Is(err, modals.ErrModalNotFound):
		r.logger.Warn(scope, "modal submission does not match any registration", "interaction_id", inv.ID(), "custom_id", inv.CustomID(), "error", err)
	default:
		metrics.DispatchErrors.WithLabelValues("other").Inc()
		r.logger.Warn(scope, "interaction dispatch failed", "interaction_id", inv.ID(), "type", inv.Type(), "error", err)
	}
}
