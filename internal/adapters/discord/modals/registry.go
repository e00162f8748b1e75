// Package modals keeps the dialogs the bot can show and routes their
// submissions back to the code that opened them.
package modals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"bot-dispatch/internal/adapters/discord/formatting"
	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/logging"
	"bot-dispatch/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

const (
	scope = "modals"
	// separator splits a dialog id into the definition id and an instance
	// suffix, as in "note-edit:1234".
	separator = ":"
)

var ErrModalNotFound = errors.New("modal not found")

type Field struct {
	ID          string
	Label       string
	Style       discordgo.TextInputStyle
	Placeholder string
	Value       string
	Required    bool
	MinLength   int
	MaxLength   int
}

type Submission struct {
	// ID is the full custom id of the submitted dialog.
	ID string
	// Instance is the part of ID after the first separator, if any.
	Instance   string
	Values     map[string]string
	Invocation *interaction.Invocation
}

// Definition describes a dialog. An ephemeral definition handles a single
// submission and is removed when it is dispatched.
type Definition struct {
	ID        string
	Ephemeral bool
	Title     string
	Fields    []Field
	OnSubmit  func(ctx context.Context, sub Submission) error
}

type Registry struct {
	mu     sync.Mutex
	defs   map[string]Definition
	logger logging.Logger
}

func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	slog.Info("Modal registry initialized")
	return &Registry{
		defs:   make(map[string]Definition),
		logger: logger,
	}
}

// Register stores def, replacing any definition with the same id, and returns
// the dialog ready to be shown.
func (r *Registry) Register(def Definition) *discordgo.InteractionResponseData {
	r.mu.Lock()
	r.defs[def.ID] = def
	r.mu.Unlock()

	return dialog(def, def.ID)
}

// Lookup tries the exact id first and falls back to the part before the
// first separator.
func (r *Registry) Lookup(id string) (Definition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, def, ok := r.lookup(id)
	return def, ok
}

func (r *Registry) lookup(id string) (string, Definition, bool) {
	if def, ok := r.defs[id]; ok {
		return id, def, true
	}
	if prefix, _, found := strings.Cut(id, separator); found {
		if def, ok := r.defs[prefix]; ok {
			return prefix, def, true
		}
	}
	return "", Definition{}, false
}

func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[id]; !ok {
		return false
	}
	delete(r.defs, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.defs)
}

// claim resolves id and, for ephemeral definitions, removes the definition in
// the same critical section so a duplicate delivery finds nothing.
func (r *Registry) claim(id string) (Definition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, def, ok := r.lookup(id)
	if ok && def.Ephemeral {
		delete(r.defs, key)
	}
	return def, ok
}

// Show answers inv with the dialog registered under id. A non-empty instance
// is appended to the custom id and comes back as Submission.Instance.
func (r *Registry) Show(ctx context.Context, inv *interaction.Invocation, id, instance string) error {
	def, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrModalNotFound, id)
	}

	customID := def.ID
	if instance != "" {
		customID += separator + instance
	}
	return inv.ShowModal(dialog(def, customID))
}

// Dispatch runs the submit handler of the dialog inv was submitted from.
// Handler failures are logged and answered; only ErrModalNotFound and reply
// failures are returned.
func (r *Registry) Dispatch(ctx context.Context, inv *interaction.Invocation) error {
	id := inv.CustomID()
	def, ok := r.claim(id)
	if !ok {
		metrics.ModalSubmissions.WithLabelValues("unknown", "not_found").Inc()
		return fmt.Errorf("%w: %s", ErrModalNotFound, id)
	}

	_, instance, _ := strings.Cut(id, separator)
	sub := Submission{
		ID:         id,
		Instance:   instance,
		Values:     inv.ModalValues(),
		Invocation: inv,
	}
	fields := []any{"modal", def.ID, "custom_id", id, "user_id", inv.UserID(), "interaction_id", inv.ID()}

	if err := r.submit(ctx, def, sub); err != nil {
		metrics.ModalSubmissions.WithLabelValues(def.ID, "failure").Inc()
		r.logger.Error(scope, "modal submission failed", err, fields...)
		return inv.Respond(interaction.Private(formatting.MsgInteractionError))
	}

	metrics.ModalSubmissions.WithLabelValues(def.ID, "success").Inc()
	r.logger.Info(scope, "modal submitted", append(fields, logging.Audit...)...)
	return nil
}

func (r *Registry) submit(ctx context.Context, def Definition, sub Submission) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("modal handler panicked: %v", rec)
		}
	}()

	if def.OnSubmit == nil {
		return fmt.Errorf("modal %s has no submit handler", def.ID)
	}
	return def.OnSubmit(ctx, sub)
}

func dialog(def Definition, customID string) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(def.Fields))
	for _, f := range def.Fields {
		style := f.Style
		if style == 0 {
			style = discordgo.TextInputShort
		}
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    f.ID,
					Label:       f.Label,
					Style:       style,
					Placeholder: f.Placeholder,
					Value:       f.Value,
					Required:    f.Required,
					MinLength:   f.MinLength,
					MaxLength:   f.MaxLength,
				},
			},
		})
	}

	return &discordgo.InteractionResponseData{
		CustomID:   customID,
		Title:      def.Title,
		Components: rows,
	}
}
