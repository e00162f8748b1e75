package commands

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/adapters/discord/interaction/interactiontest"
	"bot-dispatch/internal/adapters/discord/modals"

	"github.com/bwmarrin/discordgo"
)

type mockEventSource struct {
	added   []interface{}
	removed int
}

func (m *mockEventSource) AddHandler(handler interface{}) func() {
	m.added = append(m.added, handler)
	return func() { m.removed++ }
}

type recordingDispatcher struct {
	names []string
	err   error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, name string, inv *interaction.Invocation) error {
	d.names = append(d.names, name)
	return d.err
}

type recordingComponents struct {
	ids     []string
	handled bool
	err     error
}

func (c *recordingComponents) HandleComponent(ctx context.Context, inv *interaction.Invocation) (bool, error) {
	c.ids = append(c.ids, inv.CustomID())
	return c.handled, c.err
}

type recordingModals struct {
	ids []string
	err error
}

func (m *recordingModals) Dispatch(ctx context.Context, inv *interaction.Invocation) error {
	m.ids = append(m.ids, inv.CustomID())
	return m.err
}

func TestRouter_InstallOnlyDeclaredSlots(t *testing.T) {
	tests := []struct {
		name     string
		handlers Handlers
		want     int
	}{
		{"nothing", Handlers{}, 0},
		{"commands only", Handlers{Commands: &recordingDispatcher{}}, 1},
		{"ready only", Handlers{Ready: func(*discordgo.Session, *discordgo.Ready) {}}, 1},
		{"everything", Handlers{
			Commands:   &recordingDispatcher{},
			Components: &recordingComponents{},
			Modals:     &recordingModals{},
			Ready:      func(*discordgo.Session, *discordgo.Ready) {},
		}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &mockEventSource{}
			remove := NewRouter(tt.handlers).Install(source)

			if len(source.added) != tt.want {
				t.Errorf("expected %d subscriptions, got %d", tt.want, len(source.added))
			}
			remove()
			if source.removed != tt.want {
				t.Errorf("expected %d removals, got %d", tt.want, source.removed)
			}
		})
	}
}

func TestRouter_RoutesByInteractionType(t *testing.T) {
	commands := &recordingDispatcher{}
	autocomplete := &recordingDispatcher{}
	components := &recordingComponents{handled: true}
	modals := &recordingModals{}
	r := NewRouter(Handlers{Commands: commands, Autocomplete: autocomplete, Components: components, Modals: modals})

	session := &interactiontest.Session{}
	ctx := context.Background()

	r.Handle(ctx, session, interactiontest.Command("ping", "U1", "G1"))

	auto := interactiontest.Command("search", "U1", "G1")
	auto.Type = discordgo.InteractionApplicationCommandAutocomplete
	r.Handle(ctx, session, auto)

	r.Handle(ctx, session, interactiontest.Component("page:abc:next", "U1"))
	r.Handle(ctx, session, interactiontest.ModalSubmit("note-edit:U2", "U1", map[string]string{"note": "hi"}))

	if len(commands.names) != 1 || commands.names[0] != "ping" {
		t.Errorf("unexpected command dispatches %v", commands.names)
	}
	if len(autocomplete.names) != 1 || autocomplete.names[0] != "search" {
		t.Errorf("unexpected autocomplete dispatches %v", autocomplete.names)
	}
	if len(components.ids) != 1 || components.ids[0] != "page:abc:next" {
		t.Errorf("unexpected component dispatches %v", components.ids)
	}
	if len(modals.ids) != 1 || modals.ids[0] != "note-edit:U2" {
		t.Errorf("unexpected modal dispatches %v", modals.ids)
	}
}

func TestRouter_EmptySlotIgnoresInteraction(t *testing.T) {
	logger := &recordingLogger{}
	r := NewRouter(Handlers{Commands: &recordingDispatcher{}}, WithRouterLogger(logger))
	session := &interactiontest.Session{}

	r.Handle(context.Background(), session, interactiontest.ModalSubmit("note-edit:U2", "U1", nil))

	if session.ResponseCount() != 0 || len(logger.records) != 0 {
		t.Error("interaction without a slot should be ignored")
	}
}

func TestRouter_ReportsDispatchErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"not found", ErrCommandNotFound, "interaction does not match any registration"},
		{"unknown subcommand", ErrUnknownSubcommand, "interaction does not match any registration"},
		{"reply failed", &interaction.ReplyError{InteractionID: "1", Reason: interaction.ReasonExpired, Err: interaction.ErrExpired}, "reply failed"},
		{"other", errors.New("boom"), "interaction dispatch failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			r := NewRouter(Handlers{Commands: &recordingDispatcher{err: tt.err}}, WithRouterLogger(logger))
			session := &interactiontest.Session{}

			r.Handle(context.Background(), session, interactiontest.Command("ping", "U1", "G1"))

			rec := logger.last(slog.LevelWarn)
			if rec == nil || rec.msg != tt.wantMsg {
				t.Errorf("expected warning %q, got %+v", tt.wantMsg, rec)
			}
			if session.ResponseCount() != 0 {
				t.Error("dispatch errors are not answered by the router")
			}
		})
	}
}

func TestRouter_UnhandledComponentIsLogged(t *testing.T) {
	logger := &recordingLogger{}
	r := NewRouter(Handlers{Components: &recordingComponents{}}, WithRouterLogger(logger))

	r.Handle(context.Background(), &interactiontest.Session{}, interactiontest.Component("other:1", "U1"))

	rec := logger.last(slog.LevelDebug)
	if rec == nil || rec.attr("custom_id") != "other:1" {
		t.Errorf("expected debug record for unhandled component, got %+v", rec)
	}
}

func TestRouter_EndToEndWithManager(t *testing.T) {
	m := NewManager(nil, nil)
	m.Register(New(Definition{
		Name: "ping",
		Handler: func(ctx context.Context, inv *interaction.Invocation) error {
			return inv.Reply(interaction.Text("pong"))
		},
	}))
	r := NewRouter(Handlers{Commands: m})
	session := &interactiontest.Session{}

	r.Handle(context.Background(), session, interactiontest.Command("ping", "U1", "G1"))

	if session.LastContent() != "pong" {
		t.Errorf("expected pong, got %q", session.LastContent())
	}
}

func TestRouter_ReportsUnknownModal(t *testing.T) {
	logger := &recordingLogger{}
	r := NewRouter(Handlers{Modals: modals.NewRegistry(nil)}, WithRouterLogger(logger))

	r.Handle(context.Background(), &interactiontest.Session{}, interactiontest.ModalSubmit("gone:1", "U1", nil))

	rec := logger.last(slog.LevelWarn)
	if rec == nil || rec.attr("custom_id") != "gone:1" {
		t.Errorf("expected warning for unknown modal, got %+v", rec)
	}
}
