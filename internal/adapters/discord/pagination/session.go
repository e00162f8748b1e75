package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bot-dispatch/internal/adapters/discord/formatting"
	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/metrics"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	ActionPrev = "prev"
	ActionNext = "next"

	DefaultTimeout = 2 * time.Minute
)

var (
	ErrNoItems       = errors.New("pagination: no items to show")
	ErrClearControls = errors.New("pagination: failed to clear controls")
)

// Action is an extra button shown next to prev/next.
type Action struct {
	ID    string
	Label string
	Style discordgo.ButtonStyle
}

type ActionEvent[T any] struct {
	ID         string
	Index      int
	Items      []T
	Invocation *interaction.Invocation
}

// ActionResult tells the session what an action did. A non-nil Items
// replaces the browsed list; an empty replacement ends the session.
type ActionResult[T any] struct {
	Handled bool
	Items   []T
	Stop    bool
}

type Options[T any] struct {
	Items  []T
	Render func(item T, index, total int) interaction.Reply
	// Timeout defaults to DefaultTimeout.
	Timeout  time.Duration
	Actions  []Action
	OnAction func(ctx context.Context, ev ActionEvent[T]) (ActionResult[T], error)
	// DeleteAction names the action that replaces the view itself, so the
	// session does not re-render after it.
	DeleteAction string
	Ephemeral    bool
}

// Session is one live browser. It ends on timeout, on Stop, or when an
// action empties the list or asks to stop.
type Session[T any] struct {
	id     string
	hub    *Hub
	origin *interaction.Invocation
	owner  string
	opts   Options[T]

	mu    sync.Mutex
	index int
	items []T
	ended bool
	timer *time.Timer
}

// Start sends the first page as the response to inv and subscribes the
// session to hub. A deferred inv gets its original response edited instead.
func Start[T any](ctx context.Context, hub *Hub, inv *interaction.Invocation, opts Options[T]) (*Session[T], error) {
	if len(opts.Items) == 0 {
		return nil, ErrNoItems
	}
	if opts.Render == nil {
		return nil, errors.New("pagination: render function is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	s := &Session[T]{
		id:     uuid.NewString(),
		hub:    hub,
		origin: inv,
		owner:  inv.UserID(),
		opts:   opts,
		items:  append([]T(nil), opts.Items...),
	}

	view, err := s.view(0, s.items)
	if err != nil {
		return nil, err
	}
	view.Ephemeral = opts.Ephemeral

	if inv.Responded() {
		err = inv.EditReply(view)
	} else {
		err = inv.Reply(view)
	}
	if err != nil {
		return nil, err
	}

	hub.subscribe(s.id, s)
	s.mu.Lock()
	s.timer = time.AfterFunc(opts.Timeout, s.expire)
	s.mu.Unlock()

	hub.logger.Debug(scope, "session started", "session_id", s.id, "user_id", s.owner, "items", len(s.items))
	return s, nil
}

func (s *Session[T]) ID() string { return s.id }

func (s *Session[T]) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Session[T]) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Stop ends the session immediately and removes the controls from the
// message. Stopping an ended session is a no-op.
func (s *Session[T]) Stop() error {
	if !s.end() {
		return nil
	}
	return s.clearControls()
}

func (s *Session[T]) expire() {
	if !s.end() {
		return
	}
	metrics.PaginationEvents.WithLabelValues("timeout").Inc()
	if err := s.clearControls(); err != nil {
		s.hub.logger.Warn(scope, "session timed out", "session_id", s.id, "error", err)
	}
}

// end performs the Active to Ended transition and reports whether this call
// made it.
func (s *Session[T]) end() bool {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return false
	}
	s.ended = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.hub.unsubscribe(s.id)
	s.hub.logger.Debug(scope, "session ended", "session_id", s.id)
	return true
}

func (s *Session[T]) clearControls() error {
	if err := s.origin.ClearComponents(); err != nil {
		return fmt.Errorf("%w: %w", ErrClearControls, err)
	}
	return nil
}

func (s *Session[T]) click(ctx context.Context, inv *interaction.Invocation, action string) error {
	if inv.UserID() != s.owner {
		metrics.PaginationEvents.WithLabelValues("foreign").Inc()
		return inv.Reply(interaction.Private(formatting.MsgNotYourControls))
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return inv.Reply(interaction.Private(formatting.MsgSessionExpired))
	}

	switch action {
	case ActionPrev, ActionNext:
		if action == ActionPrev && s.index > 0 {
			s.index--
		}
		if action == ActionNext && s.index < len(s.items)-1 {
			s.index++
		}
		index, items := s.index, s.items
		s.mu.Unlock()

		metrics.PaginationEvents.WithLabelValues(action).Inc()
		view, err := s.view(index, items)
		if err != nil {
			return s.renderFailed(inv, action, err)
		}
		return inv.Update(view)
	}

	ev := ActionEvent[T]{
		ID:         action,
		Index:      s.index,
		Items:      append([]T(nil), s.items...),
		Invocation: inv,
	}
	s.mu.Unlock()

	metrics.PaginationEvents.WithLabelValues("custom").Inc()
	return s.runAction(ctx, inv, ev)
}

func (s *Session[T]) runAction(ctx context.Context, inv *interaction.Invocation, ev ActionEvent[T]) error {
	if s.opts.OnAction == nil {
		return s.acknowledge(inv)
	}

	result, err := s.callAction(ctx, ev)
	if err != nil {
		s.hub.logger.Error(scope, "pagination action failed", err, "session_id", s.id, "action", ev.ID, "user_id", inv.UserID())
		return inv.Respond(interaction.Private(formatting.MsgInteractionError))
	}
	if !result.Handled {
		return s.acknowledge(inv)
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return s.acknowledge(inv)
	}
	finish := result.Stop || (result.Items != nil && len(result.Items) == 0)
	if !finish && result.Items != nil {
		s.items = append([]T(nil), result.Items...)
		s.index = min(s.index, len(s.items)-1)
	}
	index, items := s.index, s.items
	s.mu.Unlock()

	if finish {
		ackErr := s.acknowledge(inv)
		if s.end() {
			if err := s.clearControls(); err != nil {
				s.hub.logger.Warn(scope, "failed to clear controls", "session_id", s.id, "error", err)
			}
		}
		return ackErr
	}

	if ev.ID == s.opts.DeleteAction {
		return s.acknowledge(inv)
	}
	view, err := s.view(index, items)
	if err != nil {
		return s.renderFailed(inv, ev.ID, err)
	}
	if inv.Responded() {
		return s.origin.EditReply(view)
	}
	return inv.Update(view)
}

func (s *Session[T]) callAction(ctx context.Context, ev ActionEvent[T]) (result ActionResult[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action handler panicked: %v", r)
		}
	}()
	return s.opts.OnAction(ctx, ev)
}

// acknowledge answers a click the action handler left unanswered.
func (s *Session[T]) acknowledge(inv *interaction.Invocation) error {
	if inv.Responded() {
		return nil
	}
	return inv.DeferUpdate()
}

// renderFailed answers a click whose page could not be rendered. The
// session stays alive on its current page.
func (s *Session[T]) renderFailed(inv *interaction.Invocation, action string, err error) error {
	s.hub.logger.Error(scope, "pagination render failed", err, "session_id", s.id, "action", action, "user_id", inv.UserID())
	return inv.Respond(interaction.Private(formatting.MsgInteractionError))
}

// view renders a page. It must not be called with s.mu held.
func (s *Session[T]) view(index int, items []T) (r interaction.Reply, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render panicked: %v", p)
		}
	}()
	r = s.opts.Render(items[index], index, len(items))
	r.Components = append(append([]discordgo.MessageComponent(nil), r.Components...), s.controls(index, len(items))...)
	return r, nil
}
