// Package pagination implements paginated browsers: messages with prev/next
// buttons and optional custom actions, owned by the user who opened them.
package pagination

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"bot-dispatch/internal/adapters/discord/formatting"
	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/logging"
	"bot-dispatch/internal/metrics"
)

const (
	scope    = "pagination"
	idPrefix = "page"
)

// controller is the type-erased view of a Session the hub routes clicks to.
type controller interface {
	click(ctx context.Context, inv *interaction.Invocation, action string) error
	Stop() error
}

// Hub routes button clicks to live sessions by the session id embedded in the
// button custom id.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]controller
	logger   logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	slog.Info("Pagination hub initialized")
	return &Hub{
		sessions: make(map[string]controller),
		logger:   logger,
	}
}

// HandleComponent reports handled=false for custom ids that do not belong to
// a pagination session.
func (h *Hub) HandleComponent(ctx context.Context, inv *interaction.Invocation) (bool, error) {
	sessionID, action, ok := parseCustomID(inv.CustomID())
	if !ok {
		return false, nil
	}

	s, ok := h.lookup(sessionID)
	if !ok {
		metrics.PaginationEvents.WithLabelValues("expired").Inc()
		return true, inv.Reply(interaction.Private(formatting.MsgSessionExpired))
	}
	return true, s.click(ctx, inv, action)
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close stops every live session. Errors clearing controls are logged.
func (h *Hub) Close() {
	h.mu.Lock()
	live := make([]controller, 0, len(h.sessions))
	for _, s := range h.sessions {
		live = append(live, s)
	}
	h.mu.Unlock()

	for _, s := range live {
		if err := s.Stop(); err != nil {
			h.logger.Warn(scope, "failed to clear controls on shutdown", "error", err)
		}
	}
}

func (h *Hub) subscribe(id string, s controller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[id] = s
	metrics.PaginationSessions.Inc()
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[id]; ok {
		delete(h.sessions, id)
		metrics.PaginationSessions.Dec()
	}
}

func (h *Hub) lookup(id string) (controller, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

func customID(sessionID, action string) string {
	return idPrefix + ":" + sessionID + ":" + action
}

func parseCustomID(id string) (sessionID, action string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != idPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
