package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"bot-dispatch/internal/adapters/discord/interaction"
	"bot-dispatch/internal/core/cooldown"
	"bot-dispatch/internal/logging"
	"bot-dispatch/internal/metrics"

	"github.com/bwmarrin/discordgo"
)

// Manager is the registry of top-level commands and groups. It owns the
// cooldown tracker shared by everything registered with it.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]Executable
	order   []string
	rt      Runtime
}

func NewManager(tracker *cooldown.Tracker, logger logging.Logger) *Manager {
	if tracker == nil {
		tracker = cooldown.NewTracker()
	}
	tracker.ReportTo(metrics.CooldownEntries)
	if logger == nil {
		logger = logging.Nop()
	}
	slog.Info("Command manager initialized")
	return &Manager{
		entries: make(map[string]Executable),
		rt:      Runtime{Logger: logger, Cooldowns: tracker},
	}
}

func (m *Manager) Cooldowns() *cooldown.Tracker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rt.Cooldowns
}

// Register adds e, replacing any entry with the same name.
func (m *Manager) Register(e Executable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.register(e)
}

func (m *Manager) RegisterMultiple(entries ...Executable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.register(e)
	}
}

func (m *Manager) register(e Executable) {
	name := e.Name()
	if _, exists := m.entries[name]; !exists {
		m.order = append(m.order, name)
	}
	e.Attach(m.rt)
	m.entries[name] = e
}

func (m *Manager) Get(name string) (Executable, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	return e, ok
}

func (m *Manager) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

func (m *Manager) Unregister(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[name]; !ok {
		return false
	}
	delete(m.entries, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Executable)
	m.order = nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns the registered entries in registration order.
func (m *Manager) Entries() []Executable {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Executable, 0, len(m.order))
	for _, name := range m.order {
		entries = append(entries, m.entries[name])
	}
	return entries
}

// SetLogger installs logger on every current entry and on entries registered
// later.
func (m *Manager) SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rt.Logger = logger
	for _, e := range m.entries {
		e.Attach(m.rt)
	}
}

// Dispatch runs the entry registered under name.
func (m *Manager) Dispatch(ctx context.Context, name string, inv *interaction.Invocation) error {
	e, ok := m.Get(name)
	if !ok {
		metrics.DispatchErrors.WithLabelValues("command_not_found").Inc()
		return fmt.Errorf("%w: /%s", ErrCommandNotFound, name)
	}
	return e.Execute(ctx, inv)
}

// Descriptors exports every entry for registration with Discord, in
// registration order.
func (m *Manager) Descriptors() []*discordgo.ApplicationCommand {
	entries := m.Entries()
	descriptors := make([]*discordgo.ApplicationCommand, 0, len(entries))
	for _, e := range entries {
		descriptors = append(descriptors, e.Descriptor())
	}
	return descriptors
}
