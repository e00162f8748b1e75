package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"bot-dispatch/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestAuditStore_Insert(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				if !strings.Contains(sql, "INSERT INTO audit_log") {
					t.Errorf("unexpected statement: %s", sql)
				}
				if len(args) != 5 {
					t.Fatalf("expected 5 args, got %d", len(args))
				}
				if args[0] != at || args[1] != "INFO" || args[2] != "commands" || args[3] != "command executed" {
					t.Errorf("unexpected args: %v", args)
				}
				attrs := args[4].(map[string]any)
				if attrs["command"] != "ping" {
					t.Errorf("unexpected attrs: %v", attrs)
				}
				return pgconn.NewCommandTag("INSERT 0 1"), nil
			},
		}

		store := newAuditStore(mockDB, 1)
		err := store.Insert(ctx, logging.Entry{
			Time:    at,
			Level:   slog.LevelInfo,
			Scope:   "commands",
			Message: "command executed",
			Attrs:   map[string]any{"command": "ping"},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("NilAttrs", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				if attrs, ok := args[4].(map[string]any); !ok || attrs == nil {
					t.Errorf("expected empty attrs map, got %#v", args[4])
				}
				return pgconn.NewCommandTag("INSERT 0 1"), nil
			},
		}

		if err := newAuditStore(mockDB, 1).Insert(ctx, logging.Entry{Time: at}); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("Error", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.CommandTag{}, errors.New("db error")
			},
		}

		if err := newAuditStore(mockDB, 1).Insert(ctx, logging.Entry{Time: at}); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})
}

func TestAuditStore_RecordDropsWhenFull(t *testing.T) {
	store := newAuditStore(&MockDB{}, 2)

	for range 5 {
		store.Record(logging.Entry{Message: "x"})
	}

	if len(store.queue) != 2 {
		t.Errorf("expected queue capped at 2, got %d", len(store.queue))
	}
}

func TestAuditStore_RunWritesAndFlushes(t *testing.T) {
	var (
		mu       sync.Mutex
		messages []string
	)
	mockDB := &MockDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			mu.Lock()
			defer mu.Unlock()
			messages = append(messages, args[3].(string))
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	store := newAuditStore(mockDB, 8)
	store.Record(logging.Entry{Message: "first"})
	store.Record(logging.Entry{Message: "second"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(messages)
		mu.Unlock()
		if n == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	store.Record(logging.Entry{Message: "third"})
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(messages) != 3 || messages[0] != "first" || messages[2] != "third" {
		t.Errorf("unexpected writes %v", messages)
	}
}

func TestAuditStore_Recent(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		calls := 0
		mockDB := &MockDB{
			QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				if args[0] != 2 {
					t.Errorf("expected limit 2, got %v", args[0])
				}
				return &MockRows{
					NextFunc: func() bool {
						calls++
						return calls <= 2
					},
					ScanFunc: func(dest ...any) error {
						*dest[0].(*time.Time) = at
						*dest[1].(*string) = []string{"WARN", "INFO"}[calls-1]
						*dest[2].(*string) = "commands"
						*dest[3].(*string) = "entry"
						*dest[4].(*map[string]any) = map[string]any{"n": calls}
						return nil
					},
				}, nil
			},
		}

		entries, err := newAuditStore(mockDB, 1).Recent(ctx, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Level != slog.LevelWarn || entries[1].Level != slog.LevelInfo {
			t.Errorf("unexpected levels %v %v", entries[0].Level, entries[1].Level)
		}
		if !entries[0].Time.Equal(at) || entries[0].Attrs["n"] != 1 {
			t.Errorf("unexpected entry %+v", entries[0])
		}
	})

	t.Run("QueryError", func(t *testing.T) {
		mockDB := &MockDB{
			QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return nil, errors.New("db error")
			},
		}

		if _, err := newAuditStore(mockDB, 1).Recent(ctx, 5); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})

	t.Run("IterationError", func(t *testing.T) {
		mockDB := &MockDB{
			QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return &MockRows{ErrFunc: func() error { return errors.New("conn reset") }}, nil
			},
		}

		if _, err := newAuditStore(mockDB, 1).Recent(ctx, 5); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})
}

func TestAuditStore_Prune(t *testing.T) {
	mockDB := &MockDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			interval, ok := args[0].(pgtype.Interval)
			if !ok || interval.Microseconds != (48*time.Hour).Microseconds() {
				t.Errorf("unexpected interval %#v", args[0])
			}
			return pgconn.NewCommandTag("DELETE 7"), nil
		},
	}

	n, err := newAuditStore(mockDB, 1).Prune(context.Background(), 48*time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7 rows, got %d", n)
	}
}

func TestAuditStore_EnsureSchema(t *testing.T) {
	var statements []string
	mockDB := &MockDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			statements = append(statements, sql)
			return pgconn.CommandTag{}, nil
		},
	}

	if err := newAuditStore(mockDB, 1).EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(statements) != 2 || !strings.Contains(statements[0], "CREATE TABLE IF NOT EXISTS audit_log") {
		t.Errorf("unexpected statements %v", statements)
	}
}
