package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bot-dispatch/internal/logging"
	"bot-dispatch/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DefaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// DBTX is the subset of pgxpool.Pool the store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// AuditStore persists log entries forwarded by the logger. Record never
// blocks; entries are written by Run and dropped when the queue is full.
type AuditStore struct {
	pool  *pgxpool.Pool
	db    DBTX
	queue chan logging.Entry
}

func NewAuditStore(ctx context.Context, connString string, queueSize int) (*AuditStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := newAuditStore(pool, queueSize)
	s.pool = pool

	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newAuditStore(db DBTX, queueSize int) *AuditStore {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &AuditStore{
		db:    db,
		queue: make(chan logging.Entry, queueSize),
	}
}

func (s *AuditStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createAuditTable, createAuditIndex} {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure audit schema: %w", err)
		}
	}
	return nil
}

// Record implements logging.Sink.
func (s *AuditStore) Record(entry logging.Entry) {
	select {
	case s.queue <- entry:
	default:
		metrics.AuditRecords.WithLabelValues("dropped").Inc()
	}
}

// Run writes queued entries until ctx is cancelled, then flushes what is
// left in the queue.
func (s *AuditStore) Run(ctx context.Context) {
	slog.Info("Audit writer started")
	for {
		select {
		case <-ctx.Done():
			s.flush()
			slog.Info("Audit writer stopped")
			return
		case entry := <-s.queue:
			s.write(ctx, entry)
		}
	}
}

func (s *AuditStore) flush() {
	for {
		select {
		case entry := <-s.queue:
			s.write(context.Background(), entry)
		default:
			return
		}
	}
}

// write logs through slog directly; going through the logger would feed
// failures back into the queue.
func (s *AuditStore) write(ctx context.Context, entry logging.Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := s.Insert(ctx, entry); err != nil {
		metrics.AuditRecords.WithLabelValues("failed").Inc()
		slog.Warn("Failed to write audit entry", "scope", entry.Scope, "message", entry.Message, "error", err)
		return
	}
	metrics.AuditRecords.WithLabelValues("written").Inc()
}

func (s *AuditStore) Insert(ctx context.Context, entry logging.Entry) error {
	attrs := entry.Attrs
	if attrs == nil {
		attrs = map[string]any{}
	}
	_, err := s.db.Exec(ctx, insertAuditEntry, entry.Time, entry.Level.String(), entry.Scope, entry.Message, attrs)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]logging.Entry, error) {
	rows, err := s.db.Query(ctx, selectRecentAuditEntries, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent audit entries: %w", err)
	}
	defer rows.Close()

	var result []logging.Entry
	for rows.Next() {
		var (
			e     logging.Entry
			level string
		)
		if err := rows.Scan(&e.Time, &level, &e.Scope, &e.Message, &e.Attrs); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if err := e.Level.UnmarshalText([]byte(level)); err != nil {
			e.Level = slog.LevelInfo
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return result, nil
}

func (s *AuditStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteAuditEntriesBefore, pgtype.Interval{
		Microseconds: retention.Microseconds(),
		Valid:        true,
	})
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
