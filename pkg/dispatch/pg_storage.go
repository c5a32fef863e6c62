package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRecordStore is a Postgres-backed RecordStore. The request snapshot is
// stored as JSONB; stats live in dedicated columns so scheduled sweeps and
// reporting can filter without unpacking JSON.
type PGRecordStore struct {
	pool  *pgxpool.Pool
	table string
}

// PGRecordStoreOption configures a PGRecordStore.
type PGRecordStoreOption func(*PGRecordStore)

// WithRecordTable overrides the notifications table name.
func WithRecordTable(table string) PGRecordStoreOption {
	return func(s *PGRecordStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewPGRecordStore creates a record store backed by the given pool.
func NewPGRecordStore(pool *pgxpool.Pool, opts ...PGRecordStoreOption) *PGRecordStore {
	s := &PGRecordStore{pool: pool, table: "notifications"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PGRecordStore) Create(ctx context.Context, rec Record) error {
	request, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("dispatch: marshal request snapshot: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, request, status, recipient_count, sent, delivered, failed, send_at, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, s.table)
	_, err = s.pool.Exec(ctx, query,
		rec.ID, request, string(rec.Status), rec.RecipientCount,
		rec.Stats.Sent, rec.Stats.Delivered, rec.Stats.Failed,
		rec.Request.SendAt, rec.CreatedAt, rec.CompletedAt,
	)
	return err
}

func (s *PGRecordStore) Update(ctx context.Context, rec Record) error {
	query := fmt.Sprintf(`UPDATE %s SET
		status = $2, recipient_count = $3, sent = $4, delivered = $5, failed = $6, completed_at = $7
		WHERE id = $1 AND status = ANY($8)`, s.table)
	tag, err := s.pool.Exec(ctx, query,
		rec.ID, string(rec.Status), rec.RecipientCount,
		rec.Stats.Sent, rec.Stats.Delivered, rec.Stats.Failed, rec.CompletedAt,
		priorStatuses(rec.Status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means the record is missing or its current status
		// forbids the transition.
		if _, getErr := s.Get(ctx, rec.ID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: record %s cannot move to %s", ErrInvalidTransition, rec.ID, rec.Status)
	}
	return nil
}

// priorStatuses lists the statuses an existing row may hold for an update to
// next: next itself (in-place stat refreshes) plus every status the lifecycle
// allows to move there.
func priorStatuses(next Status) []string {
	prior := []string{string(next)}
	for _, s := range []Status{StatusPending, StatusScheduled, StatusSent, StatusFailed} {
		if s != next && s.CanTransitionTo(next) {
			prior = append(prior, string(s))
		}
	}
	return prior
}

func (s *PGRecordStore) Get(ctx context.Context, id string) (Record, error) {
	query := fmt.Sprintf(`SELECT id, request, status, recipient_count, sent, delivered, failed, created_at, completed_at
		FROM %s WHERE id = $1`, s.table)
	rec, err := scanRecord(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

func (s *PGRecordStore) ListDueScheduled(ctx context.Context, now time.Time) ([]Record, error) {
	query := fmt.Sprintf(`SELECT id, request, status, recipient_count, sent, delivered, failed, created_at, completed_at
		FROM %s WHERE status = $1 AND (send_at IS NULL OR send_at <= $2) ORDER BY send_at`, s.table)
	rows, err := s.pool.Query(ctx, query, string(StatusScheduled), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, rec)
	}
	return due, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec     Record
		request []byte
		status  string
	)
	err := row.Scan(&rec.ID, &request, &status, &rec.RecipientCount,
		&rec.Stats.Sent, &rec.Stats.Delivered, &rec.Stats.Failed,
		&rec.CreatedAt, &rec.CompletedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	if err := json.Unmarshal(request, &rec.Request); err != nil {
		return Record{}, fmt.Errorf("dispatch: unmarshal request snapshot: %w", err)
	}
	return rec, nil
}
