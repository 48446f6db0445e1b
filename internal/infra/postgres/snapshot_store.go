package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"evaluation-console/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SnapshotStore archives result snapshots as JSONB rows keyed by (kind, subject).
type SnapshotStore struct {
	pool *pgxpool.Pool
}

func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, kind string, snap domain.ResultSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO result_snapshots (kind, subject, title, data, fetched_at)
VALUES ($1, $2, $3, $4::jsonb, $5)
ON CONFLICT (kind, subject) DO UPDATE
SET title = EXCLUDED.title, data = EXCLUDED.data, fetched_at = EXCLUDED.fetched_at`,
		kind, snap.Subject, snap.Title, string(raw), snap.FetchedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) LoadSnapshot(ctx context.Context, kind, subject string) (domain.ResultSnapshot, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM result_snapshots WHERE kind=$1 AND subject=$2`, kind, subject).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ResultSnapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.ResultSnapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap domain.ResultSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.ResultSnapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
