//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"neuromap/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot model.DatasetSnapshot) error {
	if snapshot.ID == "" {
		return errors.New("snapshot id is required")
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO snapshots (
			id, name, created_at, input_dim, output_dim, sample_count, normalized,
			schema_version, codec_version, payload
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			created_at = excluded.created_at,
			input_dim = excluded.input_dim,
			output_dim = excluded.output_dim,
			sample_count = excluded.sample_count,
			normalized = excluded.normalized,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`,
		snapshot.ID,
		snapshot.Name,
		snapshot.CreatedAt.UTC().UnixNano(),
		snapshot.InputDim,
		snapshot.OutputDim,
		len(snapshot.Samples),
		snapshot.Normalized,
		snapshot.SchemaVersion,
		snapshot.CodecVersion,
		payload,
	)
	return err
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (model.DatasetSnapshot, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.DatasetSnapshot{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DatasetSnapshot{}, false, nil
		}
		return model.DatasetSnapshot{}, false, err
	}

	snapshot, err := DecodeSnapshot(payload)
	if err != nil {
		return model.DatasetSnapshot{}, false, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return snapshot, true, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]model.SnapshotInfo, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, created_at, input_dim, output_dim, sample_count, normalized
		FROM snapshots
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []model.SnapshotInfo
	for rows.Next() {
		var (
			info      model.SnapshotInfo
			createdAt int64
		)
		if err := rows.Scan(
			&info.ID,
			&info.Name,
			&createdAt,
			&info.InputDim,
			&info.OutputDim,
			&info.SampleCount,
			&info.Normalized,
		); err != nil {
			return nil, err
		}
		info.CreatedAt = time.Unix(0, createdAt).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortNewestFirst(infos)
	return infos, nil
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			input_dim INTEGER NOT NULL,
			output_dim INTEGER NOT NULL,
			sample_count INTEGER NOT NULL,
			normalized INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
