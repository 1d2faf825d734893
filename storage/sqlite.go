// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

// SQLiteConfig configures the embedded relational backend.
type SQLiteConfig struct {
	// Path is the database file path, or ":memory:" for an ephemeral
	// in-process database used by tests.
	Path string

	// MaxOpenConns bounds the connection pool. The backend serializes
	// writes through connMu regardless, but readers benefit from more
	// than one open connection.
	MaxOpenConns int
}

// DefaultSQLiteConfig returns the default embedded-backend configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "sentryd.db",
		MaxOpenConns: 4,
	}
}

// SQLiteBackend is the embedded single-file relational backend: WAL
// journalling, foreign keys on, an ordered migration table, and a
// connection mutex serializing writes.
type SQLiteBackend struct {
	db     *sql.DB
	connMu sync.Mutex
}

// NewSQLiteBackend opens (creating if necessary) the database at
// config.Path and applies any unapplied migrations.
func NewSQLiteBackend(ctx context.Context, config *SQLiteConfig) (*SQLiteBackend, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	dsn := config.Path
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.ErrConfigurationError.Wrap(err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.ErrDatabase.Wrap(err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.ErrDatabase.Wrap(err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// BackendType implements Backend.
func (b *SQLiteBackend) BackendType() string { return "sqlite" }

// Close implements Backend.
func (b *SQLiteBackend) Close() error { return b.db.Close() }

// migration is one ordered, idempotent schema step.
type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS traces (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				trace_id TEXT,
				started_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS spans (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				trace_id TEXT NOT NULL,
				status TEXT NOT NULL,
				started_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_spans_trace_id ON spans(trace_id)`,
			`CREATE INDEX IF NOT EXISTS idx_spans_status ON spans(status)`,
			`CREATE INDEX IF NOT EXISTS idx_spans_started_at ON spans(started_at)`,
			`CREATE TABLE IF NOT EXISTS files (
				path TEXT NOT NULL,
				hash TEXT NOT NULL,
				data TEXT NOT NULL,
				PRIMARY KEY (path, hash)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_files_path ON files(path)`,
			`CREATE INDEX IF NOT EXISTS idx_files_hash ON files(hash)`,
			`CREATE TABLE IF NOT EXISTS file_contents (
				hash TEXT PRIMARY KEY,
				content BLOB NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS datasets (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS datapoints (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				dataset_id TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_datapoints_dataset_id ON datapoints(dataset_id)`,
			`CREATE TABLE IF NOT EXISTS queue_items (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				dataset_id TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_queue_items_dataset_id ON queue_items(dataset_id)`,
		},
	},
}

// migrate applies every migration with a version greater than the highest
// one already recorded. Each migration's statements run inside one
// transaction so a migration is all-or-nothing.
func (b *SQLiteBackend) migrate(ctx context.Context) error {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if _, err := b.db.ExecContext(ctx, migrations[0].stmts[0]); err != nil {
		return errors.ErrDatabase.Wrap(err)
	}

	var applied int
	row := b.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM migrations")
	if err := row.Scan(&applied); err != nil {
		return errors.ErrDatabase.Wrap(err)
	}

	for _, m := range migrations {
		if m.version <= applied {
			continue
		}
		tx, err := b.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.ErrDatabase.Wrap(err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return errors.ErrDatabase.Wrap(err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO migrations (version, applied_at) VALUES (?, ?)",
			m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return errors.ErrDatabase.Wrap(err)
		}
		if err := tx.Commit(); err != nil {
			return errors.ErrDatabase.Wrap(err)
		}
	}
	return nil
}

// --- spans ---

func (b *SQLiteBackend) SaveSpan(ctx context.Context, span domain.Span) error {
	data, err := json.Marshal(span)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}

	b.connMu.Lock()
	defer b.connMu.Unlock()

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO spans (id, data, trace_id, status, started_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			trace_id = excluded.trace_id,
			status = excluded.status,
			started_at = excluded.started_at
	`, string(span.ID), string(data), string(span.TraceID), span.Status.State, span.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) GetSpan(ctx context.Context, id domain.SpanID) (domain.Span, bool, error) {
	row := b.db.QueryRowContext(ctx, "SELECT data FROM spans WHERE id = ?", string(id))
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return domain.Span{}, false, nil
		}
		return domain.Span{}, false, errors.ErrDatabase.Wrap(err)
	}
	var span domain.Span
	if err := json.Unmarshal([]byte(data), &span); err != nil {
		return domain.Span{}, false, errors.ErrSerialization.Wrap(err)
	}
	return span, true, nil
}

func (b *SQLiteBackend) ListSpans(ctx context.Context, filter domain.Filter) ([]domain.Span, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM spans ORDER BY id ASC")
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()

	var all []domain.Span
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var span domain.Span
		if err := json.Unmarshal([]byte(data), &span); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		all = append(all, span)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	return domain.Apply(all, filter), nil
}

func (b *SQLiteBackend) DeleteSpan(ctx context.Context, id domain.SpanID) (bool, error) {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	res, err := b.db.ExecContext(ctx, "DELETE FROM spans WHERE id = ?", string(id))
	if err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	return n > 0, nil
}

func (b *SQLiteBackend) SaveSpansBatch(ctx context.Context, spans []domain.Span) error {
	for _, s := range spans {
		if err := b.SaveSpan(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLiteBackend) LoadAllSpans(ctx context.Context) ([]domain.Span, error) {
	return b.ListSpans(ctx, domain.Filter{})
}

func (b *SQLiteBackend) DeleteTrace(ctx context.Context, id domain.TraceID) (bool, error) {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	res, err := b.db.ExecContext(ctx, "DELETE FROM spans WHERE trace_id = ?", string(id))
	if err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	n, _ := res.RowsAffected()

	res2, err := b.db.ExecContext(ctx, "DELETE FROM traces WHERE id = ?", string(id))
	if err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	n2, _ := res2.RowsAffected()

	return n > 0 || n2 > 0, nil
}

func (b *SQLiteBackend) ClearSpans(ctx context.Context) error {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if _, err := b.db.ExecContext(ctx, "DELETE FROM spans"); err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

// --- traces ---

func (b *SQLiteBackend) SaveTrace(ctx context.Context, trace domain.Trace) error {
	data, err := json.Marshal(trace)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}

	b.connMu.Lock()
	defer b.connMu.Unlock()

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO traces (id, data, trace_id, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, started_at = excluded.started_at
	`, string(trace.ID), string(data), string(trace.ID), trace.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) GetTrace(ctx context.Context, id domain.TraceID) (domain.Trace, bool, error) {
	row := b.db.QueryRowContext(ctx, "SELECT data FROM traces WHERE id = ?", string(id))
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return domain.Trace{}, false, nil
		}
		return domain.Trace{}, false, errors.ErrDatabase.Wrap(err)
	}
	var trace domain.Trace
	if err := json.Unmarshal([]byte(data), &trace); err != nil {
		return domain.Trace{}, false, errors.ErrSerialization.Wrap(err)
	}
	return trace, true, nil
}

func (b *SQLiteBackend) ListTraces(ctx context.Context) ([]domain.Trace, error) {
	return b.LoadAllTraces(ctx)
}

func (b *SQLiteBackend) DeleteTraceMeta(ctx context.Context, id domain.TraceID) (bool, error) {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	res, err := b.db.ExecContext(ctx, "DELETE FROM traces WHERE id = ?", string(id))
	if err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ClearTraces truncates every trace from the backend, without touching
// spans.
func (b *SQLiteBackend) ClearTraces(ctx context.Context) error {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if _, err := b.db.ExecContext(ctx, "DELETE FROM traces"); err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) LoadAllTraces(ctx context.Context) ([]domain.Trace, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM traces ORDER BY id ASC")
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()

	var out []domain.Trace
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var trace domain.Trace
		if err := json.Unmarshal([]byte(data), &trace); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, trace)
	}
	return out, rows.Err()
}

// --- file versions & content ---

func (b *SQLiteBackend) SaveFileVersion(ctx context.Context, fv domain.FileVersion) error {
	data, err := json.Marshal(fv)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}

	b.connMu.Lock()
	defer b.connMu.Unlock()

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO files (path, hash, data) VALUES (?, ?, ?)
		ON CONFLICT(path, hash) DO UPDATE SET data = excluded.data
	`, fv.Path, fv.Hash, string(data))
	if err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) ListFileVersions(ctx context.Context, pathPrefix string) ([]domain.FileVersion, error) {
	all, err := b.LoadAllFileVersions(ctx)
	if err != nil {
		return nil, err
	}
	if pathPrefix == "" {
		return all, nil
	}
	var out []domain.FileVersion
	for _, fv := range all {
		if len(fv.Path) >= len(pathPrefix) && fv.Path[:len(pathPrefix)] == pathPrefix {
			out = append(out, fv)
		}
	}
	return out, nil
}

func (b *SQLiteBackend) LoadAllFileVersions(ctx context.Context) ([]domain.FileVersion, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM files ORDER BY path ASC, hash ASC")
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()

	var out []domain.FileVersion
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var fv domain.FileVersion
		if err := json.Unmarshal([]byte(data), &fv); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, fv)
	}
	return out, rows.Err()
}

// SaveFileContent is insert-or-ignore on hash: the first writer wins and
// later writes of the same hash are silently deduplicated.
func (b *SQLiteBackend) SaveFileContent(ctx context.Context, hash string, content []byte) error {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	_, err := b.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO file_contents (hash, content) VALUES (?, ?)", hash, content)
	if err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) LoadFileContent(ctx context.Context, hash string) ([]byte, error) {
	row := b.db.QueryRowContext(ctx, "SELECT content FROM file_contents WHERE hash = ?", hash)
	var content []byte
	if err := row.Scan(&content); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		return nil, errors.ErrDatabase.Wrap(err)
	}
	return content, nil
}

// --- datasets / datapoints / queue items ---

func (b *SQLiteBackend) SaveDataset(ctx context.Context, ds domain.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	b.connMu.Lock()
	defer b.connMu.Unlock()
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO datasets (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, string(ds.ID), string(data))
	if err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) GetDataset(ctx context.Context, id domain.DatasetID) (domain.Dataset, bool, error) {
	row := b.db.QueryRowContext(ctx, "SELECT data FROM datasets WHERE id = ?", string(id))
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return domain.Dataset{}, false, nil
		}
		return domain.Dataset{}, false, errors.ErrDatabase.Wrap(err)
	}
	var ds domain.Dataset
	if err := json.Unmarshal([]byte(data), &ds); err != nil {
		return domain.Dataset{}, false, errors.ErrSerialization.Wrap(err)
	}
	return ds, true, nil
}

func (b *SQLiteBackend) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	return b.LoadAllDatasets(ctx)
}

func (b *SQLiteBackend) DeleteDataset(ctx context.Context, id domain.DatasetID) (bool, error) {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if _, err := b.db.ExecContext(ctx, "DELETE FROM datapoints WHERE dataset_id = ?", string(id)); err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	if _, err := b.db.ExecContext(ctx, "DELETE FROM queue_items WHERE dataset_id = ?", string(id)); err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	res, err := b.db.ExecContext(ctx, "DELETE FROM datasets WHERE id = ?", string(id))
	if err != nil {
		return false, errors.ErrDatabase.Wrap(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (b *SQLiteBackend) LoadAllDatasets(ctx context.Context) ([]domain.Dataset, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM datasets ORDER BY id ASC")
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()
	var out []domain.Dataset
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var ds domain.Dataset
		if err := json.Unmarshal([]byte(data), &ds); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) SaveDatapoint(ctx context.Context, dp domain.Datapoint) error {
	data, err := json.Marshal(dp)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	b.connMu.Lock()
	defer b.connMu.Unlock()
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO datapoints (id, data, dataset_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, string(dp.ID), string(data), string(dp.DatasetID))
	if err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) GetDatapoint(ctx context.Context, id domain.DatapointID) (domain.Datapoint, bool, error) {
	row := b.db.QueryRowContext(ctx, "SELECT data FROM datapoints WHERE id = ?", string(id))
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return domain.Datapoint{}, false, nil
		}
		return domain.Datapoint{}, false, errors.ErrDatabase.Wrap(err)
	}
	var dp domain.Datapoint
	if err := json.Unmarshal([]byte(data), &dp); err != nil {
		return domain.Datapoint{}, false, errors.ErrSerialization.Wrap(err)
	}
	return dp, true, nil
}

func (b *SQLiteBackend) ListDatapoints(ctx context.Context, datasetID domain.DatasetID) ([]domain.Datapoint, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM datapoints WHERE dataset_id = ? ORDER BY id ASC", string(datasetID))
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()
	var out []domain.Datapoint
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var dp domain.Datapoint
		if err := json.Unmarshal([]byte(data), &dp); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, dp)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) SaveDatapointsBatch(ctx context.Context, dps []domain.Datapoint) error {
	for _, dp := range dps {
		if err := b.SaveDatapoint(ctx, dp); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLiteBackend) LoadAllDatapoints(ctx context.Context) ([]domain.Datapoint, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM datapoints ORDER BY id ASC")
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()
	var out []domain.Datapoint
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var dp domain.Datapoint
		if err := json.Unmarshal([]byte(data), &dp); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, dp)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) SaveQueueItem(ctx context.Context, qi domain.QueueItem) error {
	data, err := json.Marshal(qi)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	b.connMu.Lock()
	defer b.connMu.Unlock()
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO queue_items (id, data, dataset_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, string(qi.ID), string(data), string(qi.DatasetID))
	if err != nil {
		return errors.ErrDatabase.Wrap(err)
	}
	return nil
}

func (b *SQLiteBackend) GetQueueItem(ctx context.Context, id domain.QueueItemID) (domain.QueueItem, bool, error) {
	row := b.db.QueryRowContext(ctx, "SELECT data FROM queue_items WHERE id = ?", string(id))
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return domain.QueueItem{}, false, nil
		}
		return domain.QueueItem{}, false, errors.ErrDatabase.Wrap(err)
	}
	var qi domain.QueueItem
	if err := json.Unmarshal([]byte(data), &qi); err != nil {
		return domain.QueueItem{}, false, errors.ErrSerialization.Wrap(err)
	}
	return qi, true, nil
}

func (b *SQLiteBackend) ListQueueItems(ctx context.Context, datasetID domain.DatasetID) ([]domain.QueueItem, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM queue_items WHERE dataset_id = ? ORDER BY id ASC", string(datasetID))
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()
	var out []domain.QueueItem
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var qi domain.QueueItem
		if err := json.Unmarshal([]byte(data), &qi); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, qi)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) LoadAllQueueItems(ctx context.Context) ([]domain.QueueItem, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT data FROM queue_items ORDER BY id ASC")
	if err != nil {
		return nil, errors.ErrDatabase.Wrap(err)
	}
	defer rows.Close()
	var out []domain.QueueItem
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrDatabase.Wrap(err)
		}
		var qi domain.QueueItem
		if err := json.Unmarshal([]byte(data), &qi); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, qi)
	}
	return out, rows.Err()
}

