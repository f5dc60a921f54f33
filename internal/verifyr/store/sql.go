package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// snapshotRow is the only row of the snapshot table.
const snapshotRow = 1

var ddl = map[string]string{
	"sqlite3": `CREATE TABLE IF NOT EXISTS verifyr_snapshot (
	id INTEGER PRIMARY KEY,
	revision INTEGER NOT NULL,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`,
	"mysql": `CREATE TABLE IF NOT EXISTS verifyr_snapshot (
	id INT PRIMARY KEY,
	revision BIGINT NOT NULL,
	payload LONGTEXT NOT NULL,
	updated_at DATETIME(6) NOT NULL
)`,
	"postgres": `CREATE TABLE IF NOT EXISTS verifyr_snapshot (
	id INTEGER PRIMARY KEY,
	revision BIGINT NOT NULL,
	payload TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
}

// SQLStore keeps the snapshot as a JSON payload in a single-row table.
// Every save bumps the revision.
type SQLStore struct {
	DB     *sql.DB
	driver string
}

func OpenSQL(driver, dsn string) (*SQLStore, error) {
	if _, ok := ddl[driver]; !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	s, err := NewSQLStore(context.Background(), db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open handle and creates the table if missing.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	schema, ok := ddl[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &SQLStore{DB: db, driver: driver}, nil
}

// q rewrites ? placeholders to $n for postgres.
func (s *SQLStore) q(query string) string {
	if s.driver != "postgres" {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (s *SQLStore) Load(ctx context.Context) (*Snapshot, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT payload FROM verifyr_snapshot WHERE id = ?`), snapshotRow).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := checkVersion(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save updates the row, inserting it on first save, in one transaction.
func (s *SQLStore) Save(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		s.q(`UPDATE verifyr_snapshot SET revision = revision + 1, payload = ?, updated_at = ? WHERE id = ?`),
		string(payload), now, snapshotRow)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		if _, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO verifyr_snapshot (id, revision, payload, updated_at) VALUES (?, ?, ?, ?)`),
			snapshotRow, 1, string(payload), now); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return tx.Commit()
}

// Revision returns how many times the snapshot has been saved.
func (s *SQLStore) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT revision FROM verifyr_snapshot WHERE id = ?`), snapshotRow).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return rev, err
}

func (s *SQLStore) Close() error { return s.DB.Close() }
