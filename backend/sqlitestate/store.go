// Package sqlitestate 把 shuffle 状态快照保存在 SQLite 表中
package sqlitestate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lbp0200/shufflebuddy/shuffle"
)

const schema = `
CREATE TABLE IF NOT EXISTS shuffle_state (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store 实现 shuffle.Backend
type Store struct {
	db *sql.DB
}

// Open 打开 path 处的 SQLite 数据库（自动创建目录和表）
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Get 读取快照，不存在时返回 shuffle.ErrStateNotFound
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM shuffle_state WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shuffle.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %q: %w", name, err)
	}
	return data, nil
}

// Put 覆盖写入快照
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO shuffle_state (name, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite put %q: %w", name, err)
	}
	return nil
}

// UpdatedAt 返回快照最后一次写入的时间
func (s *Store) UpdatedAt(ctx context.Context, name string) (time.Time, error) {
	var ts string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM shuffle_state WHERE name = ?`, name).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, shuffle.ErrStateNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite updated_at %q: %w", name, err)
	}
	return time.Parse(time.RFC3339Nano, ts)
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
