package store

import (
	"database/sql"
	"fmt"
)

// CacheGet reads a cached value. The second return is false when the
// key has never been written.
func (s *Store) CacheGet(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cache %q: %w", key, err)
	}
	return value, true, nil
}

// CacheSet writes a cached value, replacing any previous one.
func (s *Store) CacheSet(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO cache (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set cache %q: %w", key, err)
	}
	return nil
}
