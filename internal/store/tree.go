package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// The node tree emulates a realtime tree-structured database over the
// nodes table. Values are addressed by slash-separated string paths;
// writing nil removes a whole subtree. Maps are flattened into one row
// per leaf so a subtree can be read back at any depth. Watchers are
// notified in-process after every overlapping write, always with a full
// snapshot of their subtree, so duplicate or re-ordered deliveries are
// harmless to consumers that replace rather than merge.

type watcher struct {
	path string
	fn   func(value any, err error)
}

// ReadNode returns the decoded value at path: a scalar for leaves, a
// nested map[string]any for subtrees, or nil when nothing is stored.
func (s *Store) ReadNode(path string) (any, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM nodes WHERE path = ?`, path).Scan(&raw)
	if err == nil {
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decode node %q: %w", path, err)
		}
		return value, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read node %q: %w", path, err)
	}

	query := `SELECT path, value FROM nodes`
	var args []any
	if path != "" {
		query += ` WHERE path LIKE ? ESCAPE '\'`
		args = append(args, likePrefix(path)+"/%")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("read node %q: %w", path, err)
	}
	defer rows.Close()

	tree := make(map[string]any)
	for rows.Next() {
		var childPath, childRaw string
		if err := rows.Scan(&childPath, &childRaw); err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal([]byte(childRaw), &value); err != nil {
			return nil, fmt.Errorf("decode node %q: %w", childPath, err)
		}
		relative := childPath
		if path != "" {
			relative = strings.TrimPrefix(childPath, path+"/")
		}
		insertAt(tree, strings.Split(relative, "/"), value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tree) == 0 {
		return nil, nil
	}
	return tree, nil
}

// WriteNode replaces the subtree at path with value; nil deletes it.
// Watchers overlapping the path are notified after the write commits.
func (s *Store) WriteNode(path string, value any) error {
	if path == "" {
		return fmt.Errorf("write node: empty path")
	}

	normalized, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("encode node %q: %w", path, err)
	}

	leaves := make(map[string]any)
	if normalized != nil {
		flatten(path, normalized, leaves)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write node %q: %w", path, err)
	}
	defer tx.Rollback()

	// A write to a child supersedes any leaf stored at an ancestor.
	for _, ancestor := range ancestors(path) {
		if _, err := tx.Exec(`DELETE FROM nodes WHERE path = ?`, ancestor); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		`DELETE FROM nodes WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		path, likePrefix(path)+"/%",
	); err != nil {
		return err
	}

	for leafPath, leafValue := range leaves {
		encoded, err := json.Marshal(leafValue)
		if err != nil {
			return fmt.Errorf("encode node %q: %w", leafPath, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO nodes (path, value) VALUES (?, ?)`,
			leafPath, string(encoded),
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write node %q: %w", path, err)
	}

	s.notify(path)
	return nil
}

// WatchNode subscribes to the subtree at path. The handler fires once
// with the current value and again after every overlapping write, until
// the returned unsubscribe function is called. Failing to unsubscribe
// leaks the watcher for the lifetime of the store.
func (s *Store) WatchNode(path string, fn func(value any, err error)) func() {
	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = &watcher{path: path, fn: fn}
	s.mu.Unlock()

	fn(s.ReadNode(path))

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(writePath string) {
	s.mu.Lock()
	affected := make([]*watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		if pathsOverlap(w.path, writePath) {
			affected = append(affected, w)
		}
	}
	s.mu.Unlock()

	for _, w := range affected {
		w.fn(s.ReadNode(w.path))
	}
}

func pathsOverlap(watchPath, writePath string) bool {
	if watchPath == "" || watchPath == writePath {
		return true
	}
	return strings.HasPrefix(writePath, watchPath+"/") ||
		strings.HasPrefix(watchPath, writePath+"/")
}

func ancestors(path string) []string {
	var out []string
	for i, r := range path {
		if r == '/' {
			out = append(out, path[:i])
		}
	}
	return out
}

// normalizeValue round-trips through JSON so structs and typed maps
// come out as plain map[string]any / []any / scalar trees.
func normalizeValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// flatten splits maps into per-leaf rows. Anything else, including
// arrays, is stored whole as a leaf.
func flatten(path string, value any, out map[string]any) {
	m, ok := value.(map[string]any)
	if !ok {
		out[path] = value
		return
	}
	if len(m) == 0 {
		return
	}
	for key, child := range m {
		if key == "" || strings.ContainsRune(key, '/') {
			continue
		}
		flatten(path+"/"+key, child, out)
	}
}

func insertAt(tree map[string]any, segments []string, value any) {
	for i, segment := range segments {
		if i == len(segments)-1 {
			tree[segment] = value
			return
		}
		child, ok := tree[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			tree[segment] = child
		}
		tree = child
	}
}

func likePrefix(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(path)
}
