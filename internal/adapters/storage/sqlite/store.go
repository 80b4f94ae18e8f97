package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

// Store is the durable domain.ReflectionStore on SQLite: one row per node
// with a parent_id foreign key. Sibling order is kept in sibling_pos so the
// tree round-trips with children in their original order.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS reflections (
	id          TEXT PRIMARY KEY,
	subject_id  TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	language    TEXT NOT NULL,
	question    TEXT NOT NULL,
	answer      TEXT NOT NULL DEFAULT '',
	themes      TEXT NOT NULL DEFAULT '[]',
	sentiment   TEXT NOT NULL,
	type        TEXT NOT NULL,
	context     TEXT NOT NULL DEFAULT '',
	parent_id   TEXT REFERENCES reflections(id) ON DELETE CASCADE,
	sibling_pos INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reflections_subject ON reflections(subject_id);
`

// OpenStore opens (and migrates) a SQLite database with WAL mode and foreign
// keys enabled.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadAll returns one subject's nodes in insertion order, with ChildrenIDs
// rebuilt from the parent_id column.
func (s *Store) LoadAll(subject domain.SubjectID) ([]*domain.Reflection, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, language, question, answer, themes, sentiment, type, context,
		       COALESCE(parent_id, ''), sibling_pos
		FROM reflections WHERE subject_id = ? ORDER BY seq`, string(subject))
	if err != nil {
		return nil, fmt.Errorf("sqlite LoadAll: %w", err)
	}
	defer rows.Close()

	var (
		out      []*domain.Reflection
		byID     = make(map[domain.ReflectionID]*domain.Reflection)
		siblings = make(map[domain.ReflectionID][]childRef)
	)
	for rows.Next() {
		var (
			node      domain.Reflection
			createdAt string
			themes    string
			parentID  string
			pos       int
		)
		if err := rows.Scan(&node.ID, &createdAt, &node.Language, &node.Question, &node.Answer,
			&themes, &node.Sentiment, &node.Type, &node.Context, &parentID, &pos); err != nil {
			return nil, fmt.Errorf("sqlite LoadAll scan: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite LoadAll created_at: %w", err)
		}
		node.CreatedAt = ts
		if err := json.Unmarshal([]byte(themes), &node.Themes); err != nil {
			return nil, fmt.Errorf("sqlite LoadAll themes: %w", err)
		}
		node.ParentID = domain.ReflectionID(parentID)

		byID[node.ID] = &node
		out = append(out, &node)
		if node.ParentID != "" {
			siblings[node.ParentID] = append(siblings[node.ParentID], childRef{id: node.ID, pos: pos})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite LoadAll rows: %w", err)
	}

	for parentID, children := range siblings {
		parent := byID[parentID]
		if parent == nil {
			continue
		}
		ordered := make([]domain.ReflectionID, len(children))
		for _, child := range children {
			if child.pos >= 0 && child.pos < len(ordered) {
				ordered[child.pos] = child.id
			}
		}
		parent.ChildrenIDs = parent.ChildrenIDs[:0]
		for _, id := range ordered {
			if id != "" {
				parent.ChildrenIDs = append(parent.ChildrenIDs, id)
			}
		}
	}
	return out, nil
}

type childRef struct {
	id  domain.ReflectionID
	pos int
}

// SaveAll replaces the subject's stored tree inside one transaction. Nodes
// must arrive parents-first, which insertion order guarantees.
func (s *Store) SaveAll(subject domain.SubjectID, reflections []*domain.Reflection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite SaveAll begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reflections WHERE subject_id = ?`, string(subject)); err != nil {
		return fmt.Errorf("sqlite SaveAll clear: %w", err)
	}

	positions := make(map[domain.ReflectionID]int)
	for _, node := range reflections {
		for i, childID := range node.ChildrenIDs {
			positions[childID] = i
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO reflections
			(id, subject_id, seq, created_at, language, question, answer, themes, sentiment, type, context, parent_id, sibling_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite SaveAll prepare: %w", err)
	}
	defer stmt.Close()

	for seq, node := range reflections {
		themes, err := json.Marshal(node.Themes)
		if err != nil {
			return fmt.Errorf("sqlite SaveAll themes: %w", err)
		}
		var parentID any
		if node.ParentID != "" {
			parentID = string(node.ParentID)
		}
		if _, err := stmt.Exec(
			string(node.ID), string(subject), seq,
			node.CreatedAt.Format(time.RFC3339Nano),
			string(node.Language), node.Question, node.Answer,
			string(themes), string(node.Sentiment), string(node.Type), node.Context,
			parentID, positions[node.ID],
		); err != nil {
			return fmt.Errorf("sqlite SaveAll insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite SaveAll commit: %w", err)
	}
	return nil
}
