// Package store persists ingested annotations and session-highlight links
// for the CLI host. The core packages stay persistence-free; this is the
// "surrounding application" side of that boundary.
//
// Uses the pure Go modernc.org/sqlite driver (driver name "sqlite").
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pagefold/pagefold/core/dedup"
	"github.com/pagefold/pagefold/core/match"
	"github.com/pagefold/pagefold/core/xpoint"
	"github.com/pagefold/pagefold/internal/ingest"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id     TEXT PRIMARY KEY,
	title  TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS annotations (
	id           TEXT PRIMARY KEY,
	book_id      TEXT NOT NULL,
	kind         TEXT NOT NULL,
	start_xpoint TEXT NOT NULL DEFAULT '',
	end_xpoint   TEXT NOT NULL DEFAULT '',
	page         INTEGER,
	start_page   INTEGER,
	end_page     INTEGER,
	text         TEXT NOT NULL DEFAULT '',
	hash         TEXT NOT NULL,
	UNIQUE (book_id, hash)
);

CREATE INDEX IF NOT EXISTS idx_annotations_book_kind ON annotations (book_id, kind);

CREATE TABLE IF NOT EXISTS session_links (
	session_id   TEXT NOT NULL,
	highlight_id TEXT NOT NULL,
	PRIMARY KEY (session_id, highlight_id)
);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertBook records a book.
func (s *Store) UpsertBook(id, title, author string) error {
	_, err := s.db.Exec(
		`INSERT INTO books (id, title, author) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title, author = excluded.author`,
		id, title, author)
	return err
}

// SaveAnnotations stores a batch of accepted annotations in one transaction.
func (s *Store) SaveAnnotations(bookID string, anns []ingest.Annotation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO annotations
		 (id, book_id, kind, start_xpoint, end_xpoint, page, start_page, end_page, text, hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ann := range anns {
		start, end := "", ""
		if ann.Start != nil {
			start = ann.Start.String()
		}
		if ann.End != nil {
			end = ann.End.String()
		}
		if _, err := stmt.Exec(ann.ID, bookID, string(ann.Kind), start, end,
			ann.Page, ann.StartPage, ann.EndPage, ann.Text, string(ann.Hash)); err != nil {
			return fmt.Errorf("inserting annotation %s: %w", ann.ID, err)
		}
	}
	return tx.Commit()
}

// ExistingHashes returns the content hashes already stored for a book.
func (s *Store) ExistingHashes(bookID string) (dedup.Set, error) {
	rows, err := s.db.Query(`SELECT hash FROM annotations WHERE book_id = ?`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := dedup.NewSet()
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		set.Add(dedup.ContentHash(h))
	}
	return set, rows.Err()
}

// Highlights loads a book's highlights in insertion order. A stored xpoint
// that no longer parses leaves Pos nil so matching can fall back to pages.
func (s *Store) Highlights(bookID string) ([]match.Highlight, error) {
	rows, err := s.db.Query(
		`SELECT id, start_xpoint, page FROM annotations
		 WHERE book_id = ? AND kind = ? ORDER BY rowid`,
		bookID, string(ingest.KindHighlight))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Highlight
	for rows.Next() {
		var (
			h     match.Highlight
			start string
			page  sql.NullInt64
		)
		if err := rows.Scan(&h.ID, &start, &page); err != nil {
			return nil, err
		}
		if start != "" {
			if pos, err := xpoint.Parse(start); err == nil {
				h.Pos = pos
			}
		}
		if page.Valid {
			p := int(page.Int64)
			h.Page = &p
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// StoredSession pairs a session's ID with its matcher-facing fields.
type StoredSession struct {
	ID      string
	Session match.Session
}

// Sessions loads a book's reading sessions in insertion order.
func (s *Store) Sessions(bookID string) ([]StoredSession, error) {
	rows, err := s.db.Query(
		`SELECT id, start_xpoint, end_xpoint, start_page, end_page FROM annotations
		 WHERE book_id = ? AND kind = ? ORDER BY rowid`,
		bookID, string(ingest.KindSession))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredSession
	for rows.Next() {
		var (
			ss         StoredSession
			start, end string
			sp, ep     sql.NullInt64
		)
		if err := rows.Scan(&ss.ID, &start, &end, &sp, &ep); err != nil {
			return nil, err
		}
		if start != "" && end != "" {
			if r, err := xpoint.ParseRange(start, end); err == nil {
				ss.Session.Range = &r
			}
		}
		if sp.Valid {
			p := int(sp.Int64)
			ss.Session.StartPage = &p
		}
		if ep.Valid {
			p := int(ep.Int64)
			ss.Session.EndPage = &p
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// SaveLinks replaces the stored highlight links for a session.
func (s *Store) SaveLinks(sessionID string, highlightIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session_links WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for _, hid := range highlightIDs {
		if _, err := tx.Exec(
			`INSERT INTO session_links (session_id, highlight_id) VALUES (?, ?)`,
			sessionID, hid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Links returns the highlight IDs linked to a session.
func (s *Store) Links(sessionID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT highlight_id FROM session_links WHERE session_id = ? ORDER BY highlight_id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
