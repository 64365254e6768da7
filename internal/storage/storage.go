// Package storage caches converted articles in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no document matches a lookup.
var ErrNotFound = errors.New("document not found")

// Document represents the data to be stored.
type Document struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Checksum    string    `json:"checksum"`
	Engine      string    `json:"engine"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Storage manages the SQLite database.
type Storage struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	url         TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL,
	checksum    TEXT NOT NULL,
	engine      TEXT NOT NULL DEFAULT '',
	fetched_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_title ON documents (title COLLATE NOCASE);
`

// NewStorage creates or opens the database at dbPath, creating its
// directory and schema when missing.
func NewStorage(dbPath string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// UpsertDocument stores a document, replacing any with the same URL.
func (s *Storage) UpsertDocument(doc *Document) error {
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO documents (url, title, description, content, checksum, engine, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			content = excluded.content,
			checksum = excluded.checksum,
			engine = excluded.engine,
			fetched_at = excluded.fetched_at`,
		doc.URL, doc.Title, doc.Description, doc.Content, doc.Checksum, doc.Engine, doc.FetchedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

const selectDocument = `SELECT url, title, description, content, checksum, engine, fetched_at FROM documents`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var doc Document
	var fetchedAt int64
	if err := row.Scan(&doc.URL, &doc.Title, &doc.Description, &doc.Content, &doc.Checksum, &doc.Engine, &fetchedAt); err != nil {
		return nil, err
	}
	doc.FetchedAt = time.Unix(0, fetchedAt)
	return &doc, nil
}

// GetDocument retrieves a document by its URL.
func (s *Storage) GetDocument(url string) (*Document, error) {
	doc, err := scanDocument(s.db.QueryRow(selectDocument+` WHERE url = ?`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// FindByTitle returns the most recently fetched document whose title
// matches, ignoring case.
func (s *Storage) FindByTitle(title string) (*Document, error) {
	doc, err := scanDocument(s.db.QueryRow(
		selectDocument+` WHERE title = ? COLLATE NOCASE ORDER BY fetched_at DESC LIMIT 1`, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return doc, nil
}

// ListDocuments retrieves all documents, newest first.
func (s *Storage) ListDocuments() ([]*Document, error) {
	rows, err := s.db.Query(selectDocument + ` ORDER BY fetched_at DESC, url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// DeleteDocumentsByPrefix deletes every document whose URL starts with
// prefix and returns how many were removed. The match is case-sensitive,
// as URL paths are.
func (s *Storage) DeleteDocumentsByPrefix(prefix string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM documents WHERE substr(url, 1, length(?1)) = ?1`, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	return res.RowsAffected()
}

// Clean deletes all documents.
func (s *Storage) Clean() error {
	if _, err := s.db.Exec(`DELETE FROM documents`); err != nil {
		return fmt.Errorf("failed to clean documents: %w", err)
	}
	return nil
}
