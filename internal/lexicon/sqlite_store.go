package lexicon

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore is the SQLite-backed dictionary store.
// Safe for concurrent use.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines the dictionary tables.
const schema = `
CREATE TABLE IF NOT EXISTS synsets (
    id TEXT PRIMARY KEY,
    pos TEXT NOT NULL,
    lemmas TEXT NOT NULL,
    gloss TEXT
);

-- Lemma index; rowid order is insertion order
CREATE TABLE IF NOT EXISTS lemmas (
    lemma TEXT NOT NULL,
    pos TEXT NOT NULL,
    synset_id TEXT NOT NULL,
    PRIMARY KEY (lemma, synset_id)
);

CREATE INDEX IF NOT EXISTS idx_lemmas_synset ON lemmas(synset_id);

CREATE TABLE IF NOT EXISTS relations (
    source_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    rel_type TEXT NOT NULL,
    PRIMARY KEY (source_id, target_id, rel_type)
);

CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_id, rel_type);
`

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every pooled connection to :memory: would be a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// =============================================================================
// Synsets
// =============================================================================

// UpsertSynset inserts or replaces a synset and its lemma index rows.
func (s *SQLiteStore) UpsertSynset(synset *Synset) error {
	return s.UpsertBatch([]*Synset{synset}, nil)
}

func upsertSynset(db execer, synset *Synset) error {
	if err := validateSynset(synset); err != nil {
		return err
	}

	lemmasJSON, err := json.Marshal(synset.Lemmas)
	if err != nil {
		return fmt.Errorf("failed to marshal lemmas: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO synsets (id, pos, lemmas, gloss)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pos = excluded.pos,
			lemmas = excluded.lemmas,
			gloss = excluded.gloss
	`, synset.ID, synset.POS, string(lemmasJSON), synset.Gloss)
	if err != nil {
		return err
	}

	if _, err := db.Exec(`DELETE FROM lemmas WHERE synset_id = ?`, synset.ID); err != nil {
		return err
	}
	for _, l := range synset.Lemmas {
		if _, err := db.Exec(`
			INSERT OR IGNORE INTO lemmas (lemma, pos, synset_id) VALUES (?, ?, ?)
		`, LemmaKey(l), synset.POS, synset.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetSynset retrieves a synset by ID.
func (s *SQLiteStore) GetSynset(id string) (*Synset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var synset Synset
	var lemmasJSON string
	var gloss sql.NullString

	err := s.db.QueryRow(`
		SELECT id, pos, lemmas, gloss FROM synsets WHERE id = ?
	`, id).Scan(&synset.ID, &synset.POS, &lemmasJSON, &gloss)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	synset.Gloss = gloss.String
	if err := json.Unmarshal([]byte(lemmasJSON), &synset.Lemmas); err != nil {
		return nil, fmt.Errorf("synset %s: bad lemmas: %w", id, err)
	}
	return &synset, nil
}

// LookupLemma returns the synsets a lemma belongs to, optionally filtered by
// part of speech, in insertion order.
func (s *SQLiteStore) LookupLemma(lemma, pos string) ([]*Synset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows *sql.Rows
	var err error

	if pos != "" {
		rows, err = s.db.Query(`
			SELECT s.id, s.pos, s.lemmas, s.gloss
			FROM lemmas l JOIN synsets s ON s.id = l.synset_id
			WHERE l.lemma = ? AND l.pos = ? ORDER BY l.rowid
		`, LemmaKey(lemma), pos)
	} else {
		rows, err = s.db.Query(`
			SELECT s.id, s.pos, s.lemmas, s.gloss
			FROM lemmas l JOIN synsets s ON s.id = l.synset_id
			WHERE l.lemma = ? ORDER BY l.rowid
		`, LemmaKey(lemma))
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var synsets []*Synset
	for rows.Next() {
		var synset Synset
		var lemmasJSON string
		var gloss sql.NullString

		if err := rows.Scan(&synset.ID, &synset.POS, &lemmasJSON, &gloss); err != nil {
			return nil, err
		}
		synset.Gloss = gloss.String
		if err := json.Unmarshal([]byte(lemmasJSON), &synset.Lemmas); err != nil {
			return nil, fmt.Errorf("synset %s: bad lemmas: %w", synset.ID, err)
		}
		synsets = append(synsets, &synset)
	}

	return synsets, rows.Err()
}

// CountSynsets returns the total number of synsets.
func (s *SQLiteStore) CountSynsets() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM synsets").Scan(&count)
	return count, err
}

// =============================================================================
// Relations
// =============================================================================

// UpsertRelation inserts a relation; an existing identical one is kept.
func (s *SQLiteStore) UpsertRelation(rel *Relation) error {
	return s.UpsertBatch(nil, []*Relation{rel})
}

func upsertRelation(db execer, rel *Relation) error {
	if err := validateRelation(rel); err != nil {
		return err
	}
	_, err := db.Exec(`
		INSERT OR IGNORE INTO relations (source_id, target_id, rel_type) VALUES (?, ?, ?)
	`, rel.SourceID, rel.TargetID, rel.Type)
	return err
}

// Related returns the targets of id's relations of relType ("" for all).
func (s *SQLiteStore) Related(id, relType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows *sql.Rows
	var err error

	if relType != "" {
		rows, err = s.db.Query(`
			SELECT target_id FROM relations WHERE source_id = ? AND rel_type = ? ORDER BY rowid
		`, id, relType)
	} else {
		rows, err = s.db.Query(`
			SELECT target_id FROM relations WHERE source_id = ? ORDER BY rowid
		`, id)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// CountRelations returns the total number of relations.
func (s *SQLiteStore) CountRelations() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM relations").Scan(&count)
	return count, err
}

// =============================================================================
// Batch
// =============================================================================

// UpsertBatch writes synsets then relations in a single transaction.
func (s *SQLiteStore) UpsertBatch(synsets []*Synset, relations []*Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, syn := range synsets {
		if err := upsertSynset(tx, syn); err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, rel := range relations {
		if err := upsertRelation(tx, rel); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
