package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const historyKeepPerProject = 50

// historyStore keeps recent prompts per project so the prompt overlay can
// recall them with the up arrow.
type historyStore struct {
	db   *sql.DB
	path string
}

func openHistoryStore(dataDir string) (*historyStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	sqlitePath := filepath.Join(dataDir, "history.sqlite")
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := migrateHistoryStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &historyStore{db: db, path: sqlitePath}, nil
}

func migrateHistoryStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS prompts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project TEXT NOT NULL,
			prompt TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_prompts_project ON prompts(project, id DESC);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("history store migration failed: %w", err)
		}
	}
	return nil
}

func (s *historyStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add records a prompt and prunes the project's history to the retention
// limit. Blank prompts are ignored.
func (s *historyStore) Add(project, prompt string) error {
	if s == nil || s.db == nil {
		return nil
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || project == "" {
		return nil
	}
	if _, err := s.db.Exec(`INSERT INTO prompts (project, prompt) VALUES (?, ?)`, project, prompt); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM prompts
		WHERE project = ? AND id NOT IN (
			SELECT id FROM prompts WHERE project = ? ORDER BY id DESC LIMIT ?
		)`, project, project, historyKeepPerProject)
	return err
}

// Recent returns up to limit prompts for the project, newest first.
func (s *historyStore) Recent(project string, limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > historyKeepPerProject {
		limit = historyKeepPerProject
	}
	rows, err := s.db.Query(`SELECT prompt FROM prompts
		WHERE project = ? ORDER BY id DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []string
	for rows.Next() {
		var prompt string
		if err := rows.Scan(&prompt); err != nil {
			return nil, err
		}
		prompts = append(prompts, prompt)
	}
	return prompts, rows.Err()
}
