package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hazyhaar/codesnap/idgen"
)

// Entry is one recorded export.
type Entry struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	Path      string `json:"path"`
	Theme     string `json:"theme"`
	Language  string `json:"language"`
	LineCount int    `json:"line_count"`
	CreatedAt int64  `json:"created_at"`
}

const historySchema = `
CREATE TABLE IF NOT EXISTS captures (
    id         TEXT PRIMARY KEY,
    file_name  TEXT NOT NULL,
    path       TEXT NOT NULL,
    theme      TEXT NOT NULL DEFAULT '',
    language   TEXT NOT NULL DEFAULT '',
    line_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captures_created ON captures(created_at DESC);
`

// History records completed exports in SQLite.
type History struct {
	db    *sql.DB
	newID idgen.Generator
}

// NewHistory creates a History and applies its schema.
func NewHistory(db *sql.DB) (*History, error) {
	if db == nil {
		return nil, fmt.Errorf("history: DB is required")
	}
	for _, stmt := range strings.Split(historySchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("history schema: %w", err)
		}
	}
	return &History{
		db:    db,
		newID: idgen.Prefixed("cap_", idgen.Default),
	}, nil
}

// Record inserts one export entry. The ID is generated here.
func (h *History) Record(ctx context.Context, e Entry) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO captures (id, file_name, path, theme, language, line_count, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		h.newID(), e.FileName, e.Path, e.Theme, e.Language, e.LineCount, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("history record: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, file_name, path, theme, language, line_count, created_at
		FROM captures ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.FileName, &e.Path, &e.Theme, &e.Language, &e.LineCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
