// Package store persists confirmed detections to a local sqlite database so
// runs can be reviewed after the console output is gone.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nbenliogludev/go-harm-monitor/internal/detect"
)

const schema = `
CREATE TABLE IF NOT EXISTS detections (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	category        TEXT NOT NULL,
	observed_at     TEXT NOT NULL,
	modal_text      TEXT NOT NULL,
	rationale       TEXT NOT NULL DEFAULT '',
	label           TEXT NOT NULL DEFAULT '',
	semantic        TEXT NOT NULL DEFAULT '',
	screenshot_path TEXT NOT NULL DEFAULT '',
	UNIQUE (run_id, category)
);
`

// Archive is a per-run detection log backed by sqlite.
type Archive struct {
	db *sql.DB
}

func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// SaveDetection stores one confirmed detection. The (run, category) pair is
// unique, matching the ledger's at-most-once rule.
func (a *Archive) SaveDetection(runID string, rec detect.Record) error {
	_, err := a.db.Exec(
		`INSERT INTO detections (run_id, category, observed_at, modal_text, rationale, label, semantic, screenshot_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		string(rec.Category),
		rec.ObservedAt.UTC().Format(time.RFC3339Nano),
		rec.ModalText,
		rec.Rationale,
		rec.Label,
		rec.Semantic,
		rec.ScreenshotPath,
	)
	if err != nil {
		return fmt.Errorf("save detection: %w", err)
	}
	return nil
}

// RunDetections returns the stored detections for a run in insertion order.
func (a *Archive) RunDetections(runID string) ([]detect.Record, error) {
	rows, err := a.db.Query(
		`SELECT category, observed_at, modal_text, rationale, label, semantic, screenshot_path
		 FROM detections WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	var out []detect.Record
	for rows.Next() {
		var rec detect.Record
		var category, observedAt string
		if err := rows.Scan(&category, &observedAt, &rec.ModalText, &rec.Rationale, &rec.Label, &rec.Semantic, &rec.ScreenshotPath); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		rec.Category = detect.Category(category)
		if ts, err := time.Parse(time.RFC3339Nano, observedAt); err == nil {
			rec.ObservedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (a *Archive) Close() error {
	return a.db.Close()
}
