package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/bgm/internal/db"
)

// Bookmark is where playback of the last track stopped.
type Bookmark struct {
	Path    string
	Offset  time.Duration
	SavedAt time.Time
}

func getResume(db *sql.DB) (*Bookmark, error) {
	row := db.QueryRow(`SELECT path, offset_ms, saved_at FROM resume_state WHERE id = 1`)

	var b Bookmark
	var offsetMs sql.NullInt64
	var savedAt int64
	err := row.Scan(&b.Path, &offsetMs, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no bookmark is valid on first run
	}
	if err != nil {
		return nil, err
	}

	b.Offset = dbutil.Millis(offsetMs)
	b.SavedAt = time.Unix(savedAt, 0)
	return &b, nil
}

func saveResume(db *sql.DB, b Bookmark) error {
	savedAt := b.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO resume_state (id, path, offset_ms, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			offset_ms = excluded.offset_ms,
			saved_at = excluded.saved_at
	`, b.Path, max(b.Offset, 0).Milliseconds(), savedAt.Unix())
	return err
}
