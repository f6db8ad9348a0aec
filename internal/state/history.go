package state

import (
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/bgm/internal/db"
)

// historyLimit bounds the number of rows kept in play_history.
const historyLimit = 100

// Play is one entry of the play history.
type Play struct {
	Path     string
	Title    string
	PlayedAt time.Time
}

func recordPlay(db *sql.DB, path, title string, at time.Time) error {
	return dbutil.WithTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO play_history (path, title, played_at) VALUES (?, ?, ?)
		`, path, dbutil.NullString(title), at.Unix())
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM play_history
			WHERE id NOT IN (SELECT id FROM play_history ORDER BY played_at DESC, id DESC LIMIT ?)
		`, historyLimit)
		return err
	})
}

func recentPlays(db *sql.DB, limit int) ([]Play, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := db.Query(`
		SELECT path, title, played_at FROM play_history
		ORDER BY played_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		var title sql.NullString
		var playedAt int64
		if err := rows.Scan(&p.Path, &title, &playedAt); err != nil {
			return nil, err
		}
		p.Title = dbutil.String(title)
		p.PlayedAt = time.Unix(playedAt, 0)
		plays = append(plays, p)
	}
	return plays, rows.Err()
}
