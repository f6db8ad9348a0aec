// Package state persists what the player needs across runs: the resume
// bookmark of the last track and a short play history. The track registry
// itself is rebuilt on every start.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "bgm"
	dbFileName   = "bgm.db"
	saveDebounce = 500 * time.Millisecond
)

type Store struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Bookmark
}

func Open() (*Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at path, creating it if needed.
func OpenPath(dbPath string) (*Store, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	s.saveMu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	pending := s.pending
	s.pending = nil
	s.saveMu.Unlock()

	// Flush pending bookmark
	if pending != nil {
		_ = saveResume(s.db, *pending)
	}

	return s.db.Close()
}

func (s *Store) GetResume() (*Bookmark, error) {
	return getResume(s.db)
}

// SaveResume records b after a short debounce; bursts of calls while a
// track plays result in one write.
func (s *Store) SaveResume(b Bookmark) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.pending = &b

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}

	s.saveTimer = time.AfterFunc(saveDebounce, func() {
		s.saveMu.Lock()
		pending := s.pending
		s.pending = nil
		s.saveMu.Unlock()

		if pending != nil {
			_ = saveResume(s.db, *pending)
		}
	})
}

// ClearResume drops the bookmark, including one still waiting to be saved.
func (s *Store) ClearResume() error {
	s.saveMu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.pending = nil
	s.saveMu.Unlock()

	_, err := s.db.Exec(`DELETE FROM resume_state`)
	return err
}

func (s *Store) RecordPlay(path, title string) error {
	return recordPlay(s.db, path, title, time.Now())
}

func (s *Store) RecentPlays(limit int) ([]Play, error) {
	return recentPlays(s.db, limit)
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
