package state

// Interface defines the state store contract for dependency injection and testing.
type Interface interface {
	GetResume() (*Bookmark, error)
	SaveResume(b Bookmark)
	ClearResume() error
	RecordPlay(path, title string) error
	RecentPlays(limit int) ([]Play, error)
	Close() error
}

// Verify Store implements Interface at compile time.
var _ Interface = (*Store)(nil)
