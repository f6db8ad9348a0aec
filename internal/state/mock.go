package state

import "time"

// Mock is a test double for Store.
type Mock struct {
	resume *Bookmark
	plays  []Play
	closed bool
}

// NewMock creates a new mock state store for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GetResume() (*Bookmark, error) {
	return m.resume, nil
}

func (m *Mock) SaveResume(b Bookmark) {
	m.resume = &b
}

func (m *Mock) ClearResume() error {
	m.resume = nil
	return nil
}

func (m *Mock) RecordPlay(path, title string) error {
	m.plays = append([]Play{{Path: path, Title: title, PlayedAt: time.Now()}}, m.plays...)
	return nil
}

func (m *Mock) RecentPlays(limit int) ([]Play, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit < len(m.plays) {
		return m.plays[:limit], nil
	}
	return m.plays, nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
