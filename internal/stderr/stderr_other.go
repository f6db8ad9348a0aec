//go:build !unix

package stderr

import (
	"errors"
	"os"
)

// Capture is unavailable on this platform.
type Capture struct{}

// Start always fails; the backend's stderr goes to the terminal.
func Start(_ int) (*Capture, error) {
	return nil, errors.New("stderr: capture not supported")
}

// Lines returns nil.
func (c *Capture) Lines() <-chan string { return nil }

// WriteOriginal writes msg to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op.
func (c *Capture) Stop() {}
