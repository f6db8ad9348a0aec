// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Track operations
	OpTrackLoad   Op = "load track"
	OpTrackUnload Op = "unload track"
	OpTrackPlay   Op = "play track"
	OpTrackStop   Op = "stop track"
	OpTrackFade   Op = "fade out track"

	// Catalog operations
	OpCatalogScan Op = "scan music folder"

	// Resume bookmark
	OpResumeLoad Op = "load resume bookmark"
	OpResumeSave Op = "save resume bookmark"

	// Lifecycle
	OpInitialize Op = "initialize application"
	OpShutdown   Op = "shut down audio"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
