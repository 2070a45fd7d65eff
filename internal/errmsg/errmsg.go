// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Resolution operations
	OpResolveArt    Op = "resolve cover art"
	OpGuessAlbum    Op = "guess album"
	OpVerifyRecord  Op = "verify record"
	OpRecordFailure Op = "record resolution failure"

	// File operations
	OpReadTags  Op = "read file tags"
	OpWriteTags Op = "write file tags"

	// Initialization
	OpLoadConfig Op = "load configuration"
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
	return fmt.Sprintf("Failed to %s %q: %v", op, context, err)
}
