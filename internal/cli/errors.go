package cli

import (
	"strings"

	"github.com/spetersoncode/timeago/internal/errors"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitInvalidArgs     = 2
	ExitNotFound        = 3
	ExitStateError      = 4
	ExitDBError         = 5
	ExitInvalidDistance = 7
)

// ExitCode returns the exit code for any error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if e, ok := errors.As(err); ok {
		return e.CLIExitCode()
	}
	return ExitGeneralError
}

// FormatErrorMessage returns formatted error with suggestion if available.
func FormatErrorMessage(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())
	if e, ok := errors.As(err); ok && e.Suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// dbError wraps a failure to open or migrate the database.
func dbError(err error, format string, args ...interface{}) error {
	return errors.WrapInternal(err, format, args...).WithSuggestion(SuggestRunInit)
}

// Common suggestions
const (
	SuggestRunInit     = "Run 'timeago init' to create a new database."
	SuggestListEntries = "Run 'timeago list' to see stored entries."
	SuggestListLocales = "Run 'timeago locales' to list built-in locales."
)
