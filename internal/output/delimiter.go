package output

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const delimiterPrefix = "### FILE_"

// NewDelimiter returns a fresh per-run file delimiter: the fixed prefix, six
// hex characters from a random UUID, and a trailing space that separates the
// marker from the file path on the same line.
func NewDelimiter() string {
	uniqueID := strings.SplitN(uuid.NewString(), "-", 2)[0]
	if len(uniqueID) > 6 {
		uniqueID = uniqueID[:6]
	}
	return fmt.Sprintf("%s%s ", delimiterPrefix, uniqueID)
}

// FormatHeader builds the self-describing block that precedes the first
// delimiter in text output.
func FormatHeader(delimiter string) string {
	trimmed := strings.TrimSpace(delimiter)
	return fmt.Sprintf(`# Project Directory Contents
# Format: Files are separated by a delimiter line starting with %q
# Each delimiter line is followed by the file path, then the file contents.
# Note: Binary files and patterns matching any .gitignore are excluded.

# DELIMITER=%s

`, trimmed, trimmed)
}
