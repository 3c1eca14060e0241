package cmdutil

import (
	"fmt"

	"github.com/kballard/go-shellquote"
)

// SplitCommand parses a configured script entry into command parts.
// Entries may carry arguments ("/opt/deploy.sh --fast production"); splitting
// follows POSIX shell word rules so quoted arguments survive intact, while
// the result is always executed without a shell interpreting metacharacters.
func SplitCommand(entry string) ([]string, error) {
	parts, err := shellquote.Split(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command '%s': %w", entry, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return parts, nil
}

// FormatCommand renders command parts as a single shell-quoted string for
// log lines and error messages.
func FormatCommand(parts []string) string {
	return shellquote.Join(parts...)
}
