// Package sanitize cleans text typed into the interactive browser and
// names received from the server before they reach the terminal.
//
// It removes:
//   - Windows/Mac line endings (CRLF/CR)
//   - Invisible Unicode characters (zero-width spaces, etc.)
//   - Terminal control characters in displayed names
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/flynn/go-shlex"
)

var (
	blankRun = regexp.MustCompile(`[ \t]+`)

	invisible = strings.NewReplacer(
		"\u200B", "", // Zero-width space
		"\u200C", "", // Zero-width non-joiner
		"\u200D", "", // Zero-width joiner
		"\uFEFF", "", // Zero-width no-break space (BOM)
		"\u00AD", "", // Soft hyphen
		"\u2060", "", // Word joiner
		"\u180E", "", // Mongolian vowel separator
	)
)

// Line normalizes one line of user input: line endings and invisible
// characters are dropped, blanks collapsed and the result trimmed.
func Line(line string) string {
	if line == "" {
		return line
	}
	line = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(line)
	line = invisible.Replace(line)
	line = blankRun.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// Fields splits a sanitized line into words with shell quoting rules, so
// names containing spaces can be typed: cd "Quarterly Reports".
func Fields(line string) ([]string, error) {
	line = Line(line)
	if line == "" {
		return nil, nil
	}
	return shlex.Split(line)
}

// DisplayName makes a server-provided name safe to print: invisible
// characters are removed and control characters replaced with '?'.
func DisplayName(name string) string {
	name = invisible.Replace(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, name)
}
