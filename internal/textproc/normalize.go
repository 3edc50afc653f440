package textproc

import (
	"regexp"
	"strings"
)

var (
	spaceRun = regexp.MustCompile(` {2,}`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses line endings to \n, tabs to spaces, space runs to a
// single space and blank-line runs to exactly one blank line, then trims
// the result. Normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")
	text = spaceRun.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
