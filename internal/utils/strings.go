package utils

import (
	"regexp"
	"strings"

	"github.com/prfvault/prfvault/internal/ui"
)

var validNickname = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 _.-]*$`)

// FormatList formats items as an indented bullet list, one per line.
func FormatList(items []string, f ui.Formatter) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("    - ")
		b.WriteString(f.Sprint(item))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidNickname checks that a credential nickname starts with an
// alphanumeric character and contains only letters, digits, spaces,
// dots, hyphens and underscores.
func IsValidNickname(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	return validNickname.MatchString(name)
}
