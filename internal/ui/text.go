package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Semantic formatters for different types of CLI output.
var (
	// Code formats runnable commands such as `prfvault vault init`.
	// Yellow with color, `backticks` without.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file or directory paths.
	// Yellow with color, no decoration without.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag formats CLI flags like --force.
	// Yellow with color, no decoration without.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	// Success formats success indicators and messages.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error formats error indicators and messages.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning formats warning indicators and messages.
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Info formats hints and directional indicators.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats user values like entry names and credential nicknames.
	// Cyan with color, 'single quotes' without.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats secondary text such as abbreviated credential IDs.
	// Gray with color, (parentheses) without.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)

// Glyphs prefixing status lines.
const (
	GlyphSuccess = "✓"
	GlyphError   = "✗"
	GlyphHint    = "→"
	GlyphWarning = "⚠"
)

// SuccessLine returns a "✓ msg" line.
func SuccessLine(format string, a ...interface{}) string {
	return Success.Sprint(GlyphSuccess) + " " + fmt.Sprintf(format, a...)
}

// ErrorLine returns a "✗ msg" line.
func ErrorLine(format string, a ...interface{}) string {
	return Error.Sprint(GlyphError) + " " + fmt.Sprintf(format, a...)
}

// HintLine returns a "→ msg" line.
func HintLine(format string, a ...interface{}) string {
	return Info.Sprint(GlyphHint) + " " + fmt.Sprintf(format, a...)
}

// WarningLine returns a "⚠ msg" line.
func WarningLine(format string, a ...interface{}) string {
	return Warning.Sprint(GlyphWarning) + " " + fmt.Sprintf(format, a...)
}

// Table renders rows as left-aligned columns separated by two spaces.
// Column widths ignore ANSI escapes so colored cells still line up.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := visibleLen(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	var b strings.Builder
	write := func(row []string) {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-visibleLen(cell)))
			}
		}
		b.WriteString("\n")
	}
	if len(header) > 0 {
		write(header)
	}
	for _, row := range rows {
		write(row)
	}
	return b.String()
}

func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}
