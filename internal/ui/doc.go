// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content by type. With a color-capable terminal the
// text is colorized; when NO_COLOR is set or the terminal can't do color,
// text decorations (backticks, quotes) are used instead.
//
// # Semantic Formatters
//
//	ui.Code.Sprint("prfvault vault init")  // Commands
//	ui.Path.Sprint("~/.config/prfvault")   // File paths
//	ui.Highlight.Sprint("github-token")    // Entry names, nicknames
//	ui.Muted.Sprint("q2Lk…")               // Secondary text
//
// # Status Lines
//
// SuccessLine, ErrorLine, HintLine and WarningLine prefix a message with
// the matching glyph (✓, ✗, →, ⚠) in its color.
//
// # Tables
//
// Table aligns rows into columns for the list commands. Widths are
// measured without ANSI escapes.
package ui
