// Package ui provides the terminal color themes shared by the CLI
// presentation code: ANSI escape helpers for inline coloring and lipgloss
// styles for boxed summaries and tables.
package ui
