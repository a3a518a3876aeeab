package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger is the package-level structured logger.
var Logger *log.Logger

// Messages go to stderr; tables and documents go to stdout.
var (
	msgOut  io.Writer = os.Stderr
	dataOut io.Writer = os.Stdout
)

// Styles, initialized in Init().
var (
	headerStyle  lipgloss.Style
	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
	dimStyle     lipgloss.Style
	boldStyle    lipgloss.Style
	tagStyle     lipgloss.Style
)

// Init sets up color detection, lipgloss styles, and the structured logger.
// Call this once at CLI startup.
func Init(noColorFlag bool) {
	noColor := noColorFlag || os.Getenv("NO_COLOR") != ""

	// Pre-set dark background to prevent the termenv OSC query
	lipgloss.SetHasDarkBackground(true)

	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle = lipgloss.NewStyle().Faint(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
	tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	Logger = log.NewWithOptions(msgOut, log.Options{
		ReportTimestamp: false,
		Prefix:          "board",
	})
	if noColor {
		Logger.SetStyles(log.DefaultStyles())
	}
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies
// it to Logger.
func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetOutput redirects messages and data, mainly for tests.
func SetOutput(messages, data io.Writer) {
	msgOut = messages
	dataOut = data
	if Logger != nil {
		Logger.SetOutput(messages)
	}
}

// Data returns the writer documents and tables are printed to.
func Data() io.Writer { return dataOut }

func Bold(s string) string { return boldStyle.Render(s) }
func Dim(s string) string  { return dimStyle.Render(s) }

// Tags renders tag names behind the marker the rule set writes them with.
func Tags(prefix string, tags []string) string {
	if len(tags) == 0 {
		return dimStyle.Render("—")
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = tagStyle.Render(prefix + t)
	}
	return strings.Join(parts, " ")
}

// Warning prints a styled warning message.
func Warning(msg string) {
	fmt.Fprintf(msgOut, "%s %s\n", warningStyle.Render("⚠"), msg)
}

// Error prints a styled error message.
func Error(msg string) {
	fmt.Fprintf(msgOut, "%s %s\n", errorStyle.Render("✗"), msg)
}

// Success prints a green check with a message.
func Success(msg string) {
	fmt.Fprintf(msgOut, "%s %s\n", successStyle.Render("✓"), msg)
}

// Detail prints an indented key-value detail line.
func Detail(key, value string) {
	label := dimStyle.Render(fmt.Sprintf("  %s", key))
	fmt.Fprintf(msgOut, "%s %s\n", label, value)
}

// SectionHeader prints a styled section divider with a label.
func SectionHeader(label string) {
	line := headerStyle.Render(fmt.Sprintf("── %s ──", label))
	fmt.Fprintf(msgOut, "\n%s\n\n", line)
}

// EmptyState prints a styled message for empty results.
func EmptyState(msg string) {
	fmt.Fprintf(msgOut, "  %s\n", dimStyle.Render(msg))
}

// Table prints a formatted table with headers and rows.
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(dataOut, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, boldStyle.Render(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
