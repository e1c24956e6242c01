// Package output provides formatted console output for the CLI.
// Operator-facing progress goes through this package; diagnostic detail goes
// through slog.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/fotogram/stackup/internal/constants"
)

var (
	// Colors and styles
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)

	// Output writers and prompt reader (can be overridden for testing)
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
	Stdin  io.Reader = os.Stdin

	// Disable colors if not TTY or NO_COLOR is set
	noColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
)

func init() {
	if noColor {
		color.NoColor = true
	}
}

// Success prints a success message with a checkmark
// Example: ✓ Stack created successfully
func Success(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", green.Sprint("✓"), message)
}

// Successf prints a formatted success message
func Successf(format string, a ...any) {
	Success(fmt.Sprintf(format, a...))
}

// Info prints an informational message with an arrow
// Example: → Creating stack fotogram-network...
func Info(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", cyan.Sprint("→"), message)
}

// Infof prints a formatted informational message
func Infof(format string, a ...any) {
	Info(fmt.Sprintf(format, a...))
}

// Warning prints a warning message with a warning symbol
// Example: ⚠ Upload failed; publish the file manually
func Warning(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", yellow.Sprint("⚠"), message)
}

// Warningf prints a formatted warning message
func Warningf(format string, a ...any) {
	Warning(fmt.Sprintf(format, a...))
}

// Error prints an error message with an X symbol to stderr
// Example: ✗ Failed to create stack: permission denied
func Error(message string) {
	fmt.Fprintf(Stderr, "%s %s\n", red.Sprint("✗"), message)
}

// Errorf prints a formatted error message to stderr
func Errorf(format string, a ...any) {
	Error(fmt.Sprintf(format, a...))
}

// Fatal prints an error message and exits with code 1
func Fatal(message string) {
	Error(message)
	os.Exit(1)
}

// Step prints a step in a multi-step process
// Example: [1/4] Provisioning network stack
func Step(step, total int, message string) {
	gray.Fprintf(Stdout, "[%d/%d] ", step, total)
	fmt.Fprintln(Stdout, message)
}

// Header prints a section header with a separator line
// Example:
// Deploying fotogram infrastructure
// ━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
func Header(text string) {
	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, bold.Sprint(text))
	fmt.Fprintln(Stdout, gray.Sprint(strings.Repeat("━", constants.HeaderSeparatorLength)))
}

// Subheader prints a smaller section header
// Example:
// Stack outputs
// ─────────────
func Subheader(text string) {
	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, cyan.Sprint(text))
	fmt.Fprintln(Stdout, gray.Sprint(strings.Repeat("─", len(text))))
}

// KeyValue prints a key-value pair with indentation
// Example:   Stack name: fotogram-network
func KeyValue(key, value string) {
	fmt.Fprintf(Stdout, "  %s: %s\n", gray.Sprint(key), value)
}

// KeyValueBold prints a key-value pair with bold value
func KeyValueBold(key, value string) {
	fmt.Fprintf(Stdout, "  %s: %s\n", gray.Sprint(key), bold.Sprint(value))
}

// Detail prints an indented secondary line under a key-value or list entry
func Detail(text string) {
	fmt.Fprintf(Stdout, "    %s\n", gray.Sprint(text))
}

// Blank prints a blank line
func Blank() {
	fmt.Fprintln(Stdout)
}

// Println prints a plain line without any formatting
func Println(a ...any) {
	fmt.Fprintln(Stdout, a...)
}

// Printf prints a formatted plain line
func Printf(format string, a ...any) {
	fmt.Fprintf(Stdout, format, a...)
}

// Bold returns text in bold
func Bold(text string) string {
	return bold.Sprint(text)
}

// List prints a bulleted list
// Example:
//   • Item one
//   • Item two
func List(items []string) {
	for _, item := range items {
		fmt.Fprintf(Stdout, "  %s %s\n", cyan.Sprint("•"), item)
	}
}

// NumberedList prints a numbered list
// Example:
//  1. First step
//  2. Second step
func NumberedList(items []string) {
	for i, item := range items {
		fmt.Fprintf(Stdout, "  %s %s\n", gray.Sprintf("%d.", i+1), item)
	}
}

// StatusBadge returns a colored stack status badge
func StatusBadge(status string) string {
	s := strings.ToUpper(status)
	switch {
	case s == "CREATE_COMPLETE" || s == "UPDATE_COMPLETE":
		return green.Sprint("● " + status)
	case s == "DELETE_COMPLETE":
		return gray.Sprint("● " + status)
	case strings.HasSuffix(s, "_FAILED") || strings.Contains(s, "ROLLBACK"):
		return red.Sprint("● " + status)
	case strings.HasSuffix(s, "_IN_PROGRESS"):
		return yellow.Sprint("● " + status)
	default:
		return cyan.Sprint("● " + status)
	}
}

// Duration formats a duration in a human-readable way
func Duration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// Confirm prompts the user for yes/no confirmation, reading one line from
// Stdin. Returns true only on an affirmative response (y/yes, any case);
// anything else, including a read error, declines.
func Confirm(prompt string) bool {
	fmt.Fprintf(Stdout, "%s [y/N]: ", yellow.Sprint("?")+" "+prompt)

	line, err := bufio.NewReader(Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
