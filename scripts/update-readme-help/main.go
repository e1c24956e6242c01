// Package main refreshes the CLI help section of README.md from a built stackup binary.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/fotogram/stackup/internal/constants"
)

const readmePath = "README.md"
const helpStartMarker = "<!-- CLI_HELP_START -->"
const helpEndMarker = "<!-- CLI_HELP_END -->"

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <cli-binary-path>", os.Args[0])
	}

	cliBinary := os.Args[1]
	if cliBinary == "" {
		log.Fatal("error: cli binary path is required")
	}

	helpOutput, err := captureHelpOutput(cliBinary)
	if err != nil {
		log.Fatalf("error capturing help output: %s", err)
	}

	if err = spliceHelpSection(readmePath, helpOutput); err != nil {
		log.Fatalf("error updating %s: %s", readmePath, err)
	}

	log.Printf("updated %s with latest CLI help output", readmePath)
}

func captureHelpOutput(cliBinary string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.LongScriptContextTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cliBinary, "--help")
	output, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(output)), err
}

// spliceHelpSection replaces everything between the help markers with a
// fenced block holding the current --help output.
func spliceHelpSection(path, helpOutput string) error {
	content, err := os.ReadFile(path) //nolint:gosec // G304: README.md path is a constant
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(content)

	start := strings.Index(text, helpStartMarker)
	end := strings.Index(text, helpEndMarker)
	if start < 0 || end < 0 || end < start {
		return fmt.Errorf("could not find %s and %s markers in %s", helpStartMarker, helpEndMarker, path)
	}

	var section strings.Builder
	section.WriteString(helpStartMarker)
	section.WriteString("\n```text\n")
	section.WriteString(helpOutput)
	section.WriteString("\n```\n")

	updated := text[:start] + section.String() + text[end:]

	if err = os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
