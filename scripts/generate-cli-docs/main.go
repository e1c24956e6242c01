// Package main generates a single markdown file documenting all stackup CLI commands.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fotogram/stackup/cmd/stackup/cmd"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func main() {
	var outFile string
	flag.StringVar(&outFile, "out", "./docs/CLI.md", "output file for generated markdown")
	flag.Parse()

	if outFile == "" {
		log.Fatal("error: output file is required")
	}

	if err := generateCLIDocs(outFile); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func generateCLIDocs(outFile string) error {
	if err := os.MkdirAll(filepath.Dir(outFile), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	root := cmd.RootCmd()
	root.DisableAutoGenTag = true

	var buf bytes.Buffer
	buf.WriteString("# Stackup CLI Documentation\n\n")
	buf.WriteString("Generated by scripts/generate-cli-docs. Do not edit by hand.\n\n")

	if err := renderCommand(&buf, root); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Clean(outFile), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outFile, err)
	}

	absPath, err := filepath.Abs(outFile)
	if err != nil {
		absPath = outFile
	}

	log.Printf("✅ Successfully generated CLI documentation in %s", absPath)
	return nil
}

// renderCommand appends the markdown for cobraCmd and then its subcommands
// in name order.
func renderCommand(buf *bytes.Buffer, cobraCmd *cobra.Command) error {
	if !cobraCmd.IsAvailableCommand() || cobraCmd.IsAdditionalHelpTopicCommand() {
		return nil
	}

	var section bytes.Buffer
	if err := doc.GenMarkdown(cobraCmd, &section); err != nil {
		return fmt.Errorf("rendering %s: %w", cobraCmd.CommandPath(), err)
	}

	// GenMarkdown links to per-command files that do not exist in a
	// single-file layout, so the SEE ALSO section goes.
	markdown := section.String()
	if i := strings.Index(markdown, "### SEE ALSO"); i >= 0 {
		markdown = strings.TrimRight(markdown[:i], "\n") + "\n"
	}

	buf.WriteString(markdown)
	buf.WriteString("\n")

	subcommands := append([]*cobra.Command(nil), cobraCmd.Commands()...)
	sort.Slice(subcommands, func(i, j int) bool {
		return subcommands[i].Name() < subcommands[j].Name()
	})

	for _, subCmd := range subcommands {
		if err := renderCommand(buf, subCmd); err != nil {
			return err
		}
	}

	return nil
}
