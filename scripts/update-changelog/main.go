// Package main prepends a release section to CHANGELOG.md from commits since the last release.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/fotogram/stackup/internal/constants"
)

const changelogPath = "CHANGELOG.md"
const versionPath = "VERSION"
const commitBaseURL = "https://github.com/fotogram/stackup/commit/"

var releaseHeading = regexp.MustCompile(`(?m)^## \[(v\d+\.\d+\.\d+)\]`)
var tagFormat = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)
var commitTypePrefix = regexp.MustCompile(`^(\w+)(?:\([^)]+\))?:`)

type commit struct {
	shortHash string
	fullHash  string
	message   string
}

func main() {
	version, err := readVersion(versionPath)
	if err != nil {
		log.Fatalf("error reading version: %s", err)
	}

	content, err := os.ReadFile(changelogPath)
	if err != nil {
		log.Fatalf("error reading %s: %s", changelogPath, err)
	}

	lastVersion, err := lastReleaseVersion(string(content))
	if err != nil {
		log.Fatalf("error finding last release: %s", err)
	}

	commits, err := commitsSinceTag(lastVersion)
	if err != nil {
		log.Fatalf("error listing commits: %s", err)
	}

	if len(commits) == 0 {
		log.Printf("no commits found since %s, skipping changelog update", lastVersion)
		return
	}

	section := releaseSection(version, time.Now().Format("2006-01-02"), commits)

	updated, err := prependRelease(string(content), section)
	if err != nil {
		log.Fatalf("error updating changelog: %s", err)
	}

	if err = os.WriteFile(changelogPath, []byte(updated), 0o644); err != nil {
		log.Fatalf("error writing %s: %s", changelogPath, err)
	}

	log.Printf("updated %s with release %s", changelogPath, version)
}

func readVersion(path string) (string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: VERSION path is a constant
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(content)), nil
}

// lastReleaseVersion returns the version of the topmost release heading,
// e.g. "## [v0.3.0] - 2026-08-01" yields "v0.3.0".
func lastReleaseVersion(changelog string) (string, error) {
	matches := releaseHeading.FindStringSubmatch(changelog)
	if len(matches) < 2 {
		return "", fmt.Errorf("could not find a release heading in %s", changelogPath)
	}
	return matches[1], nil
}

func commitsSinceTag(tag string) ([]commit, error) {
	// The tag goes into a git command line, so reject anything that does
	// not look like a release tag.
	if !tagFormat.MatchString(tag) {
		return nil, fmt.Errorf("invalid tag format: %s", tag)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ScriptContextTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log", tag+"..HEAD", "--pretty=format:%h|%H|%s", "--no-merges")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}

	var commits []commit
	for line := range strings.SplitSeq(strings.TrimSpace(string(output)), "\n") {
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		commits = append(commits, commit{shortHash: parts[0], fullHash: parts[1], message: parts[2]})
	}

	return commits, nil
}

// category maps a conventional commit prefix to a Keep a Changelog section.
func category(message string) string {
	matches := commitTypePrefix.FindStringSubmatch(message)
	if len(matches) < 2 {
		return "Changed"
	}
	switch strings.ToLower(matches[1]) {
	case "feat":
		return "Added"
	case "fix":
		return "Fixed"
	default:
		return "Changed"
	}
}

func releaseSection(version, date string, commits []commit) string {
	categorized := make(map[string][]commit)
	for _, c := range commits {
		key := category(c.message)
		categorized[key] = append(categorized[key], c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## [%s] - %s\n\n", version, date)

	for _, section := range []string{"Added", "Changed", "Fixed"} {
		entries := categorized[section]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", section)
		for _, c := range entries {
			fmt.Fprintf(&b, "* [%s](%s%s) %s\n", c.shortHash, commitBaseURL, c.fullHash, c.message)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// prependRelease inserts the new section ahead of the first existing
// release heading, keeping the changelog preamble intact.
func prependRelease(changelog, section string) (string, error) {
	loc := releaseHeading.FindStringIndex(changelog)
	if loc == nil {
		return "", fmt.Errorf("could not find release section start in %s", changelogPath)
	}
	return changelog[:loc[0]] + section + changelog[loc[0]:], nil
}
