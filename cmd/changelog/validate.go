package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// Problem is one formatting issue found in a changelog. Line is 0 when the
// issue concerns the file as a whole.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string {
	if p.Line == 0 {
		return p.Message
	}
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}

var (
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	strictSemver = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?$`)
	sectionTypes = []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}
)

// Check reports every Keep a Changelog rule the document breaks, in line
// order.
func Check(source []byte) ([]Problem, error) {
	doc, err := Parse(source)
	if err != nil {
		return nil, err
	}

	var problems []Problem
	add := func(line int, format string, args ...any) {
		problems = append(problems, Problem{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	problems = append(problems, checkLines(source)...)

	if len(doc.Releases) == 0 || doc.Releases[0].Version != unreleased {
		add(0, "first section must be [%s]", unreleased)
	}

	previous := ""
	for _, r := range doc.Releases {
		if r.Version == unreleased {
			if r.Date != "" {
				add(r.Line, "[%s] must not carry a date", unreleased)
			}
			continue
		}
		if !isRelease(r.Version) {
			add(r.Line, "version %q is not X.Y.Z", r.Version)
			continue
		}
		switch {
		case r.Date == "":
			add(r.Line, "version %s has no release date", r.Version)
		case !isoDate.MatchString(r.Date):
			add(r.Line, "version %s date %q is not YYYY-MM-DD", r.Version, r.Date)
		default:
			if _, err := time.Parse(time.DateOnly, r.Date); err != nil {
				add(r.Line, "version %s date %q is not a calendar date", r.Version, r.Date)
			}
		}
		if previous != "" && semver.Compare("v"+r.Version, "v"+previous) >= 0 {
			add(r.Line, "version %s must be listed below %s", r.Version, previous)
		}
		previous = r.Version
		if _, ok := doc.Links[r.Version]; !ok {
			add(0, "missing link definition for [%s]", r.Version)
		}
	}

	sort.SliceStable(problems, func(i, j int) bool { return problems[i].Line < problems[j].Line })
	return problems, nil
}

// checkLines covers the rules goldmark does not surface: the title and the
// level 3 section names.
func checkLines(source []byte) []Problem {
	var problems []Problem
	scanner := bufio.NewScanner(bytes.NewReader(source))
	titled := false
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimRight(scanner.Text(), " \t")
		switch {
		case strings.HasPrefix(line, "# "):
			titled = titled || strings.TrimSpace(line[2:]) == "Changelog"
		case strings.HasPrefix(line, "### "):
			name := strings.TrimSpace(line[4:])
			if !isSectionType(name) {
				problems = append(problems, Problem{Line: n, Message: fmt.Sprintf("unknown change type %q (want one of %s)", name, strings.Join(sectionTypes, ", "))})
			}
		}
	}
	if !titled {
		problems = append(problems, Problem{Message: `missing "# Changelog" title`})
	}
	return problems
}

// isRelease reports whether v is a full X.Y.Z version, optionally with a
// pre-release suffix.
func isRelease(v string) bool {
	return strictSemver.MatchString(v) && semver.IsValid("v"+v)
}

func isSectionType(name string) bool {
	for _, t := range sectionTypes {
		if t == name {
			return true
		}
	}
	return false
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the changelog against the Keep a Changelog format",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("file")
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "changelog: %v\n", err)
			os.Exit(1)
		}
		problems, err := Check(source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "changelog: %v\n", err)
			os.Exit(1)
		}
		if len(problems) == 0 {
			fmt.Printf("%s is valid\n", path)
			return
		}
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, p)
		}
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
