package main

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const unreleased = "Unreleased"

// Release is one "## [version] - date" section.
type Release struct {
	Version string
	Date    string
	// Line is the 1-based line of the heading.
	Line int
	Body string
}

// Document is a parsed changelog.
type Document struct {
	Releases []Release
	// Links maps reference labels ("1.2.0", "Unreleased") to URLs.
	Links map[string]string
}

// Find returns the release for version, accepting a leading "v".
func (d *Document) Find(version string) *Release {
	want := strings.TrimPrefix(version, "v")
	for i := range d.Releases {
		if strings.TrimPrefix(d.Releases[i].Version, "v") == want {
			return &d.Releases[i]
		}
	}
	return nil
}

var (
	headingPattern = regexp.MustCompile(`^\[?([^\]\s]+)\]?(?:\s+-\s+(.+))?$`)
	linkDefinition = regexp.MustCompile(`(?m)^\[[^\]]+\]:\s+\S+[ \t]*\n?`)
)

// Parse reads the level 2 headings and link references of a changelog.
func Parse(source []byte) (*Document, error) {
	pctx := parser.NewContext()
	root := goldmark.New().Parser().Parse(text.NewReader(source), parser.WithContext(pctx))

	doc := &Document{Links: map[string]string{}}
	for _, ref := range pctx.References() {
		doc.Links[string(ref.Label())] = string(ref.Destination())
	}

	type span struct {
		release    Release
		start, end int
	}
	var spans []span
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !entering || !ok || heading.Level != 2 {
			return ast.WalkContinue, nil
		}
		lines := heading.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		start, end := lines.At(0).Start, lines.At(lines.Len()-1).Stop
		release := parseHeading(headingText(heading, source))
		release.Line = bytes.Count(source[:start], []byte("\n")) + 1
		spans = append(spans, span{release: release, start: start, end: end})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	for i, s := range spans {
		bodyEnd := len(source)
		if i+1 < len(spans) {
			// back up over the "## " of the next heading
			bodyEnd = bytes.LastIndexByte(source[:spans[i+1].start], '\n') + 1
		}
		if s.end < bodyEnd {
			body := linkDefinition.ReplaceAll(source[s.end:bodyEnd], nil)
			s.release.Body = strings.TrimSpace(string(body))
		}
		doc.Releases = append(doc.Releases, s.release)
	}
	return doc, nil
}

// headingText concatenates the text of a heading, including link labels.
func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := child.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func parseHeading(heading string) Release {
	m := headingPattern.FindStringSubmatch(strings.TrimSpace(heading))
	if m == nil {
		return Release{Version: strings.TrimSpace(heading)}
	}
	return Release{Version: m[1], Date: strings.TrimSpace(m[2])}
}
