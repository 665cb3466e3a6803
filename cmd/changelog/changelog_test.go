package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/snowforge/snowforge/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Changelog

All notable changes to this project are documented here.

## [Unreleased]

### Added
- Watch mode

## [1.2.0] - 2025-03-02

### Changed
- Faster planning

### Fixed
- Stage ordering

## [1.1.0] - 2025-01-20

### Added
- First public release

[Unreleased]: https://github.com/snowforge/snowforge/compare/v1.2.0...HEAD
[1.2.0]: https://github.com/snowforge/snowforge/compare/v1.1.0...v1.2.0
[1.1.0]: https://github.com/snowforge/snowforge/releases/tag/v1.1.0
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, doc.Releases, 3)

	assert.Equal(t, unreleased, doc.Releases[0].Version)
	assert.Empty(t, doc.Releases[0].Date)
	assert.Equal(t, 5, doc.Releases[0].Line)

	r := doc.Releases[1]
	assert.Equal(t, "1.2.0", r.Version)
	assert.Equal(t, "2025-03-02", r.Date)
	assert.Contains(t, r.Body, "### Changed")
	assert.Contains(t, r.Body, "- Stage ordering")
	assert.NotContains(t, r.Body, "## [1.1.0]")

	last := doc.Releases[2]
	assert.Equal(t, "- First public release", strings.TrimSpace(strings.TrimPrefix(last.Body, "### Added")))

	assert.Len(t, doc.Links, 3)
	assert.Equal(t, "https://github.com/snowforge/snowforge/releases/tag/v1.1.0", doc.Links["1.1.0"])
}

func TestCheckOrdersPreReleases(t *testing.T) {
	s := strings.Replace(sample, "## [1.1.0] - 2025-01-20", "## [1.2.0-rc.1] - 2025-01-20", 1)
	s = strings.Replace(s, "[1.1.0]:", "[1.2.0-rc.1]:", 1)
	problems, err := Check([]byte(s))
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestFind(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	for _, v := range []string{"1.2.0", "v1.2.0"} {
		r := doc.Find(v)
		require.NotNil(t, r, v)
		assert.Equal(t, "1.2.0", r.Version)
	}
	assert.Nil(t, doc.Find("9.9.9"))
}

func TestCheckAcceptsSample(t *testing.T) {
	problems, err := Check([]byte(sample))
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestCheckProblems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		message string
	}{
		{
			name:    "no title",
			mutate:  func(s string) string { return strings.Replace(s, "# Changelog\n", "", 1) },
			message: `missing "# Changelog" title`,
		},
		{
			name: "no unreleased section",
			mutate: func(s string) string {
				return strings.Replace(s, "## [Unreleased]\n\n### Added\n- Watch mode\n\n", "", 1)
			},
			message: "first section must be [Unreleased]",
		},
		{
			name:    "bad date",
			mutate:  func(s string) string { return strings.Replace(s, "2025-03-02", "March 2 2025", 1) },
			message: `date "March 2 2025" is not YYYY-MM-DD`,
		},
		{
			name:    "impossible date",
			mutate:  func(s string) string { return strings.Replace(s, "2025-03-02", "2025-13-40", 1) },
			message: "is not a calendar date",
		},
		{
			name:    "missing date",
			mutate:  func(s string) string { return strings.Replace(s, "## [1.2.0] - 2025-03-02", "## [1.2.0]", 1) },
			message: "version 1.2.0 has no release date",
		},
		{
			name:    "unknown change type",
			mutate:  func(s string) string { return strings.Replace(s, "### Changed", "### Improved", 1) },
			message: `unknown change type "Improved"`,
		},
		{
			name: "missing link",
			mutate: func(s string) string {
				return strings.Replace(s, "[1.1.0]: https://github.com/snowforge/snowforge/releases/tag/v1.1.0\n", "", 1)
			},
			message: "missing link definition for [1.1.0]",
		},
		{
			name: "out of order",
			mutate: func(s string) string {
				s = strings.Replace(s, "## [1.1.0] - 2025-01-20", "## [1.3.0] - 2025-01-20", 1)
				return strings.Replace(s, "[1.1.0]:", "[1.3.0]:", 1)
			},
			message: "version 1.3.0 must be listed below 1.2.0",
		},
		{
			name:    "not semver",
			mutate:  func(s string) string { return strings.Replace(s, "## [1.1.0]", "## [1.1]", 1) },
			message: `version "1.1" is not X.Y.Z`,
		},
		{
			name:    "four part version",
			mutate:  func(s string) string { return strings.Replace(s, "## [1.1.0]", "## [1.1.0.4]", 1) },
			message: `version "1.1.0.4" is not X.Y.Z`,
		},
		{
			name: "pre-release above its release",
			mutate: func(s string) string {
				s = strings.Replace(s, "## [1.1.0] - 2025-01-20", "## [1.2.0] - 2025-01-20", 1)
				s = strings.Replace(s, "## [1.2.0] - 2025-03-02", "## [1.2.0-rc.1] - 2025-03-02", 1)
				return strings.Replace(s, "[1.2.0]:", "[1.2.0-rc.1]:", 1)
			},
			message: "version 1.2.0 must be listed below 1.2.0-rc.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems, err := Check([]byte(tt.mutate(sample)))
			require.NoError(t, err)
			assert.True(t, hasProblem(problems, tt.message), "want %q in %v", tt.message, problems)
		})
	}
}

func TestCheckRelease(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.NoError(t, CheckRelease(doc, "v1.2.0", "1.2.0"))
	assert.NoError(t, CheckRelease(doc, "1.2.0", "v1.2.0"))

	assert.ErrorContains(t, CheckRelease(doc, "", "1.2.0"), "empty release tag")
	assert.ErrorContains(t, CheckRelease(doc, "v1.1.0", "1.2.0"), "does not match")
	assert.ErrorContains(t, CheckRelease(doc, "v2.0.0", "2.0.0"), "no entry for 2.0.0")

	undated, err := Parse([]byte(strings.Replace(sample, "## [1.2.0] - 2025-03-02", "## [1.2.0]", 1)))
	require.NoError(t, err)
	assert.ErrorContains(t, CheckRelease(undated, "v1.2.0", "1.2.0"), "has no release date")
}

func TestWriteRelease(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	writeRelease(&buf, doc, doc.Find("1.1.0"))
	assert.Equal(t, "## [1.1.0] - 2025-01-20\n\n### Added\n- First public release\n\n[1.1.0]: https://github.com/snowforge/snowforge/releases/tag/v1.1.0\n", buf.String())
}

func TestRepositoryChangelog(t *testing.T) {
	source, err := os.ReadFile("../../CHANGELOG.md")
	require.NoError(t, err)

	problems, err := Check(source)
	require.NoError(t, err)
	assert.Empty(t, problems)

	doc, err := Parse(source)
	require.NoError(t, err)
	assert.NoError(t, CheckRelease(doc, "v"+strings.TrimPrefix(version.Version, "v"), version.Version))

	first := doc.Find("0.1.0")
	require.NotNil(t, first)
	assert.Contains(t, first.Body, "tables, stages, file formats, streams, tasks, PUT and COPY INTO")
	for _, missing := range []string{"databases", "schemas", "pipes"} {
		assert.NotContains(t, first.Body, missing)
	}
}

func hasProblem(problems []Problem, substr string) bool {
	for _, p := range problems {
		if strings.Contains(p.Message, substr) {
			return true
		}
	}
	return false
}
