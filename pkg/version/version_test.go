package version

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionIsSemver(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^v\d+\.\d+\.\d+$`), Version)
}

func TestString(t *testing.T) {
	defer func(c string) { Commit = c }(Commit)

	Commit = ""
	assert.Equal(t, Version, String())

	Commit = "abc123"
	assert.Equal(t, Version+" (abc123)", String())
}
