package workflow

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/workflow/plan"
)

// Parse parses workflow YAML from a reader and returns the parsed statements.
func Parse(r io.Reader) (Statements, error) {
	var statements Statements
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&statements); err != nil {
		if err == io.EOF {
			return Statements{}, nil
		}
		return nil, err
	}
	return statements, nil
}

// Marshal renders statements back into workflow YAML.
func Marshal(statements Statements) ([]byte, error) {
	return yaml.Marshal(statements)
}

// File is a parsed workflow file together with the source it was read from.
type File struct {
	Name       string
	Source     []byte
	Statements Statements
}

// Load reads and parses the workflow file at path. The workflow name is the
// file name without its extension.
func Load(path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	return ParseSource(strings.TrimSuffix(base, filepath.Ext(base)), source)
}

// ParseSource parses an in-memory workflow document.
func ParseSource(name string, source []byte) (*File, error) {
	statements, err := Parse(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parsing workflow %s: %w", name, err)
	}
	return &File{Name: name, Source: source, Statements: statements}, nil
}

// SHA256 returns the hex checksum of the file source.
func (f *File) SHA256() string {
	sum := sha256.Sum256(f.Source)
	return hex.EncodeToString(sum[:])
}

// Plan validates every statement and builds the dependency plan.
func (f *File) Plan() (*plan.Plan, error) {
	statements, err := f.Statements.Build()
	if err != nil {
		return nil, err
	}
	return plan.New(statements)
}

// Workflow returns a workflow on engine holding the file's statements in
// dependency order.
func (f *File) Workflow(engine *forge.Forge) (*forge.Workflow, error) {
	p, err := f.Plan()
	if err != nil {
		return nil, err
	}
	ordered, err := p.Order()
	if err != nil {
		return nil, err
	}
	w := engine.Workflow().WithName(f.Name).WithSource(f.Source)
	for _, statement := range ordered {
		w.Add(statement)
	}
	return w, nil
}
