package ddl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// ErrNoLocalFiles is returned when a PUT source matches nothing on disk.
var ErrNoLocalFiles = errors.New("no local files match")

type StageRefKind string

const (
	TableStageRef StageRefKind = "table"
	UserStageRef  StageRefKind = "user"
	NamedStageRef StageRefKind = "named"
)

// StageRef points at an internal stage: a table stage (@%t), the user
// stage (@~/path) or a named stage (@s).
type StageRef struct {
	Kind StageRefKind
	Name string
}

func TableStage(name string) StageRef { return StageRef{Kind: TableStageRef, Name: name} }
func UserStage(path string) StageRef  { return StageRef{Kind: UserStageRef, Name: path} }
func NamedStage(name string) StageRef { return StageRef{Kind: NamedStageRef, Name: name} }

// ParseStageRef parses the @%t, @~/path and @s forms. The leading @ is
// optional for named stages.
func ParseStageRef(ref string) StageRef {
	switch {
	case strings.HasPrefix(ref, "@%"):
		return TableStage(ref[2:])
	case strings.HasPrefix(ref, "@~"):
		return UserStage(strings.TrimPrefix(ref[2:], "/"))
	default:
		return NamedStage(strings.TrimPrefix(ref, "@"))
	}
}

func (r StageRef) String() string {
	switch r.Kind {
	case TableStageRef:
		return "@%" + r.Name
	case UserStageRef:
		return "@~/" + r.Name
	default:
		return "@" + r.Name
	}
}

func (r *StageRef) UnmarshalYAML(value *yaml.Node) error {
	var ref string
	if err := value.Decode(&ref); err != nil {
		return err
	}
	*r = ParseStageRef(ref)
	return nil
}

func (r StageRef) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

type Put struct {
	FilePath          string          `yaml:"file" json:"file"`
	Stage             StageRef        `yaml:"stage" json:"stage"`
	Parallel          *int            `yaml:"parallel,omitempty" json:"parallel,omitempty"`
	AutoCompress      bool            `yaml:"auto_compress" json:"auto_compress"`
	SourceCompression CompressionType `yaml:"source_compression,omitempty" json:"source_compression,omitempty"`
	Overwrite         bool            `yaml:"overwrite,omitempty" json:"overwrite,omitempty"`
}

func newPut() Put {
	return Put{AutoCompress: true, SourceCompression: CompressionAuto}
}

func (p *Put) UnmarshalYAML(value *yaml.Node) error {
	type putAlias Put
	alias := putAlias(newPut())
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*p = Put(alias)
	return nil
}

func (p *Put) Kind() Kind         { return KindPut }
func (p *Put) ObjectName() string { return p.FilePath }

func (p *Put) Validate() error {
	var result *multierror.Error
	if p.FilePath == "" {
		result = multierror.Append(result, missing(KindPut, "file path"))
	}
	if p.Stage.Name == "" && p.Stage.Kind != UserStageRef {
		result = multierror.Append(result, missing(KindPut, "stage"))
	}
	if p.Parallel != nil && (*p.Parallel < 1 || *p.Parallel > 99) {
		result = multierror.Append(result, fmt.Errorf("put %s: %w", p.FilePath, ErrInvalidParallel))
	}
	return result.ErrorOrNil()
}

// LocalFiles expands the file path, which may contain ** globs, against the
// local filesystem.
func (p *Put) LocalFiles() ([]string, error) {
	matches, err := doublestar.Glob(p.FilePath)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", p.FilePath, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("put %s: %w", p.FilePath, ErrNoLocalFiles)
	}
	return matches, nil
}

func (p *Put) SQL() string {
	parts := clauses{"PUT", fmt.Sprintf("'file://%s'", p.FilePath), p.Stage.String()}
	if p.Parallel != nil {
		parts.addf("PARALLEL = %d", *p.Parallel)
	}
	if p.AutoCompress {
		parts.add("AUTO_COMPRESS = TRUE")
	}
	compression := p.SourceCompression
	if compression == "" {
		compression = CompressionAuto
	}
	parts.add("SOURCE_COMPRESSION = " + string(compression))
	if p.Overwrite {
		parts.add("OVERWRITE = TRUE")
	}
	return parts.join(" ")
}

type PutBuilder struct {
	put Put
}

func NewPut() *PutBuilder {
	return &PutBuilder{put: newPut()}
}

func (b *PutBuilder) WithFilePath(path string) *PutBuilder {
	b.put.FilePath = path
	return b
}

func (b *PutBuilder) WithStage(stage StageRef) *PutBuilder {
	b.put.Stage = stage
	return b
}

// WithParallel sets the number of upload threads. Values outside 1..99 are
// reported by Build.
func (b *PutBuilder) WithParallel(parallel int) *PutBuilder {
	b.put.Parallel = &parallel
	return b
}

func (b *PutBuilder) WithAutoCompress(autoCompress bool) *PutBuilder {
	b.put.AutoCompress = autoCompress
	return b
}

func (b *PutBuilder) WithSourceCompression(compression CompressionType) *PutBuilder {
	b.put.SourceCompression = compression
	return b
}

func (b *PutBuilder) WithOverwrite(overwrite bool) *PutBuilder {
	b.put.Overwrite = overwrite
	return b
}

func (b *PutBuilder) Build() (*Put, error) {
	p := b.put
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
