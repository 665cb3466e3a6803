package ddl

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

type OnError string

const (
	OnErrorContinue       OnError = "CONTINUE"
	OnErrorSkipFile       OnError = "SKIP_FILE"
	OnErrorAbortStatement OnError = "ABORT_STATEMENT"
)

// SkipFileAfter skips a file once n errors were found in it.
func SkipFileAfter(n int) OnError { return OnError(fmt.Sprintf("SKIP_FILE_%d", n)) }

// SkipFileAfterPercent skips a file once n percent of its rows failed.
func SkipFileAfterPercent(n int) OnError { return OnError(fmt.Sprintf("SKIP_FILE_%d%%", n)) }

type MatchByColumnName string

const (
	MatchCaseSensitive   MatchByColumnName = "CASE_SENSITIVE"
	MatchCaseInsensitive MatchByColumnName = "CASE_INSENSITIVE"
	MatchNone            MatchByColumnName = "NONE"
)

type ValidationMode string

const (
	ReturnErrors    ValidationMode = "RETURN_ERRORS"
	ReturnAllErrors ValidationMode = "RETURN_ALL_ERRORS"
)

func ReturnRows(n int) ValidationMode { return ValidationMode(fmt.Sprintf("RETURN_%d_ROWS", n)) }

type LocationKind string

const (
	LocationTable LocationKind = "table"
	LocationStage LocationKind = "stage"
)

// Location is the source or target of a COPY INTO. Stages render with a
// leading @.
type Location struct {
	Kind LocationKind `yaml:"kind" json:"kind"`
	Name string       `yaml:"name" json:"name"`
}

func TableLocation(name string) Location { return Location{Kind: LocationTable, Name: name} }
func StageLocation(name string) Location { return Location{Kind: LocationStage, Name: name} }

func (l Location) SQL() string {
	if l.Kind == LocationStage {
		return "@" + l.Name
	}
	return l.Name
}

// UnmarshalYAML accepts "@stage", "table" or a {table: x} / {stage: x}
// mapping.
func (l *Location) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if strings.HasPrefix(value.Value, "@") {
			*l = StageLocation(value.Value[1:])
		} else {
			*l = TableLocation(value.Value)
		}
		return nil
	}
	var m struct {
		Table string `yaml:"table"`
		Stage string `yaml:"stage"`
	}
	if err := value.Decode(&m); err != nil {
		return err
	}
	switch {
	case m.Table != "" && m.Stage != "":
		return fmt.Errorf("line %d: location must be a table or a stage, not both", value.Line)
	case m.Stage != "":
		*l = StageLocation(m.Stage)
	default:
		*l = TableLocation(m.Table)
	}
	return nil
}

func (l Location) MarshalYAML() (interface{}, error) {
	return l.SQL(), nil
}

type CopyOptions struct {
	ReturnFailedOnly   bool              `yaml:"return_failed_only,omitempty" json:"return_failed_only,omitempty"`
	OnError            OnError           `yaml:"on_error,omitempty" json:"on_error,omitempty"`
	SizeLimit          int               `yaml:"size_limit,omitempty" json:"size_limit,omitempty"`
	Purge              bool              `yaml:"purge,omitempty" json:"purge,omitempty"`
	MatchByColumnName  MatchByColumnName `yaml:"match_by_column_name,omitempty" json:"match_by_column_name,omitempty"`
	EnforceLength      bool              `yaml:"enforce_length,omitempty" json:"enforce_length,omitempty"`
	TruncateColumns    bool              `yaml:"truncate_columns,omitempty" json:"truncate_columns,omitempty"`
	Force              bool              `yaml:"force,omitempty" json:"force,omitempty"`
	LoadUncertainFiles bool              `yaml:"load_uncertain_files,omitempty" json:"load_uncertain_files,omitempty"`
	FileProcessor      string            `yaml:"file_processor,omitempty" json:"file_processor,omitempty"`
	IncludeMetadata    map[string]string `yaml:"include_metadata,omitempty" json:"include_metadata,omitempty"`
}

func (o CopyOptions) SQL() string {
	var parts clauses
	if o.ReturnFailedOnly {
		parts.add("RETURN_FAILED_ONLY = TRUE")
	}
	if o.OnError != "" {
		parts.add("ON_ERROR = " + string(o.OnError))
	}
	if o.SizeLimit > 0 {
		parts.addf("SIZE_LIMIT = %d", o.SizeLimit)
	}
	if o.Purge {
		parts.add("PURGE = TRUE")
	}
	if o.MatchByColumnName != "" {
		parts.add("MATCH_BY_COLUMN_NAME = " + string(o.MatchByColumnName))
	}
	if o.EnforceLength {
		parts.add("ENFORCE_LENGTH = TRUE")
	}
	if o.TruncateColumns {
		parts.add("TRUNCATECOLUMNS = TRUE")
	}
	if o.Force {
		parts.add("FORCE = TRUE")
	}
	if o.LoadUncertainFiles {
		parts.add("LOAD_UNCERTAIN_FILES = TRUE")
	}
	if o.FileProcessor != "" {
		parts.add("FILE_PROCESSOR = (" + o.FileProcessor + ")")
	}
	if len(o.IncludeMetadata) > 0 {
		metadata := make([]string, 0, len(o.IncludeMetadata))
		for _, column := range sortedKeys(o.IncludeMetadata) {
			metadata = append(metadata, column+" = "+o.IncludeMetadata[column])
		}
		parts.add("INCLUDE_METADATA = (" + strings.Join(metadata, ", ") + ")")
	}
	return parts.join(" ")
}

type CopyOptionsBuilder struct {
	options CopyOptions
}

func NewCopyOptions() *CopyOptionsBuilder {
	return &CopyOptionsBuilder{}
}

func (b *CopyOptionsBuilder) WithReturnFailedOnly(v bool) *CopyOptionsBuilder {
	b.options.ReturnFailedOnly = v
	return b
}

func (b *CopyOptionsBuilder) WithOnError(onError OnError) *CopyOptionsBuilder {
	b.options.OnError = onError
	return b
}

func (b *CopyOptionsBuilder) WithSizeLimit(limit int) *CopyOptionsBuilder {
	b.options.SizeLimit = limit
	return b
}

func (b *CopyOptionsBuilder) WithPurge(v bool) *CopyOptionsBuilder {
	b.options.Purge = v
	return b
}

func (b *CopyOptionsBuilder) WithMatchByColumnName(match MatchByColumnName) *CopyOptionsBuilder {
	b.options.MatchByColumnName = match
	return b
}

func (b *CopyOptionsBuilder) WithEnforceLength(v bool) *CopyOptionsBuilder {
	b.options.EnforceLength = v
	return b
}

func (b *CopyOptionsBuilder) WithTruncateColumns(v bool) *CopyOptionsBuilder {
	b.options.TruncateColumns = v
	return b
}

func (b *CopyOptionsBuilder) WithForce(v bool) *CopyOptionsBuilder {
	b.options.Force = v
	return b
}

func (b *CopyOptionsBuilder) WithLoadUncertainFiles(v bool) *CopyOptionsBuilder {
	b.options.LoadUncertainFiles = v
	return b
}

func (b *CopyOptionsBuilder) WithFileProcessor(processor string) *CopyOptionsBuilder {
	b.options.FileProcessor = processor
	return b
}

func (b *CopyOptionsBuilder) WithIncludeMetadata(metadata map[string]string) *CopyOptionsBuilder {
	b.options.IncludeMetadata = metadata
	return b
}

func (b *CopyOptionsBuilder) Build() CopyOptions {
	options := b.options
	options.IncludeMetadata = maps.Clone(options.IncludeMetadata)
	return options
}

type CopyInto struct {
	Target         Location        `yaml:"into" json:"into"`
	Source         Location        `yaml:"from" json:"from"`
	Pattern        string          `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	FileFormat     *FileFormatSpec `yaml:"file_format,omitempty" json:"-"`
	Files          []string        `yaml:"files,omitempty" json:"files,omitempty"`
	ValidationMode ValidationMode  `yaml:"validation_mode,omitempty" json:"validation_mode,omitempty"`
	Options        CopyOptions     `yaml:"options,omitempty" json:"options,omitempty"`
}

func (c *CopyInto) Kind() Kind         { return KindCopyInto }
func (c *CopyInto) ObjectName() string { return c.Target.Name }

func (c *CopyInto) Validate() error {
	var result *multierror.Error
	if c.Target.Name == "" {
		result = multierror.Append(result, missing(KindCopyInto, "target"))
	}
	if c.Source.Name == "" {
		result = multierror.Append(result, missing(KindCopyInto, "source"))
	}
	return result.ErrorOrNil()
}

func (c *CopyInto) SQL() string {
	parts := clauses{"COPY INTO", c.Target.SQL(), "FROM", c.Source.SQL()}
	if c.Pattern != "" {
		parts.addf("PATTERN = '%s'", c.Pattern)
	}
	if c.FileFormat != nil {
		parts.add("FILE_FORMAT = (" + c.FileFormat.SQL() + ")")
	}
	if len(c.Files) > 0 {
		parts.add("FILES = " + FormatList(c.Files))
	}
	if c.ValidationMode != "" {
		parts.add("VALIDATION_MODE = " + string(c.ValidationMode))
	}
	if options := c.Options.SQL(); options != "" {
		parts.add(options)
	}
	return parts.join(" ")
}

type CopyIntoBuilder struct {
	copy CopyInto
}

func NewCopyInto() *CopyIntoBuilder {
	return &CopyIntoBuilder{}
}

func (b *CopyIntoBuilder) WithTarget(target Location) *CopyIntoBuilder {
	b.copy.Target = target
	return b
}

func (b *CopyIntoBuilder) WithSource(source Location) *CopyIntoBuilder {
	b.copy.Source = source
	return b
}

func (b *CopyIntoBuilder) WithOptions(options CopyOptions) *CopyIntoBuilder {
	b.copy.Options = options
	return b
}

func (b *CopyIntoBuilder) WithPattern(pattern string) *CopyIntoBuilder {
	b.copy.Pattern = pattern
	return b
}

func (b *CopyIntoBuilder) WithFileFormat(spec *FileFormatSpec) *CopyIntoBuilder {
	b.copy.FileFormat = spec
	return b
}

func (b *CopyIntoBuilder) WithFiles(files ...string) *CopyIntoBuilder {
	b.copy.Files = files
	return b
}

func (b *CopyIntoBuilder) WithValidationMode(mode ValidationMode) *CopyIntoBuilder {
	b.copy.ValidationMode = mode
	return b
}

func (b *CopyIntoBuilder) Build() (*CopyInto, error) {
	c := b.copy
	c.Files = slices.Clone(c.Files)
	c.Options.IncludeMetadata = maps.Clone(c.Options.IncludeMetadata)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
