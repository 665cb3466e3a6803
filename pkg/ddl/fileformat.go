package ddl

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type CompressionType string

const (
	CompressionAuto       CompressionType = "AUTO"
	CompressionNone       CompressionType = "NONE"
	CompressionGzip       CompressionType = "GZIP"
	CompressionBrotli     CompressionType = "BROTLI"
	CompressionZstd       CompressionType = "ZSTD"
	CompressionDeflate    CompressionType = "DEFLATE"
	CompressionRawDeflate CompressionType = "RAWDEFLATE"
	CompressionBZ2        CompressionType = "BZ2"
	CompressionLZO        CompressionType = "LZO"
	CompressionSnappy     CompressionType = "SNAPPY"
)

type BinaryFormat string

const (
	BinaryHex    BinaryFormat = "HEX"
	BinaryBase64 BinaryFormat = "BASE64"
	BinaryUTF8   BinaryFormat = "UTF8"
)

type FormatType string

const (
	FormatCSV     FormatType = "CSV"
	FormatJSON    FormatType = "JSON"
	FormatAvro    FormatType = "AVRO"
	FormatParquet FormatType = "PARQUET"
	FormatXML     FormatType = "XML"
	FormatORC     FormatType = "ORC"
)

// FormatOptions renders the TYPE = ... clause of a file format.
type FormatOptions interface {
	FormatType() FormatType
	SQL() string
}

// optionWriter renders the option clauses shared by every format type.
type optionWriter struct {
	clauses
}

func (w *optionWriter) boolean(name string, v *bool) {
	if v != nil {
		w.add(name + " = " + FormatBool(*v))
	}
}

func (w *optionWriter) quoted(name, v string) {
	if v != "" {
		w.addf("%s = '%s'", name, v)
	}
}

func (w *optionWriter) bare(name, v string) {
	if v != "" {
		w.addf("%s = %s", name, v)
	}
}

func (w *optionWriter) nullIf(values []string) {
	if len(values) == 0 {
		return
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	w.add("NULL_IF = (" + strings.Join(quoted, ", ") + ")")
}

type CSVOptions struct {
	Compression                CompressionType `yaml:"compression,omitempty" json:"compression,omitempty"`
	RecordDelimiter            string          `yaml:"record_delimiter,omitempty" json:"record_delimiter,omitempty"`
	FieldDelimiter             string          `yaml:"field_delimiter,omitempty" json:"field_delimiter,omitempty"`
	FileExtension              string          `yaml:"file_extension,omitempty" json:"file_extension,omitempty"`
	ParseHeader                *bool           `yaml:"parse_header,omitempty" json:"parse_header,omitempty"`
	SkipHeader                 *int            `yaml:"skip_header,omitempty" json:"skip_header,omitempty"`
	SkipBlankLines             *bool           `yaml:"skip_blank_lines,omitempty" json:"skip_blank_lines,omitempty"`
	DateFormat                 string          `yaml:"date_format,omitempty" json:"date_format,omitempty"`
	TimeFormat                 string          `yaml:"time_format,omitempty" json:"time_format,omitempty"`
	TimestampFormat            string          `yaml:"timestamp_format,omitempty" json:"timestamp_format,omitempty"`
	BinaryFormat               BinaryFormat    `yaml:"binary_format,omitempty" json:"binary_format,omitempty"`
	Escape                     string          `yaml:"escape,omitempty" json:"escape,omitempty"`
	EscapeUnenclosedField      string          `yaml:"escape_unenclosed_field,omitempty" json:"escape_unenclosed_field,omitempty"`
	TrimSpace                  *bool           `yaml:"trim_space,omitempty" json:"trim_space,omitempty"`
	FieldOptionallyEnclosedBy  string          `yaml:"field_optionally_enclosed_by,omitempty" json:"field_optionally_enclosed_by,omitempty"`
	NullIf                     []string        `yaml:"null_if,omitempty" json:"null_if,omitempty"`
	ErrorOnColumnCountMismatch *bool           `yaml:"error_on_column_count_mismatch,omitempty" json:"error_on_column_count_mismatch,omitempty"`
	ReplaceInvalidCharacters   *bool           `yaml:"replace_invalid_characters,omitempty" json:"replace_invalid_characters,omitempty"`
	EmptyFieldAsNull           *bool           `yaml:"empty_field_as_null,omitempty" json:"empty_field_as_null,omitempty"`
	SkipByteOrderMark          *bool           `yaml:"skip_byte_order_mark,omitempty" json:"skip_byte_order_mark,omitempty"`
	Encoding                   string          `yaml:"encoding,omitempty" json:"encoding,omitempty"`
}

func NewCSVOptions() *CSVOptions { return &CSVOptions{} }

func (o *CSVOptions) FormatType() FormatType { return FormatCSV }

func (o *CSVOptions) WithCompression(c CompressionType) *CSVOptions { o.Compression = c; return o }
func (o *CSVOptions) WithRecordDelimiter(d string) *CSVOptions     { o.RecordDelimiter = d; return o }
func (o *CSVOptions) WithFieldDelimiter(d string) *CSVOptions      { o.FieldDelimiter = d; return o }
func (o *CSVOptions) WithFileExtension(ext string) *CSVOptions     { o.FileExtension = ext; return o }
func (o *CSVOptions) WithParseHeader(v bool) *CSVOptions           { o.ParseHeader = &v; return o }
func (o *CSVOptions) WithSkipHeader(n int) *CSVOptions             { o.SkipHeader = &n; return o }
func (o *CSVOptions) WithSkipBlankLines(v bool) *CSVOptions        { o.SkipBlankLines = &v; return o }
func (o *CSVOptions) WithDateFormat(f string) *CSVOptions          { o.DateFormat = f; return o }
func (o *CSVOptions) WithTimeFormat(f string) *CSVOptions          { o.TimeFormat = f; return o }
func (o *CSVOptions) WithTimestampFormat(f string) *CSVOptions     { o.TimestampFormat = f; return o }
func (o *CSVOptions) WithBinaryFormat(f BinaryFormat) *CSVOptions  { o.BinaryFormat = f; return o }
func (o *CSVOptions) WithEscape(e string) *CSVOptions              { o.Escape = e; return o }
func (o *CSVOptions) WithEscapeUnenclosedField(e string) *CSVOptions {
	o.EscapeUnenclosedField = e
	return o
}
func (o *CSVOptions) WithTrimSpace(v bool) *CSVOptions { o.TrimSpace = &v; return o }
func (o *CSVOptions) WithFieldOptionallyEnclosedBy(c string) *CSVOptions {
	o.FieldOptionallyEnclosedBy = c
	return o
}
func (o *CSVOptions) WithNullIf(values ...string) *CSVOptions { o.NullIf = values; return o }
func (o *CSVOptions) WithErrorOnColumnCountMismatch(v bool) *CSVOptions {
	o.ErrorOnColumnCountMismatch = &v
	return o
}
func (o *CSVOptions) WithReplaceInvalidCharacters(v bool) *CSVOptions {
	o.ReplaceInvalidCharacters = &v
	return o
}
func (o *CSVOptions) WithEmptyFieldAsNull(v bool) *CSVOptions  { o.EmptyFieldAsNull = &v; return o }
func (o *CSVOptions) WithSkipByteOrderMark(v bool) *CSVOptions { o.SkipByteOrderMark = &v; return o }
func (o *CSVOptions) WithEncoding(e string) *CSVOptions        { o.Encoding = e; return o }

func (o *CSVOptions) SQL() string {
	w := optionWriter{clauses{"TYPE = CSV"}}
	w.bare("COMPRESSION", string(o.Compression))
	w.quoted("RECORD_DELIMITER", o.RecordDelimiter)
	w.quoted("FIELD_DELIMITER", o.FieldDelimiter)
	w.quoted("FILE_EXTENSION", o.FileExtension)
	w.boolean("PARSE_HEADER", o.ParseHeader)
	if o.SkipHeader != nil {
		w.addf("SKIP_HEADER = %d", *o.SkipHeader)
	}
	w.boolean("SKIP_BLANK_LINES", o.SkipBlankLines)
	w.quoted("DATE_FORMAT", o.DateFormat)
	w.quoted("TIME_FORMAT", o.TimeFormat)
	w.quoted("TIMESTAMP_FORMAT", o.TimestampFormat)
	w.bare("BINARY_FORMAT", string(o.BinaryFormat))
	w.quoted("ESCAPE", o.Escape)
	w.quoted("ESCAPE_UNENCLOSED_FIELD", o.EscapeUnenclosedField)
	w.boolean("TRIM_SPACE", o.TrimSpace)
	w.quoted("FIELD_OPTIONALLY_ENCLOSED_BY", o.FieldOptionallyEnclosedBy)
	w.nullIf(o.NullIf)
	w.boolean("ERROR_ON_COLUMN_COUNT_MISMATCH", o.ErrorOnColumnCountMismatch)
	w.boolean("REPLACE_INVALID_CHARACTERS", o.ReplaceInvalidCharacters)
	w.boolean("EMPTY_FIELD_AS_NULL", o.EmptyFieldAsNull)
	w.boolean("SKIP_BYTE_ORDER_MARK", o.SkipByteOrderMark)
	w.quoted("ENCODING", o.Encoding)
	return w.join(" ")
}

type JSONOptions struct {
	Compression              CompressionType `yaml:"compression,omitempty" json:"compression,omitempty"`
	DateFormat               string          `yaml:"date_format,omitempty" json:"date_format,omitempty"`
	TimeFormat               string          `yaml:"time_format,omitempty" json:"time_format,omitempty"`
	TimestampFormat          string          `yaml:"timestamp_format,omitempty" json:"timestamp_format,omitempty"`
	BinaryFormat             BinaryFormat    `yaml:"binary_format,omitempty" json:"binary_format,omitempty"`
	TrimSpace                *bool           `yaml:"trim_space,omitempty" json:"trim_space,omitempty"`
	NullIf                   []string        `yaml:"null_if,omitempty" json:"null_if,omitempty"`
	FileExtension            string          `yaml:"file_extension,omitempty" json:"file_extension,omitempty"`
	EnableOctal              *bool           `yaml:"enable_octal,omitempty" json:"enable_octal,omitempty"`
	AllowDuplicate           *bool           `yaml:"allow_duplicate,omitempty" json:"allow_duplicate,omitempty"`
	StripOuterArray          *bool           `yaml:"strip_outer_array,omitempty" json:"strip_outer_array,omitempty"`
	StripNullValues          *bool           `yaml:"strip_null_values,omitempty" json:"strip_null_values,omitempty"`
	ReplaceInvalidCharacters *bool           `yaml:"replace_invalid_characters,omitempty" json:"replace_invalid_characters,omitempty"`
	IgnoreUTF8Errors         *bool           `yaml:"ignore_utf8_errors,omitempty" json:"ignore_utf8_errors,omitempty"`
	SkipByteOrderMark        *bool           `yaml:"skip_byte_order_mark,omitempty" json:"skip_byte_order_mark,omitempty"`
}

func NewJSONOptions() *JSONOptions { return &JSONOptions{} }

func (o *JSONOptions) FormatType() FormatType { return FormatJSON }

func (o *JSONOptions) WithCompression(c CompressionType) *JSONOptions { o.Compression = c; return o }
func (o *JSONOptions) WithDateFormat(f string) *JSONOptions          { o.DateFormat = f; return o }
func (o *JSONOptions) WithTimeFormat(f string) *JSONOptions          { o.TimeFormat = f; return o }
func (o *JSONOptions) WithTimestampFormat(f string) *JSONOptions     { o.TimestampFormat = f; return o }
func (o *JSONOptions) WithBinaryFormat(f BinaryFormat) *JSONOptions  { o.BinaryFormat = f; return o }
func (o *JSONOptions) WithTrimSpace(v bool) *JSONOptions             { o.TrimSpace = &v; return o }
func (o *JSONOptions) WithNullIf(values ...string) *JSONOptions      { o.NullIf = values; return o }
func (o *JSONOptions) WithFileExtension(ext string) *JSONOptions     { o.FileExtension = ext; return o }
func (o *JSONOptions) WithEnableOctal(v bool) *JSONOptions           { o.EnableOctal = &v; return o }
func (o *JSONOptions) WithAllowDuplicate(v bool) *JSONOptions        { o.AllowDuplicate = &v; return o }
func (o *JSONOptions) WithStripOuterArray(v bool) *JSONOptions       { o.StripOuterArray = &v; return o }
func (o *JSONOptions) WithStripNullValues(v bool) *JSONOptions       { o.StripNullValues = &v; return o }
func (o *JSONOptions) WithReplaceInvalidCharacters(v bool) *JSONOptions {
	o.ReplaceInvalidCharacters = &v
	return o
}
func (o *JSONOptions) WithIgnoreUTF8Errors(v bool) *JSONOptions  { o.IgnoreUTF8Errors = &v; return o }
func (o *JSONOptions) WithSkipByteOrderMark(v bool) *JSONOptions { o.SkipByteOrderMark = &v; return o }

func (o *JSONOptions) SQL() string {
	w := optionWriter{clauses{"TYPE = JSON"}}
	w.bare("COMPRESSION", string(o.Compression))
	w.quoted("DATE_FORMAT", o.DateFormat)
	w.quoted("TIME_FORMAT", o.TimeFormat)
	w.quoted("TIMESTAMP_FORMAT", o.TimestampFormat)
	w.bare("BINARY_FORMAT", string(o.BinaryFormat))
	w.boolean("TRIM_SPACE", o.TrimSpace)
	w.boolean("ENABLE_OCTAL", o.EnableOctal)
	w.boolean("ALLOW_DUPLICATE", o.AllowDuplicate)
	w.boolean("STRIP_OUTER_ARRAY", o.StripOuterArray)
	w.boolean("STRIP_NULL_VALUES", o.StripNullValues)
	w.boolean("REPLACE_INVALID_CHARACTERS", o.ReplaceInvalidCharacters)
	w.boolean("IGNORE_UTF8_ERRORS", o.IgnoreUTF8Errors)
	w.boolean("SKIP_BYTE_ORDER_MARK", o.SkipByteOrderMark)
	w.quoted("FILE_EXTENSION", o.FileExtension)
	w.nullIf(o.NullIf)
	return w.join(" ")
}

type AvroOptions struct {
	Compression              CompressionType `yaml:"compression,omitempty" json:"compression,omitempty"`
	TrimSpace                *bool           `yaml:"trim_space,omitempty" json:"trim_space,omitempty"`
	ReplaceInvalidCharacters *bool           `yaml:"replace_invalid_characters,omitempty" json:"replace_invalid_characters,omitempty"`
	NullIf                   []string        `yaml:"null_if,omitempty" json:"null_if,omitempty"`
}

func (o *AvroOptions) FormatType() FormatType { return FormatAvro }

func (o *AvroOptions) SQL() string {
	w := optionWriter{clauses{"TYPE = AVRO"}}
	w.bare("COMPRESSION", string(o.Compression))
	w.boolean("TRIM_SPACE", o.TrimSpace)
	w.boolean("REPLACE_INVALID_CHARACTERS", o.ReplaceInvalidCharacters)
	w.nullIf(o.NullIf)
	return w.join(" ")
}

type ParquetOptions struct {
	Compression              CompressionType `yaml:"compression,omitempty" json:"compression,omitempty"`
	BinaryAsText             *bool           `yaml:"binary_as_text,omitempty" json:"binary_as_text,omitempty"`
	UseLogicalType           *bool           `yaml:"use_logical_type,omitempty" json:"use_logical_type,omitempty"`
	TrimSpace                *bool           `yaml:"trim_space,omitempty" json:"trim_space,omitempty"`
	ReplaceInvalidCharacters *bool           `yaml:"replace_invalid_characters,omitempty" json:"replace_invalid_characters,omitempty"`
	NullIf                   []string        `yaml:"null_if,omitempty" json:"null_if,omitempty"`
	UseVectorizedScanner     *bool           `yaml:"use_vectorized_scanner,omitempty" json:"use_vectorized_scanner,omitempty"`
}

func (o *ParquetOptions) FormatType() FormatType { return FormatParquet }

func (o *ParquetOptions) SQL() string {
	w := optionWriter{clauses{"TYPE = PARQUET"}}
	w.bare("COMPRESSION", string(o.Compression))
	w.boolean("BINARY_AS_TEXT", o.BinaryAsText)
	w.boolean("USE_LOGICAL_TYPE", o.UseLogicalType)
	w.boolean("TRIM_SPACE", o.TrimSpace)
	w.boolean("REPLACE_INVALID_CHARACTERS", o.ReplaceInvalidCharacters)
	w.nullIf(o.NullIf)
	w.boolean("USE_VECTORIZED_SCANNER", o.UseVectorizedScanner)
	return w.join(" ")
}

type XMLOptions struct {
	Compression              CompressionType `yaml:"compression,omitempty" json:"compression,omitempty"`
	IgnoreUTF8Errors         *bool           `yaml:"ignore_utf8_errors,omitempty" json:"ignore_utf8_errors,omitempty"`
	PreserveSpace            *bool           `yaml:"preserve_space,omitempty" json:"preserve_space,omitempty"`
	StripOuterElement        *bool           `yaml:"strip_outer_element,omitempty" json:"strip_outer_element,omitempty"`
	DisableSnowflakeData     *bool           `yaml:"disable_snowflake_data,omitempty" json:"disable_snowflake_data,omitempty"`
	DisableAutoConvert       *bool           `yaml:"disable_auto_convert,omitempty" json:"disable_auto_convert,omitempty"`
	ReplaceInvalidCharacters *bool           `yaml:"replace_invalid_characters,omitempty" json:"replace_invalid_characters,omitempty"`
	SkipByteOrderMark        *bool           `yaml:"skip_byte_order_mark,omitempty" json:"skip_byte_order_mark,omitempty"`
}

func (o *XMLOptions) FormatType() FormatType { return FormatXML }

func (o *XMLOptions) SQL() string {
	w := optionWriter{clauses{"TYPE = XML"}}
	w.bare("COMPRESSION", string(o.Compression))
	w.boolean("IGNORE_UTF8_ERRORS", o.IgnoreUTF8Errors)
	w.boolean("PRESERVE_SPACE", o.PreserveSpace)
	w.boolean("STRIP_OUTER_ELEMENT", o.StripOuterElement)
	w.boolean("DISABLE_SNOWFLAKE_DATA", o.DisableSnowflakeData)
	w.boolean("DISABLE_AUTO_CONVERT", o.DisableAutoConvert)
	w.boolean("REPLACE_INVALID_CHARACTERS", o.ReplaceInvalidCharacters)
	w.boolean("SKIP_BYTE_ORDER_MARK", o.SkipByteOrderMark)
	return w.join(" ")
}

type ORCOptions struct {
	TrimSpace                *bool    `yaml:"trim_space,omitempty" json:"trim_space,omitempty"`
	ReplaceInvalidCharacters *bool    `yaml:"replace_invalid_characters,omitempty" json:"replace_invalid_characters,omitempty"`
	NullIf                   []string `yaml:"null_if,omitempty" json:"null_if,omitempty"`
}

func (o *ORCOptions) FormatType() FormatType { return FormatORC }

func (o *ORCOptions) SQL() string {
	w := optionWriter{clauses{"TYPE = ORC"}}
	w.boolean("TRIM_SPACE", o.TrimSpace)
	w.boolean("REPLACE_INVALID_CHARACTERS", o.ReplaceInvalidCharacters)
	w.nullIf(o.NullIf)
	return w.join(" ")
}

// Options wraps a FormatOptions so it can be decoded from YAML. The
// mapping's "type" key selects the concrete options struct.
type Options struct {
	FormatOptions
}

func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&head); err != nil {
		return err
	}

	var opts FormatOptions
	switch FormatType(strings.ToUpper(head.Type)) {
	case FormatCSV:
		opts = &CSVOptions{}
	case FormatJSON:
		opts = &JSONOptions{}
	case FormatAvro:
		opts = &AvroOptions{}
	case FormatParquet:
		opts = &ParquetOptions{}
	case FormatXML:
		opts = &XMLOptions{}
	case FormatORC:
		opts = &ORCOptions{}
	default:
		return fmt.Errorf("line %d: unknown file format type %q", value.Line, head.Type)
	}

	// The type key is not a field of the options structs.
	stripped := *value
	stripped.Content = nil
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "type" {
			continue
		}
		stripped.Content = append(stripped.Content, value.Content[i], value.Content[i+1])
	}
	if err := stripped.Decode(opts); err != nil {
		return err
	}
	o.FormatOptions = opts
	return nil
}

func (o Options) MarshalYAML() (interface{}, error) {
	if o.FormatOptions == nil {
		return nil, nil
	}
	node := &yaml.Node{}
	if err := node.Encode(o.FormatOptions); err != nil {
		return nil, err
	}
	typeKey := &yaml.Node{Kind: yaml.ScalarNode, Value: "type"}
	typeValue := &yaml.Node{Kind: yaml.ScalarNode, Value: strings.ToLower(string(o.FormatType()))}
	node.Content = append([]*yaml.Node{typeKey, typeValue}, node.Content...)
	return node, nil
}

// FileFormatSpec references a named file format or carries inline options.
type FileFormatSpec struct {
	Name    string
	Options FormatOptions
}

func NamedFormat(name string) *FileFormatSpec {
	return &FileFormatSpec{Name: name}
}

func InlineFormat(options FormatOptions) *FileFormatSpec {
	return &FileFormatSpec{Options: options}
}

// InlineFileFormat uses the options of an existing file format definition.
func InlineFileFormat(ff *FileFormat) *FileFormatSpec {
	return &FileFormatSpec{Options: ff.Options.FormatOptions}
}

func (s *FileFormatSpec) SQL() string {
	if s.Name != "" {
		return fmt.Sprintf("FORMAT_NAME = '%s'", s.Name)
	}
	if s.Options != nil {
		return s.Options.SQL()
	}
	return ""
}

// UnmarshalYAML accepts a scalar format name or an inline options mapping.
func (s *FileFormatSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Name = value.Value
		return nil
	}
	var opts Options
	if err := value.Decode(&opts); err != nil {
		return err
	}
	s.Options = opts.FormatOptions
	return nil
}

func (s FileFormatSpec) MarshalYAML() (interface{}, error) {
	if s.Name != "" {
		return s.Name, nil
	}
	return Options{s.Options}, nil
}

type FileFormat struct {
	Name        string  `yaml:"name" json:"name"`
	Temporary   bool    `yaml:"temporary,omitempty" json:"temporary,omitempty"`
	Volatile    bool    `yaml:"volatile,omitempty" json:"volatile,omitempty"`
	Options     Options `yaml:"options,omitempty" json:"options,omitempty"`
	Comment     string  `yaml:"comment,omitempty" json:"comment,omitempty"`
	OrReplace   bool    `yaml:"or_replace,omitempty" json:"or_replace,omitempty"`
	IfNotExists bool    `yaml:"if_not_exists,omitempty" json:"if_not_exists,omitempty"`
}

func (f *FileFormat) Kind() Kind         { return KindFileFormat }
func (f *FileFormat) ObjectName() string { return f.Name }

func (f *FileFormat) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("file format: %w", ErrMissingName)
	}
	return nil
}

func (f *FileFormat) SQL() string {
	var parts clauses
	if f.OrReplace {
		parts.add("CREATE OR REPLACE")
	} else {
		parts.add("CREATE")
	}
	if f.Temporary {
		parts.add("TEMPORARY")
	} else if f.Volatile {
		parts.add("VOLATILE")
	}
	parts.add("FILE FORMAT")
	if f.IfNotExists {
		parts.add("IF NOT EXISTS")
	}
	parts.add(f.Name)
	if f.Options.FormatOptions != nil {
		parts.add(f.Options.SQL())
	}
	if f.Comment != "" {
		parts.add("COMMENT = " + literal(f.Comment))
	}
	return parts.join(" ")
}

type FileFormatBuilder struct {
	format FileFormat
}

func NewFileFormat(name string) *FileFormatBuilder {
	return &FileFormatBuilder{format: FileFormat{Name: name}}
}

func (b *FileFormatBuilder) WithCreateOrReplace() *FileFormatBuilder {
	b.format.OrReplace = true
	return b
}

func (b *FileFormatBuilder) WithCreateIfNotExists() *FileFormatBuilder {
	b.format.IfNotExists = true
	return b
}

func (b *FileFormatBuilder) WithTemporary() *FileFormatBuilder {
	b.format.Temporary = true
	return b
}

func (b *FileFormatBuilder) WithVolatile() *FileFormatBuilder {
	b.format.Volatile = true
	return b
}

func (b *FileFormatBuilder) WithOptions(options FormatOptions) *FileFormatBuilder {
	b.format.Options = Options{options}
	return b
}

func (b *FileFormatBuilder) WithComment(comment string) *FileFormatBuilder {
	b.format.Comment = comment
	return b
}

func (b *FileFormatBuilder) Build() (*FileFormat, error) {
	f := b.format
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
