package ddl

import (
	"fmt"
	"maps"
	"strings"

	"github.com/hashicorp/go-multierror"
)

type StreamMode string

const (
	StreamAppendOnly StreamMode = "APPEND_ONLY"
	StreamInsertOnly StreamMode = "INSERT_ONLY"
	StreamDefault    StreamMode = "DEFAULT"
)

type StreamType string

const (
	StreamStandard StreamType = "STANDARD"
	StreamDelta    StreamType = "DELTA"
)

// Stream is a change-tracking stream on a table. A Mode of APPEND_ONLY or
// INSERT_ONLY implies the matching flag. Type is informational only since
// Snowflake derives it from the source object.
type Stream struct {
	Name            string            `yaml:"name" json:"name"`
	Source          string            `yaml:"source" json:"source"`
	Mode            StreamMode        `yaml:"mode,omitempty" json:"mode,omitempty"`
	Type            StreamType        `yaml:"type,omitempty" json:"type,omitempty"`
	InsertOnly      bool              `yaml:"insert_only,omitempty" json:"insert_only,omitempty"`
	ShowInitialRows bool              `yaml:"show_initial_rows,omitempty" json:"show_initial_rows,omitempty"`
	AppendOnly      bool              `yaml:"append_only,omitempty" json:"append_only,omitempty"`
	Comment         string            `yaml:"comment,omitempty" json:"comment,omitempty"`
	Tags            map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`
	OrReplace       bool              `yaml:"or_replace,omitempty" json:"or_replace,omitempty"`
	IfNotExists     bool              `yaml:"if_not_exists,omitempty" json:"if_not_exists,omitempty"`
}

func (s *Stream) Kind() Kind         { return KindStream }
func (s *Stream) ObjectName() string { return s.Name }

func (s *Stream) Validate() error {
	var result *multierror.Error
	if s.Name == "" {
		result = multierror.Append(result, fmt.Errorf("stream: %w", ErrMissingName))
	}
	if s.Source == "" {
		result = multierror.Append(result, missing(KindStream, "source"))
	}
	return result.ErrorOrNil()
}

func (s *Stream) SQL() string {
	var parts clauses
	if s.OrReplace {
		parts.add("CREATE OR REPLACE")
	} else {
		parts.add("CREATE")
	}
	parts.add("STREAM")
	if s.IfNotExists {
		parts.add("IF NOT EXISTS")
	}
	parts.add(s.Name)
	if len(s.Tags) > 0 {
		parts.add("WITH TAG (" + strings.Join(keyValues(s.Tags), ", ") + ")")
	}
	parts.add("ON TABLE " + s.Source)
	if s.AppendOnly || s.Mode == StreamAppendOnly {
		parts.add("APPEND_ONLY = TRUE")
	}
	if s.InsertOnly || s.Mode == StreamInsertOnly {
		parts.add("INSERT_ONLY = TRUE")
	}
	if s.ShowInitialRows {
		parts.add("SHOW_INITIAL_ROWS = TRUE")
	}
	if s.Comment != "" {
		parts.add("COMMENT = " + literal(s.Comment))
	}
	return parts.join(" ")
}

type StreamBuilder struct {
	stream Stream
}

func NewStream(name string) *StreamBuilder {
	return &StreamBuilder{stream: Stream{Name: name}}
}

func (b *StreamBuilder) WithSource(source string) *StreamBuilder {
	b.stream.Source = source
	return b
}

func (b *StreamBuilder) WithMode(mode StreamMode) *StreamBuilder {
	b.stream.Mode = mode
	return b
}

func (b *StreamBuilder) WithType(streamType StreamType) *StreamBuilder {
	b.stream.Type = streamType
	return b
}

func (b *StreamBuilder) WithInsertOnly(insertOnly bool) *StreamBuilder {
	b.stream.InsertOnly = insertOnly
	return b
}

func (b *StreamBuilder) WithShowInitialRows(show bool) *StreamBuilder {
	b.stream.ShowInitialRows = show
	return b
}

func (b *StreamBuilder) WithAppendOnly(appendOnly bool) *StreamBuilder {
	b.stream.AppendOnly = appendOnly
	return b
}

func (b *StreamBuilder) WithComment(comment string) *StreamBuilder {
	b.stream.Comment = comment
	return b
}

func (b *StreamBuilder) WithTags(tags map[string]string) *StreamBuilder {
	b.stream.Tags = tags
	return b
}

func (b *StreamBuilder) WithCreateOrReplace() *StreamBuilder {
	b.stream.OrReplace = true
	return b
}

func (b *StreamBuilder) WithCreateIfNotExists() *StreamBuilder {
	b.stream.IfNotExists = true
	return b
}

func (b *StreamBuilder) Build() (*Stream, error) {
	s := b.stream
	s.Tags = maps.Clone(s.Tags)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
