package workflow

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/snowforge/snowforge/pkg/ddl"
)

// Statements is the ordered content of a workflow file.
type Statements []ddl.Statement

func (s *Statements) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: workflow must be a sequence of tagged statements", value.Line)
	}

	statements := make(Statements, 0, len(value.Content))
	for _, node := range value.Content {
		kind, ok := KindForTag(node.Tag)
		if !ok {
			return fmt.Errorf("line %d: unknown statement tag %q", node.Line, node.Tag)
		}
		statement, err := decodeStatement(kind, node)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", node.Line, kind.Tag(), err)
		}
		statements = append(statements, statement)
	}

	*s = statements
	return nil
}

func decodeStatement(kind Kind, node *yaml.Node) (ddl.Statement, error) {
	var statement ddl.Statement
	switch kind {
	case ddl.KindTable:
		statement = &ddl.Table{}
	case ddl.KindStage:
		statement = &ddl.Stage{}
	case ddl.KindFileFormat:
		statement = &ddl.FileFormat{}
	case ddl.KindStream:
		statement = &ddl.Stream{}
	case ddl.KindTask:
		statement = &ddl.Task{}
	case ddl.KindPut:
		statement = &ddl.Put{}
	case ddl.KindCopyInto:
		statement = &ddl.CopyInto{}
	case ddl.KindSQL:
		// `- !sql SELECT 1` is shorthand for an unnamed statement
		if node.Kind == yaml.ScalarNode {
			return &ddl.RawSQL{Text: node.Value}, nil
		}
		statement = &ddl.RawSQL{}
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
	if err := node.Decode(statement); err != nil {
		return nil, err
	}
	return statement, nil
}

func (s Statements) MarshalYAML() (interface{}, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, statement := range s {
		node, err := marshalWithTag(statement)
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, node)
	}
	return seq, nil
}

func marshalWithTag(statement ddl.Statement) (*yaml.Node, error) {
	if raw, ok := statement.(*ddl.RawSQL); ok && raw.Name == "" {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   ddl.KindSQL.Tag(),
			Style: yaml.TaggedStyle,
			Value: raw.Text,
		}, nil
	}

	node := &yaml.Node{}
	if err := node.Encode(statement); err != nil {
		return nil, err
	}
	node.Tag = statement.Kind().Tag()
	node.Style = yaml.TaggedStyle
	return node, nil
}

// Build validates every statement and returns them as a plain slice. The
// error reports each invalid item with its position in the file.
func (s Statements) Build() ([]ddl.Statement, error) {
	var result *multierror.Error
	for i, statement := range s {
		if err := statement.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("statement %d (%s %s): %w",
				i+1, statement.Kind(), statement.ObjectName(), err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return append([]ddl.Statement(nil), s...), nil
}
