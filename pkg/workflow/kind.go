package workflow

import "github.com/snowforge/snowforge/pkg/ddl"

// Kind is the statement kind carried by an item's YAML tag.
type Kind = ddl.Kind

// ParseKind converts a kind name such as "copy_into" into a Kind.
func ParseKind(name string) (Kind, error) {
	return ddl.KindString(name)
}

// KindForTag resolves a YAML tag such as "!stage" to its Kind.
func KindForTag(tag string) (Kind, bool) {
	for _, kind := range ddl.KindValues() {
		if kind.Tag() == tag {
			return kind, true
		}
	}
	return 0, false
}
