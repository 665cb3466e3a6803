package ddl

import (
	"fmt"
	"sort"
	"strings"
)

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`, `"`, `""`)

// EscapeString escapes backslashes and both quote characters for use inside
// a SQL string literal.
func EscapeString(value string) string {
	return stringEscaper.Replace(value)
}

// QuoteString escapes value and wraps it in single quotes.
func QuoteString(value string) string {
	return "'" + EscapeString(value) + "'"
}

// FormatBool renders TRUE or FALSE.
func FormatBool(value bool) string {
	if value {
		return "TRUE"
	}
	return "FALSE"
}

// FormatList renders ('a', 'b', ...) with every element quoted.
func FormatList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = QuoteString(v)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// FormatValue renders a Go value as a SQL literal.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		return FormatBool(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	case string:
		return QuoteString(v)
	default:
		return QuoteString(fmt.Sprint(v))
	}
}

// FormatMap renders ('k' = v, ...) in key order.
func FormatMap(values map[string]interface{}) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = QuoteString(k) + " = " + FormatValue(values[k])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// EscapeComment escapes single quotes with a backslash. Double quotes are
// left untouched.
func EscapeComment(value string) string {
	return strings.ReplaceAll(value, "'", `\'`)
}

// QuoteComment escapes and quotes a comment string.
func QuoteComment(value string) string {
	return "'" + EscapeComment(value) + "'"
}

// literal quotes value doubling embedded single quotes. Object comments are
// rendered this way.
func literal(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// keyValues renders k = 'v' pairs in key order.
func keyValues(m map[string]string) []string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s = '%s'", k, m[k]))
	}
	return parts
}

// clauses accumulates the pieces of a statement.
type clauses []string

func (c *clauses) add(parts ...string) {
	*c = append(*c, parts...)
}

func (c *clauses) addf(format string, args ...interface{}) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

func (c clauses) join(sep string) string {
	return strings.Join(c, sep)
}
