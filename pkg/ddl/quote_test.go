package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"plain", "plain"},
		{"it's", "it''s"},
		{`say "hi"`, `say ""hi""`},
		{`C:\temp`, `C:\\temp`},
		{`\'`, `\\''`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, EscapeString(tt.in), tt.in)
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "'O''Brien'", QuoteString("O'Brien"))
	assert.Equal(t, "TRUE", FormatBool(true))
	assert.Equal(t, "FALSE", FormatBool(false))
	assert.Equal(t, "('a', 'b''c')", FormatList([]string{"a", "b'c"}))
	assert.Equal(t, "()", FormatList(nil))

	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, "TRUE", FormatValue(true))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "'x'", FormatValue("x"))

	assert.Equal(t, "('a' = 1, 'b' = 'two', 'c' = NULL)", FormatMap(map[string]interface{}{
		"c": nil,
		"a": 1,
		"b": "two",
	}))
}

func TestComments(t *testing.T) {
	assert.Equal(t, `it\'s "fine"`, EscapeComment(`it's "fine"`))
	assert.Equal(t, `'it\'s'`, QuoteComment("it's"))
}
