package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanLine(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		atEOF   bool
		advance int
		line    string
		ok      bool
	}{
		{"newline", "hello\nworld", false, 6, "hello", true},
		{"crlf", "hello\r\nworld", false, 7, "hello", true},
		{"empty line", "\nx", false, 1, "", true},
		{"partial", "hello", false, 0, "", false},
		{"partial at eof", "hello", true, 5, "hello", true},
		{"cr kept until eof", "hello\r", false, 0, "", false},
		{"cr dropped at eof", "hello\r", true, 6, "hello", true},
		{"cr inside line", "a\rb\n", false, 4, "a\rb", true},
		{"nothing at eof", "", true, 0, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			advance, line, ok := scanLine([]byte(c.data), c.atEOF)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.advance, advance)
			assert.Equal(t, c.line, line)
		})
	}
}
