package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testCommand struct{ summary string }

func (c testCommand) Summary() string { return c.summary }
func (testCommand) Usage() string { return "usage: procsup test-cmd" }
func (testCommand) Execute(map[string]interface{}) bool { return true }

func TestRegister(t *testing.T) {
	Register("test-cmd", testCommand{"Command used in tests"})
	assert.NotNil(t, Lookup("test-cmd"))
	assert.Nil(t, Lookup("missing-cmd"))
	assert.Contains(t, Names(), "test-cmd")
	assert.Contains(t, Usage(), "test-cmd Command used in tests")

	assert.Panics(t, func() {
		Register("test-cmd", testCommand{})
	})
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abcd", pad("abcd", 2))
}
