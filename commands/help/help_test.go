package help

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.True(t, printHelp(&stdout, &stderr, ""))
	assert.Contains(t, stdout.String(), "help")
	assert.Empty(t, stderr.String())

	stdout.Reset()
	assert.True(t, printHelp(&stdout, &stderr, "help"))
	assert.Contains(t, stdout.String(), "usage: procsup help [<command>]")

	stdout.Reset()
	assert.False(t, printHelp(&stdout, &stderr, "no-such-command"))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), `no such command "no-such-command"`)
}
