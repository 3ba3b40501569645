package ioext

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingReader(t *testing.T) {
	r := NewCountingReader(strings.NewReader("hello world"))
	n, err := r.Read(make([]byte, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.EqualValues(t, 5, r.Count())

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, " world", string(rest))
	assert.EqualValues(t, 11, r.Count())
}
