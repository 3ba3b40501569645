// Package configtest provides declarative tests for config transformations.
package configtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskcluster/procsup/config"
)

// Case is a transformation to apply to Input, expecting either Result or an
// error if Fails is set.
type Case struct {
	Transform string
	Input     map[string]interface{}
	Result    map[string]interface{}
	Fails     bool
}

// Test runs the case as a subtest named name.
func (c Case) Test(t *testing.T, name string) {
	t.Run(name, func(t *testing.T) {
		transform, ok := config.Lookup(c.Transform)
		require.True(t, ok, "unknown transform %s", c.Transform)

		err := transform.Transform(c.Input)
		if c.Fails {
			assert.Error(t, err, "expected Transform(Input) to fail")
			return
		}
		require.NoError(t, err, "Transform(Input) failed")
		assert.Equal(t, c.Result, c.Input, "unexpected result")
	})
}
