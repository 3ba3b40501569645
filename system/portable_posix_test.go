//go:build !windows

package system

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortableStrategy(t *testing.T) {
	start := func(t *testing.T, script string, options ProcessOptions) *Process {
		options.Executable = testShell
		options.Arguments = []string{"-c", script}
		p, err := startProcess(portableStrategy{}, options)
		require.NoError(t, err)
		return p
	}

	t.Run("Separate stderr", func(t *testing.T) {
		p := start(t, "echo out; echo err >&2; exit 2", ProcessOptions{})
		defer p.Dispose()
		out, err := p.Stdout().ReadAllLines()
		require.NoError(t, err)
		errs, err := p.Stderr().ReadAllLines()
		require.NoError(t, err)
		assert.Equal(t, []string{"out"}, out)
		assert.Equal(t, []string{"err"}, errs)
		assert.False(t, p.Wait())
		assert.Equal(t, 2, p.ExitCode())
	})

	t.Run("Merged output exactly once", func(t *testing.T) {
		const count = 5000
		script := `i=0; while [ $i -lt 5000 ]; do printf 'abcdefgh\n'; printf 'ABCDEFGH;' >&2; i=$((i+1)); done`
		p := start(t, script, ProcessOptions{
			Flags:  MergeOutput,
			Limits: &Limits{ChunkSize: 16, QueueDepth: 2},
		})
		defer p.Dispose()
		require.Nil(t, p.Stderr())

		data, err := io.ReadAll(p.Stdout())
		require.NoError(t, err)
		require.True(t, p.Wait())

		var out, errs strings.Builder
		for _, b := range data {
			if b == '\n' || (b >= 'a' && b <= 'z') {
				out.WriteByte(b)
			} else {
				errs.WriteByte(b)
			}
		}
		assert.Len(t, data, count*18)
		assert.Equal(t, strings.Repeat("abcdefgh\n", count), out.String())
		assert.Equal(t, strings.Repeat("ABCDEFGH;", count), errs.String())
	})

	t.Run("Dispose with undrained merged output", func(t *testing.T) {
		p := start(t, "while :; do echo out; echo err >&2; done", ProcessOptions{
			Flags:  MergeOutput,
			Limits: &Limits{ChunkSize: 16, QueueDepth: 2},
		})
		p.Dispose()
		<-p.Done()
	})

	t.Run("Sandbox unsupported", func(t *testing.T) {
		_, err := startProcess(portableStrategy{}, ProcessOptions{
			Executable: testShell,
			Sandbox:    &SandboxPolicy{MaxOpenFiles: 64},
		})
		assert.Equal(t, ErrSandboxUnsupported, err)
	})
}
