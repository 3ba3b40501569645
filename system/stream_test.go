package system

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputStream(t *testing.T) {
	t.Run("ReadLine", func(t *testing.T) {
		s := newOutputStream(strings.NewReader("a\r\nb\nc\r"))
		ctx := context.Background()
		for _, expected := range []string{"a", "b", "c"} {
			line, err := s.ReadLine(ctx)
			require.NoError(t, err)
			assert.Equal(t, expected, line)
		}
		_, err := s.ReadLine(ctx)
		assert.Equal(t, io.EOF, err)
	})

	t.Run("ReadAllLines", func(t *testing.T) {
		s := newOutputStream(strings.NewReader("first\n\nlast"))
		lines, err := s.ReadAllLines()
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "", "last"}, lines)
		assert.EqualValues(t, len("first\n\nlast"), s.BytesRead())
	})

	t.Run("ReadAllLines empty", func(t *testing.T) {
		s := newOutputStream(strings.NewReader(""))
		lines, err := s.ReadAllLines()
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("TryReadLine", func(t *testing.T) {
		s := newOutputStream(strings.NewReader("only\n"))
		line, ok := s.TryReadLine(context.Background())
		assert.True(t, ok)
		assert.Equal(t, "only", line)
		_, ok = s.TryReadLine(context.Background())
		assert.False(t, ok)
	})

	t.Run("Read", func(t *testing.T) {
		s := newOutputStream(strings.NewReader("hello world"))
		data, err := io.ReadAll(s)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("Read after ReadLine", func(t *testing.T) {
		s := newOutputStream(strings.NewReader("line\nrest of data"))
		line, err := s.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "line", line)
		data, err := io.ReadAll(s)
		require.NoError(t, err)
		assert.Equal(t, "rest of data", string(data))
	})

	t.Run("CopyTo", func(t *testing.T) {
		input := strings.Repeat("0123456789", 10*1024)
		s := newOutputStream(strings.NewReader(input))
		var out bytes.Buffer
		n, err := s.CopyTo(context.Background(), &out)
		require.NoError(t, err)
		assert.EqualValues(t, len(input), n)
		assert.Equal(t, input, out.String())
	})

	t.Run("CopyToFunc error", func(t *testing.T) {
		s := newOutputStream(strings.NewReader("data"))
		failed := io.ErrShortWrite
		_, err := s.CopyToFunc(context.Background(), func(p []byte) error {
			return failed
		})
		assert.Equal(t, failed, err)
	})

	t.Run("cancelled read keeps data", func(t *testing.T) {
		r, w := io.Pipe()
		defer w.Close()
		s := newOutputStream(r)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := s.ReadLine(ctx)
		assert.Equal(t, context.DeadlineExceeded, err)

		// The background read from the cancelled call consumes this write
		go w.Write([]byte("hello\nworld\n"))

		line, err := s.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hello", line)
		line, err = s.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "world", line)
	})

	t.Run("close interrupts read", func(t *testing.T) {
		r, w := io.Pipe()
		defer w.Close()
		s := newOutputStream(r)

		done := make(chan error, 1)
		go func() {
			_, err := s.Read(make([]byte, 16))
			done <- err
		}()
		time.Sleep(10 * time.Millisecond)
		s.close()
		select {
		case err := <-done:
			assert.Equal(t, ErrStreamClosed, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Read was not interrupted by close")
		}

		_, err := s.ReadLine(context.Background())
		assert.Equal(t, ErrStreamClosed, err)
	})
}

func TestOutputStreamLineSplitting(t *testing.T) {
	cases := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"\r\n", []string{""}},
		{"x\r", []string{"x"}},
		{"a\r\nb\n\r\nc\rd\r\n\n\re\r", []string{"a", "b", "", "c\rd", "", "\re"}},
		{"no newline at end", []string{"no newline at end"}},
		{"\n\n\r\r\n", []string{"", "", "\r"}},
	}
	for _, c := range cases {
		t.Run(strings.ReplaceAll(strings.ReplaceAll(c.input, "\r", "CR"), "\n", "LF"), func(t *testing.T) {
			var lines []string
			s := newOutputStream(iotest.OneByteReader(strings.NewReader(c.input)))
			for {
				line, err := s.ReadLine(context.Background())
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				lines = append(lines, line)
			}

			all, err := newOutputStream(iotest.HalfReader(strings.NewReader(c.input))).ReadAllLines()
			require.NoError(t, err)

			assert.Equal(t, c.expected, lines)
			assert.Equal(t, lines, all)
		})
	}
}
