package ioext

import (
	"io"
	"sync/atomic"
)

// CountingReader wraps an io.Reader and counts the bytes read through it.
type CountingReader struct {
	r io.Reader
	n atomic.Int64
}

// NewCountingReader returns a CountingReader reading from r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Count returns the number of bytes read so far, safe to call while a Read is
// in progress.
func (c *CountingReader) Count() int64 {
	return c.n.Load()
}
