package system

import (
	"context"
	"io"
	"sync"

	"github.com/taskcluster/procsup/runtime/ioext"
)

const streamReadSize = 32 * 1024

type readResult struct {
	data []byte
	err  error
}

// OutputStream is the stdout or stderr of a Process.
//
// Reads of the underlying pipe happen in the background. Cancelling a read
// through its context only stops waiting, data arriving later is kept for
// the next call. Reads fail with ErrStreamClosed once the Process is disposed.
type OutputStream struct {
	src       *ioext.CountingReader
	m         sync.Mutex
	pending   []byte
	err       error // terminal error from src, io.EOF at end of stream
	inflight  chan readResult
	closed    chan struct{}
	closeOnce sync.Once
}

func newOutputStream(src io.Reader) *OutputStream {
	return &OutputStream{
		src:    ioext.NewCountingReader(src),
		closed: make(chan struct{}),
	}
}

// more appends data from the next read of src to pending. Returns s.err once
// src has failed or reached EOF.
func (s *OutputStream) more(ctx context.Context) error {
	for {
		if s.err != nil {
			return s.err
		}
		if s.inflight == nil {
			c := make(chan readResult, 1)
			s.inflight = c
			go func() {
				buf := make([]byte, streamReadSize)
				n, err := s.src.Read(buf)
				c <- readResult{data: buf[:n], err: err}
			}()
		}
		select {
		case r := <-s.inflight:
			s.inflight = nil
			s.pending = append(s.pending, r.data...)
			s.err = r.err
			if len(r.data) > 0 {
				return nil
			}
		case <-s.closed:
			return ErrStreamClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *OutputStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Read implements io.Reader.
func (s *OutputStream) Read(p []byte) (int, error) {
	return s.ReadContext(context.Background(), p)
}

// ReadContext reads into p, returning ctx.Err() if ctx is done first.
func (s *OutputStream) ReadContext(ctx context.Context, p []byte) (int, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.isClosed() {
		return 0, ErrStreamClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if len(s.pending) == 0 {
		if err := s.more(ctx); err != nil {
			return 0, err
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// ReadLine returns the next line without its terminator, or io.EOF after the
// last line.
func (s *OutputStream) ReadLine(ctx context.Context) (string, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.isClosed() {
		return "", ErrStreamClosed
	}
	for {
		if advance, line, ok := scanLine(s.pending, s.err != nil); ok {
			s.pending = s.pending[advance:]
			return line, nil
		}
		if s.err != nil {
			return "", s.err
		}
		if err := s.more(ctx); err != nil && err != s.err {
			return "", err
		}
	}
}

// TryReadLine returns the next line and true, or false at end of stream,
// on failure or when ctx is done.
func (s *OutputStream) TryReadLine(ctx context.Context) (string, bool) {
	line, err := s.ReadLine(ctx)
	if err != nil {
		if err != io.EOF {
			debug("TryReadLine failed: %s", err)
		}
		return "", false
	}
	return line, true
}

// ReadAllLines reads lines until the end of the stream.
func (s *OutputStream) ReadAllLines() ([]string, error) {
	var lines []string
	for {
		line, err := s.ReadLine(context.Background())
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
}

// CopyTo copies the stream to w until the end of the stream.
func (s *OutputStream) CopyTo(ctx context.Context, w io.Writer) (int64, error) {
	return s.CopyToFunc(ctx, func(p []byte) error {
		_, err := w.Write(p)
		return err
	})
}

// CopyToFunc calls fn with each chunk read until the end of the stream. fn
// must not retain the slice.
func (s *OutputStream) CopyToFunc(ctx context.Context, fn func(p []byte) error) (int64, error) {
	s.m.Lock()
	defer s.m.Unlock()

	var written int64
	for {
		if s.isClosed() {
			return written, ErrStreamClosed
		}
		if len(s.pending) == 0 {
			err := s.more(ctx)
			if err == io.EOF {
				return written, nil
			}
			if err != nil {
				return written, err
			}
		}
		chunk := s.pending
		s.pending = nil
		if err := fn(chunk); err != nil {
			return written, err
		}
		written += int64(len(chunk))
	}
}

// BytesRead returns the number of bytes read from the pipe so far, including
// data not yet consumed.
func (s *OutputStream) BytesRead() int64 {
	return s.src.Count()
}

func (s *OutputStream) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}
