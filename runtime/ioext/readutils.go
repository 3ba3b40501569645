package ioext

import (
	"errors"
	"io"
	"os"
)

// ErrFileTooBig is returned when input exceeds the size limit given.
var ErrFileTooBig = errors.New("ioext: input exceeds size limit")

// BoundedReadAll returns the contents of r, or ErrFileTooBig if r yields more
// than maxBytes.
func BoundedReadAll(r io.Reader, maxBytes int) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: int64(maxBytes) + 1}
	data, err := io.ReadAll(lr)
	switch {
	case err != nil:
		return nil, err
	case lr.N == 0:
		return nil, ErrFileTooBig
	}
	return data, nil
}

// BoundedReadFile is BoundedReadAll on the file filename. A missing file is
// reported as an *os.PathError.
func BoundedReadFile(filename string, maxBytes int) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && info.Size() > int64(maxBytes) {
		return nil, ErrFileTooBig
	}
	return BoundedReadAll(f, maxBytes)
}
