package ioext

import (
	"io"
	"sync"
)

const copyBufferSize = 32 * 1024

var copyBuffers = sync.Pool{
	New: func() interface{} {
		b := make([]byte, copyBufferSize)
		return &b
	},
}

// Copy from src to dst returning bytes written, write error werr and read
// error rerr. This is similar to io.Copy except callers can tell a sink
// that stopped accepting data apart from a source that broke.
func Copy(dst io.Writer, src io.Reader) (written int64, werr, rerr error) {
	bp := copyBuffers.Get().(*[]byte)
	defer copyBuffers.Put(bp)
	b := *bp

	for {
		nr, er := src.Read(b)
		if nr > 0 {
			nw, ew := dst.Write(b[:nr])
			written += int64(nw)
			if ew != nil {
				return written, ew, nil
			}
			if nw != nr {
				return written, io.ErrShortWrite, nil
			}
		}
		if er == io.EOF {
			return written, nil, nil
		}
		if er != nil {
			return written, nil, er
		}
	}
}

// CopyAndClose copies from r to w and closes w regardless of errors. Returns
// the number of bytes copied and the first error encountered.
func CopyAndClose(w io.WriteCloser, r io.Reader) (int64, error) {
	n, werr, rerr := Copy(w, r)
	cerr := w.Close()
	switch {
	case werr != nil:
		return n, werr
	case rerr != nil:
		return n, rerr
	default:
		return n, cerr
	}
}
