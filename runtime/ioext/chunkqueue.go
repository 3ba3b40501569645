package ioext

import (
	"errors"
	"io"
	"sync"

	"gopkg.in/djherbis/buffer.v1"
)

// ErrQueueClosed is returned from ChunkQueue reads and producer writes once
// the reading side has been closed.
var ErrQueueClosed = errors.New("chunk queue has been closed")

// ChunkQueue joins the output of multiple producers into a single
// io.Reader. Producers copy their writes into fixed-size chunks taken from a
// buffer pool and enqueue them on a bounded channel; the reader drains one
// chunk at a time and returns it to the pool once it is fully consumed.
//
// Bytes written by a single producer are read back in order, there is no
// ordering between producers. The reader sees io.EOF once every producer has
// been closed and all chunks have been drained. When the queue is full,
// producer writes block until the reader catches up or the queue is closed.
type ChunkQueue struct {
	pool      buffer.Pool
	chunkSize int
	chunks    chan buffer.Buffer
	closed    chan struct{}
	closeOnce sync.Once

	m         sync.Mutex
	producers int

	rm      sync.Mutex
	current buffer.Buffer
}

type chunkWriter struct {
	q         *ChunkQueue
	m         sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewChunkQueue returns a ChunkQueue with room for depth chunks of chunkSize
// bytes, along with one writer per producer.
func NewChunkQueue(chunkSize, depth, producers int) (*ChunkQueue, []io.WriteCloser) {
	if chunkSize <= 0 || depth <= 0 || producers <= 0 {
		panic("NewChunkQueue requires positive chunkSize, depth and producers")
	}
	q := &ChunkQueue{
		pool:      buffer.NewMemPool(int64(chunkSize)),
		chunkSize: chunkSize,
		chunks:    make(chan buffer.Buffer, depth),
		closed:    make(chan struct{}),
		producers: producers,
	}
	writers := make([]io.WriteCloser, producers)
	for i := range writers {
		writers[i] = &chunkWriter{q: q}
	}
	return q, writers
}

func (q *ChunkQueue) recycle(chunk buffer.Buffer) {
	chunk.Reset()
	q.pool.Put(chunk)
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.m.Lock()
	defer w.m.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}

	q := w.q
	written := 0
	for written < len(p) {
		chunk, err := q.pool.Get()
		if err != nil {
			return written, err
		}
		end := written + q.chunkSize
		if end > len(p) {
			end = len(p)
		}
		n, err := chunk.Write(p[written:end])
		if err != nil {
			q.recycle(chunk)
			return written, err
		}

		select {
		case <-q.closed:
			q.recycle(chunk)
			return written, ErrQueueClosed
		default:
		}
		select {
		case q.chunks <- chunk:
			written += n
		case <-q.closed:
			q.recycle(chunk)
			return written, ErrQueueClosed
		}
	}
	return written, nil
}

// Close the producer, the last producer to close ends the stream.
func (w *chunkWriter) Close() error {
	w.closeOnce.Do(func() {
		w.m.Lock()
		w.closed = true
		w.m.Unlock()

		q := w.q
		q.m.Lock()
		q.producers--
		if q.producers == 0 {
			close(q.chunks)
		}
		q.m.Unlock()
	})
	return nil
}

// Read reads from the chunk at the head of the queue, blocking until a chunk
// is available, all producers have closed (io.EOF) or the queue is closed
// (ErrQueueClosed).
func (q *ChunkQueue) Read(p []byte) (int, error) {
	q.rm.Lock()
	defer q.rm.Unlock()

	for q.current == nil || q.current.Len() == 0 {
		if q.current != nil {
			q.recycle(q.current)
			q.current = nil
		}
		select {
		case <-q.closed:
			return 0, ErrQueueClosed
		default:
		}
		select {
		case chunk, ok := <-q.chunks:
			if !ok {
				return 0, io.EOF
			}
			q.current = chunk
		case <-q.closed:
			return 0, ErrQueueClosed
		}
	}

	n, err := q.current.Read(p)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Close the reading side, unblocking producers and readers. Chunks still in
// the queue are returned to the pool.
func (q *ChunkQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.closed)
		for {
			select {
			case chunk, ok := <-q.chunks:
				if !ok {
					return
				}
				q.recycle(chunk)
			default:
				return
			}
		}
	})
	return nil
}
