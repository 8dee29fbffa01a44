package reliq

import (
	"bufio"
	"io"
)

// Sink abstracts an output writer: it either owns an in-memory buffer or
// borrows a file handle (spec.md §5 "A Sink owns its backing buffer or
// borrows a file handle").
type Sink struct {
	buf    []byte
	w      io.Writer
	bw     *bufio.Writer
	owning bool
}

// NewBufferSink creates a Sink that owns an internal growable buffer.
func NewBufferSink() *Sink {
	return &Sink{owning: true}
}

// NewWriterSink creates a Sink borrowing an io.Writer (typically a file or
// os.Stdout); the Sink does not close it.
func NewWriterSink(w io.Writer) *Sink {
	return &Sink{w: w, bw: bufio.NewWriter(w)}
}

func (s *Sink) Write(p []byte) (int, error) {
	if s.owning {
		s.buf = append(s.buf, p...)
		return len(p), nil
	}
	return s.bw.Write(p)
}

func (s *Sink) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

func (s *Sink) WriteByte(c byte) error {
	_, err := s.Write([]byte{c})
	return err
}

// Close flushes a borrowed file writer, or returns the owned buffer to the
// caller (spec.md §5 "Sink::close releases the buffer ... or flushes the
// file (no close)").
func (s *Sink) Close() ([]byte, error) {
	if s.owning {
		return s.buf, nil
	}
	return nil, s.bw.Flush()
}

// Bytes returns the accumulated buffer of an owning Sink without closing
// it; it returns nil for a borrowed-writer Sink.
func (s *Sink) Bytes() []byte {
	if s.owning {
		return s.buf
	}
	return nil
}
