package stream

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const DefaultBufferSize = 4096

var ErrInvalidBufferSize = errors.New("buffer size must be at least 1")

type scanState int

const (
	stateNormal scanState = iota
	stateSeenCR
)

// Reader splits a byte stream into lines terminated by CR, LF or CRLF. The
// terminator is kept as part of the returned text.
type Reader struct {
	src    io.Reader
	buf    []byte
	pos    int
	limit  int
	err    error
	count  int
	closed bool
}

func NewReader(src io.Reader, size int) (*Reader, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBufferSize, size)
	}
	return &Reader{
		src: src,
		buf: make([]byte, size),
	}, nil
}

func (r *Reader) fill() bool {
	if r.pos < r.limit {
		return true
	}
	if r.err != nil {
		return false
	}
	for {
		n, err := r.src.Read(r.buf)
		r.pos, r.limit = 0, n
		if err != nil {
			r.err = err
		}
		if n > 0 {
			return true
		}
		if err != nil {
			return false
		}
	}
}

func (r *Reader) failure() error {
	if r.err == nil || errors.Is(r.err, io.EOF) {
		return io.EOF
	}
	return r.err
}

// ReadLine returns the next line including its terminator. It returns io.EOF
// once the stream is drained, and keeps doing so on every later call.
func (r *Reader) ReadLine() (string, error) {
	var sb strings.Builder
	state := stateNormal

	for {
		if !r.fill() {
			if sb.Len() == 0 {
				return "", r.failure()
			}
			return sb.String(), nil
		}

		c := r.buf[r.pos]
		if state == stateSeenCR {
			if c == '\n' {
				sb.WriteByte(c)
				r.pos++
			}
			return sb.String(), nil
		}

		sb.WriteByte(c)
		r.pos++
		switch c {
		case '\n':
			return sb.String(), nil
		case '\r':
			state = stateSeenCR
		}
	}
}

func (r *Reader) ReadByte() (byte, error) {
	if !r.fill() {
		return 0, r.failure()
	}
	c := r.buf[r.pos]
	r.pos++
	return c, nil
}

// Skip discards up to n bytes and reports how many were actually skipped.
func (r *Reader) Skip(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative skip count: %d", n)
	}
	skipped := 0
	for skipped < n {
		if !r.fill() {
			if err := r.failure(); !errors.Is(err, io.EOF) {
				return skipped, err
			}
			break
		}
		step := r.limit - r.pos
		if remaining := n - skipped; step > remaining {
			step = remaining
		}
		r.pos += step
		skipped += step
	}
	return skipped, nil
}

// Next returns the next line numbered after every line this reader has
// already handed out through Next or Lines.
func (r *Reader) Next() (Line, error) {
	text, err := r.ReadLine()
	if err != nil {
		return Line{}, err
	}
	r.count++
	return NewLine(text, r.count), nil
}

// Lines drains the remaining stream into numbered lines.
func (r *Reader) Lines() ([]Line, error) {
	var lines []Line
	for {
		line, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return nil, err
		}
		lines = append(lines, line)
	}
}

// Close closes the underlying stream the first time it is called.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if closer, ok := r.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
