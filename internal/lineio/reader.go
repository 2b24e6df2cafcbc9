// Package lineio implements line sources for an interpreter host: a bounded
// line reader over any io.Reader, a queue of named inputs, and a channel for
// hosts that deliver one line per message.
package lineio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// MaxLine is the longest line returned in one piece; longer lines are split
// into successive lines of at most MaxLine bytes.
const MaxLine = 1023

// Location names a line in an input.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Reader reads bounded lines from an io.Reader.
type Reader struct {
	Location
	br     *bufio.Reader
	closer io.Closer
	err    error
}

// NewReader creates a Reader named after r, if it has a Name() method.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{br: bufio.NewReaderSize(r, MaxLine)}
	rd.Name = nameOf(r)
	if cl, ok := r.(io.Closer); ok {
		rd.closer = cl
	}
	return rd
}

// ReadLine returns the next line without its line terminator; the final line
// need not be terminated. Returns io.EOF once the input is exhausted.
func (rd *Reader) ReadLine(ctx context.Context) (string, error) {
	if rd.err != nil {
		return "", rd.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b, err := rd.br.ReadSlice('\n')
	switch {
	case err == nil:
		b = b[:len(b)-1]
	case errors.Is(err, bufio.ErrBufferFull):
		err = nil
	case errors.Is(err, io.EOF) && len(b) > 0:
		rd.err = io.EOF
		err = nil
	default:
		rd.err = err
		rd.close()
		return "", err
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	rd.Line++
	return string(b), err
}

// Close closes the underlying reader, if it is an io.Closer.
func (rd *Reader) Close() error {
	if rd.err == nil {
		rd.err = io.EOF
	}
	return rd.close()
}

func (rd *Reader) close() error {
	if cl := rd.closer; cl != nil {
		rd.closer = nil
		return cl.Close()
	}
	return nil
}

// NamedReader attaches a Name to an io.Reader.
func NamedReader(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
