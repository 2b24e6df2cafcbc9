package lineio

import (
	"context"
	"errors"
	"io"
)

// Queue reads lines through a sequence of inputs, moving on to the next once
// one is exhausted. Each input gets its own source id, counting from
// FirstSourceID.
type Queue struct {
	FirstSourceID int

	inputs []io.Reader
	cur    *Reader
	index  int
	last   Location
}

// NewQueue creates a queue over the given inputs.
func NewQueue(inputs ...io.Reader) *Queue {
	return &Queue{inputs: inputs}
}

// Push appends another input.
func (q *Queue) Push(r io.Reader) { q.inputs = append(q.inputs, r) }

// ReadLine returns the next line from the current input.
func (q *Queue) ReadLine(ctx context.Context) (string, error) {
	for {
		if q.cur == nil {
			if len(q.inputs) == 0 {
				return "", io.EOF
			}
			q.cur = NewReader(q.inputs[0])
			q.inputs = q.inputs[1:]
			q.index++
		}
		line, err := q.cur.ReadLine(ctx)
		if err == nil {
			q.last = q.cur.Location
			return line, nil
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		q.cur.Close()
		q.cur = nil
	}
}

// SourceID identifies the input that the last line came from.
func (q *Queue) SourceID() int {
	if q.index == 0 {
		return 0
	}
	return q.FirstSourceID + q.index - 1
}

// Location returns where the last line was read from.
func (q *Queue) Location() Location { return q.last }

// Close closes any current and remaining inputs.
func (q *Queue) Close() (err error) {
	if q.cur != nil {
		err = q.cur.Close()
		q.cur = nil
	}
	for _, r := range q.inputs {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	q.inputs = nil
	return err
}
