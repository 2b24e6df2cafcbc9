package lineio

import (
	"context"
	"io"
	"sync"
)

// Line is a single message delivered to a Chan.
type Line struct {
	Text     string
	SourceID int
}

// Chan is a line source fed by messages, for hosts that post one line at a
// time from another goroutine. Closing it ends the input.
type Chan struct {
	ch       chan Line
	once     sync.Once
	sourceID int
}

// NewChan creates a Chan that buffers up to size undelivered lines.
func NewChan(size int) *Chan {
	return &Chan{ch: make(chan Line, size)}
}

// Send posts a line, blocking while the buffer is full.
func (c *Chan) Send(ctx context.Context, line Line) error {
	select {
	case c.ch <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the input after any buffered lines are read.
func (c *Chan) Close() error {
	c.once.Do(func() { close(c.ch) })
	return nil
}

// ReadLine waits for the next posted line.
func (c *Chan) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.ch:
		if !ok {
			return "", io.EOF
		}
		c.sourceID = line.SourceID
		return line.Text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// SourceID returns the source id of the last line read.
func (c *Chan) SourceID() int { return c.sourceID }
