// Package bytechannel provides an in-memory, seekable byte buffer that grows
// on demand. It is the scratch destination for bitstreams whose length is not
// known before they are produced.
package bytechannel

import (
	"fmt"
	"io"
	"math"
)

// MaxSize is the largest number of bytes a channel can address.
const MaxSize = math.MaxInt32 - 8

const defaultCapacity = 32

var (
	_ io.ReadWriteSeeker = (*Channel)(nil)
	_ io.WriterTo        = (*Channel)(nil)
	_ io.Closer          = (*Channel)(nil)
)

// Channel is a growable byte buffer with an explicit cursor.
//
// A Channel is not safe for concurrent use. Closing it only marks it closed:
// Size, Position, Truncate and Bytes keep working so buffered data can still
// be drained.
type Channel struct {
	buf    []byte
	size   int64
	pos    int64
	closed bool
}

// New creates an empty channel with the given initial capacity.
func New(capacity int) *Channel {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Channel{buf: make([]byte, capacity)}
}

// NewFrom wraps b. The channel takes ownership of b and starts with size len(b).
func NewFrom(b []byte) *Channel {
	return &Channel{buf: b, size: int64(len(b))}
}

// Read copies up to len(p) bytes from the current position. It returns io.EOF
// when the position is at or past the end of data.
func (c *Channel) Read(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if c.pos >= c.size {
		return 0, io.EOF
	}
	n := copy(p, c.buf[c.pos:c.size])
	c.pos += int64(n)
	return n, nil
}

// Write copies p at the current position, growing the buffer as needed.
// A gap between the old size and the position is zero filled.
func (c *Channel) Write(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := c.pos + int64(len(p))
	if end > MaxSize {
		return 0, fmt.Errorf("write of %d bytes at %d: %w", len(p), c.pos, ErrPositionOutOfRange)
	}
	if end > int64(len(c.buf)) {
		c.grow(end)
	}
	if c.pos > c.size {
		clear(c.buf[c.size:c.pos])
	}
	copy(c.buf[c.pos:end], p)
	c.pos = end
	if end > c.size {
		c.size = end
	}
	return len(p), nil
}

// grow reallocates so that at least need bytes fit, at least doubling the capacity.
func (c *Channel) grow(need int64) {
	newCap := int64(len(c.buf)) * 2
	if newCap < need {
		newCap = need
	}
	if newCap < defaultCapacity {
		newCap = defaultCapacity
	}
	if newCap > MaxSize {
		newCap = MaxSize
	}
	buf := make([]byte, newCap)
	copy(buf, c.buf[:c.size])
	c.buf = buf
}

// Seek implements io.Seeker. Seeking past the end does not resize the channel.
func (c *Channel) Seek(offset int64, whence int) (int64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = c.pos + offset
	case io.SeekEnd:
		abs = c.size + offset
	default:
		return 0, fmt.Errorf("bytechannel: invalid whence %d", whence)
	}
	if err := c.SetPosition(abs); err != nil {
		return 0, err
	}
	return abs, nil
}

// SetPosition moves the cursor to n.
func (c *Channel) SetPosition(n int64) error {
	if c.closed {
		return ErrClosed
	}
	if err := checkRange(n); err != nil {
		return err
	}
	c.pos = n
	return nil
}

// Position returns the cursor.
func (c *Channel) Position() int64 {
	return c.pos
}

// Size returns the number of bytes of data held.
func (c *Channel) Size() int64 {
	return c.size
}

// Truncate shrinks the data to n bytes. Truncating to a size at or above the
// current size does nothing. The cursor is clamped to the new size.
func (c *Channel) Truncate(n int64) error {
	if err := checkRange(n); err != nil {
		return err
	}
	if n < c.size {
		c.size = n
	}
	if c.pos > n {
		c.pos = n
	}
	return nil
}

// Close marks the channel closed. Calling it more than once is harmless.
func (c *Channel) Close() error {
	c.closed = true
	return nil
}

// IsOpen reports whether Close has not been called.
func (c *Channel) IsOpen() bool {
	return !c.closed
}

// Bytes returns the data held, aliasing the internal buffer.
func (c *Channel) Bytes() []byte {
	return c.buf[:c.size]
}

// WriteTo writes the data from the cursor to the end of the channel to w and
// advances the cursor past what was written.
func (c *Channel) WriteTo(w io.Writer) (int64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if c.pos >= c.size {
		return 0, nil
	}
	rest := c.buf[c.pos:c.size]
	n, err := w.Write(rest)
	c.pos += int64(n)
	if err == nil && n < len(rest) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

func checkRange(n int64) error {
	if n < 0 {
		return fmt.Errorf("position %d: %w", n, ErrNegativePosition)
	}
	if n > MaxSize {
		return fmt.Errorf("position %d: %w", n, ErrPositionOutOfRange)
	}
	return nil
}
