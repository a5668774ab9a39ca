package segment

import (
	"fmt"
	"io"
	"os"
)

var _ io.ReadCloser = (*Reader)(nil)

// Reader streams the bytes of a List in segment order, with one seek per
// segment.
type Reader struct {
	list *List
	f    *os.File
	seg  int
	left int64
}

// Open opens the list's file for reading.
func (l *List) Open() (*Reader, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	return &Reader{list: l, f: f, seg: -1}, nil
}

// Read implements io.Reader over the concatenated segments.
func (r *Reader) Read(p []byte) (int, error) {
	if r.f == nil {
		return 0, os.ErrClosed
	}
	for r.left == 0 {
		r.seg++
		if r.seg >= r.list.SegmentCount() {
			return 0, io.EOF
		}
		if _, err := r.f.Seek(r.list.positions[r.seg], io.SeekStart); err != nil {
			return 0, err
		}
		r.left = r.list.lengths[r.seg]
	}
	if int64(len(p)) > r.left {
		p = p[:r.left]
	}
	n, err := r.f.Read(p)
	r.left -= int64(n)
	if err == io.EOF && r.left > 0 {
		err = io.ErrUnexpectedEOF
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// ReadSegment reads segment i in full. It does not move the streaming cursor.
func (r *Reader) ReadSegment(i int) ([]byte, error) {
	if r.f == nil {
		return nil, os.ErrClosed
	}
	pos, n, err := r.list.Segment(i)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := r.f.ReadAt(buf, pos); err != nil {
		return nil, fmt.Errorf("read segment %d at %d: %w", i, pos, err)
	}
	return buf, nil
}

// Close releases the file. Calling it twice is harmless.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// ReadSegment opens the file, reads segment i and closes it again.
func (l *List) ReadSegment(i int) ([]byte, error) {
	r, err := l.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadSegment(i)
}
