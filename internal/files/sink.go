package files

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// ErrSinkClosed is returned when writing to a released sink.
var ErrSinkClosed = fmt.Errorf("sink closed")

type sinkState int

const (
	sinkUnopened sinkState = iota
	sinkOpen
	sinkClosed
)

func (s sinkState) String() string {
	switch s {
	case sinkUnopened:
		return "unopened"
	case sinkOpen:
		return "open"
	case sinkClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sink writes the chunks of one upload to its destination. The file is created on the
// first write and every write is synced before it returns, so the file always holds
// exactly the chunks written so far.
//
// A Sink is owned by a single upload and is not safe for concurrent use.
type Sink struct {
	fs      afero.Fs
	dest    *Destination
	state   sinkState
	file    afero.File
	release func()
	written int64
	chunks  int
}

// NewSink returns an unopened sink for dest.
func NewSink(fs afero.Fs, dest *Destination) *Sink {
	return &Sink{fs: fs, dest: dest}
}

// Write appends chunk to the destination, opening it first if needed.
func (s *Sink) Write(ctx context.Context, chunk []byte) error {
	switch s.state {
	case sinkClosed:
		return ErrSinkClosed
	case sinkUnopened:
		if err := s.open(ctx); err != nil {
			return err
		}
	}

	n, err := s.file.Write(chunk)
	s.written += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write chunk %d: %w", s.chunks+1, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync chunk %d: %w", s.chunks+1, err)
	}
	s.chunks++
	return nil
}

func (s *Sink) open(ctx context.Context) error {
	release, err := s.dest.acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire destination %s: %w", s.dest.Name, err)
	}

	f, err := s.fs.OpenFile(s.dest.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		release()
		return fmt.Errorf("failed to open destination %s: %w", s.dest.Path, err)
	}

	s.file = f
	s.release = release
	s.state = sinkOpen
	return nil
}

// Close releases the destination. It is safe to call more than once and on a sink that
// was never opened.
func (s *Sink) Close() error {
	if s.state != sinkOpen {
		s.state = sinkClosed
		return nil
	}
	s.state = sinkClosed

	err := s.file.Close()
	s.release()
	s.file = nil
	s.release = nil
	if err != nil {
		return fmt.Errorf("failed to close destination %s: %w", s.dest.Path, err)
	}
	return nil
}

// Written returns the number of bytes written.
func (s *Sink) Written() int64 {
	return s.written
}

// Chunks returns the number of chunks fully written and synced.
func (s *Sink) Chunks() int {
	return s.chunks
}

// closeInto closes the sink and appends any close error to *errp.
func (s *Sink) closeInto(errp *error) {
	*errp = multierr.Append(*errp, s.Close())
}
