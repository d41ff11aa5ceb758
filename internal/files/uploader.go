// Package files implements the storage side of streamed file uploads.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrMalformedChunk is returned by a Source for a message that carries neither metadata
// nor file content.
var ErrMalformedChunk = fmt.Errorf("malformed upload chunk")

// Status is the outcome of an upload.
type Status int

const (
	StatusSuccess Status = iota + 1
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Metadata describes the uploaded file as announced by the client.
type Metadata struct {
	Name string
	Type string
}

// Part is one message of an upload stream: either metadata or a chunk of content.
type Part struct {
	Metadata *Metadata
	Content  []byte
}

// Source yields the parts of an upload in arrival order. It returns io.EOF once the
// client has finished sending.
type Source interface {
	Next() (Part, error)
}

// Result is the terminal report of an upload.
type Result struct {
	Name     string
	Status   Status
	Bytes    int64
	Chunks   int
	Metadata *Metadata
	// Err is the failure behind StatusFailed. It is never sent to the client.
	Err error
}

// Uploader stores upload streams.
type Uploader struct {
	fs     afero.Fs
	dests  *Destinations
	logger *zap.Logger
}

// NewUploader creates a new uploader
func NewUploader(fs afero.Fs, cfg Config, logger *zap.Logger) (*Uploader, error) {
	if fs == nil {
		return nil, fmt.Errorf("filesystem is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dests, err := NewDestinations(fs, cfg)
	if err != nil {
		return nil, err
	}
	return &Uploader{fs: fs, dests: dests, logger: logger.Named("files")}, nil
}

// Receive consumes src until it ends and writes every chunk to a fresh destination.
// It always returns a Result; failures are reported as StatusFailed and the destination
// is released on every path.
func (u *Uploader) Receive(ctx context.Context, src Source) Result {
	dest := u.dests.Next()
	sink := NewSink(u.fs, dest)
	res := Result{Name: dest.Name}

	err := u.store(ctx, src, sink, &res)

	res.Bytes = sink.Written()
	res.Chunks = sink.Chunks()
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		u.logger.Warn("Upload failed",
			zap.String("name", res.Name),
			zap.Int("chunks", res.Chunks),
			zap.Int64("bytes", res.Bytes),
			zap.Error(err))
		return res
	}

	res.Status = StatusSuccess
	u.logger.Info("Upload completed",
		zap.String("name", res.Name),
		zap.Int("chunks", res.Chunks),
		zap.Int64("bytes", res.Bytes))
	return res
}

// store drains src into sink. The sink is released on return, including when src or the
// filesystem panics, so a shared destination never stays locked.
func (u *Uploader) store(ctx context.Context, src Source, sink *Sink, res *Result) (err error) {
	defer sink.closeInto(&err)
	return u.drain(ctx, src, sink, res)
}

func (u *Uploader) drain(ctx context.Context, src Source, sink *Sink, res *Result) error {
	for {
		part, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to receive upload part: %w", err)
		}

		if part.Metadata != nil {
			res.Metadata = part.Metadata
			u.logger.Debug("Upload metadata received",
				zap.String("name", res.Name),
				zap.String("file_name", part.Metadata.Name),
				zap.String("file_type", part.Metadata.Type))
			continue
		}

		if err := sink.Write(ctx, part.Content); err != nil {
			return err
		}
	}
}
