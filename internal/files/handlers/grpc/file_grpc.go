// Package grpc provides gRPC handlers for the file service
package grpc

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Aidin1998/bankstream/internal/files"
	"github.com/Aidin1998/bankstream/pkg/metrics"
	pb "github.com/Aidin1998/bankstream/proto/bank"
)

// FileHandler implements the gRPC file service
type FileHandler struct {
	pb.UnimplementedFileServiceServer
	uploader *files.Uploader
	logger   *zap.Logger
}

// NewFileHandler creates a new file gRPC handler
func NewFileHandler(uploader *files.Uploader, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{
		uploader: uploader,
		logger:   logger.Named("file_grpc"),
	}
}

// Register adds the handler to a gRPC server
func (h *FileHandler) Register(s grpc.ServiceRegistrar) {
	pb.RegisterFileServiceServer(s, h)
}

// Upload stores a stream of file chunks. Storage and stream failures are reported in
// the response status; only a failure to send the response ends the call with an error.
func (h *FileHandler) Upload(stream grpc.ClientStreamingServer[pb.FileUploadRequest, pb.FileUploadResponse]) error {
	res := h.uploader.Receive(stream.Context(), uploadSource{stream: stream})

	metrics.UploadBytes.Add(float64(res.Bytes))
	metrics.Uploads.WithLabelValues(res.Status.String()).Inc()

	resp := &pb.FileUploadResponse{Name: res.Name, Status: toStatus(res.Status)}
	if err := stream.SendAndClose(resp); err != nil {
		h.logger.Warn("Failed to send upload response",
			zap.String("name", res.Name),
			zap.Stringer("status", resp.Status),
			zap.Error(err))
		return err
	}
	return nil
}

// uploadSource adapts the request stream to files.Source
type uploadSource struct {
	stream grpc.ClientStreamingServer[pb.FileUploadRequest, pb.FileUploadResponse]
}

func (s uploadSource) Next() (files.Part, error) {
	req, err := s.stream.Recv()
	if err != nil {
		return files.Part{}, err
	}

	if md := req.GetMetadata(); md != nil {
		return files.Part{Metadata: &files.Metadata{Name: md.GetName(), Type: md.GetType()}}, nil
	}
	if f := req.GetFile(); f != nil {
		return files.Part{Content: f.GetContent()}, nil
	}
	return files.Part{}, files.ErrMalformedChunk
}

func toStatus(s files.Status) pb.Status {
	if s == files.StatusSuccess {
		return pb.Status_SUCCESS
	}
	return pb.Status_FAILED
}
