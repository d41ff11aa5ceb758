package grpc

import (
	"context"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Aidin1998/bankstream/internal/files"
	"github.com/Aidin1998/bankstream/pkg/metrics"
	pb "github.com/Aidin1998/bankstream/proto/bank"
	"github.com/Aidin1998/bankstream/testutil"
)

func newFileClient(t *testing.T, mode files.Mode) (pb.FileServiceClient, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	logger := zaptest.NewLogger(t)
	uploader, err := files.NewUploader(fs, files.Config{Dir: "/srv", Name: "File_Copy.pdf", Mode: mode}, logger)
	require.NoError(t, err)

	handler := NewFileHandler(uploader, logger)
	conn := testutil.StartGRPC(t, testutil.Service{Name: "bank.FileService", Register: handler.Register})
	return pb.NewFileServiceClient(conn), fs
}

func fileChunk(data string) *pb.FileUploadRequest {
	return &pb.FileUploadRequest{Request: &pb.FileUploadRequest_File{File: &pb.File{Content: []byte(data)}}}
}

func TestUpload_StoresChunks(t *testing.T) {
	client, fs := newFileClient(t, files.ModeShared)
	succeeded := promtestutil.ToFloat64(metrics.Uploads.WithLabelValues("success"))
	uploaded := promtestutil.ToFloat64(metrics.UploadBytes)

	stream, err := client.Upload(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream.Send(&pb.FileUploadRequest{
		Request: &pb.FileUploadRequest_Metadata{Metadata: &pb.MetaData{Name: "report", Type: "pdf"}},
	}))
	for _, c := range []string{"AB", "CD", "EF"} {
		require.NoError(t, stream.Send(fileChunk(c)))
	}

	resp, err := stream.CloseAndRecv()
	require.NoError(t, err)
	assert.Equal(t, "File_Copy.pdf", resp.GetName())
	assert.Equal(t, pb.Status_SUCCESS, resp.GetStatus())

	data, err := afero.ReadFile(fs, "/srv/File_Copy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", string(data))

	assert.Equal(t, succeeded+1, promtestutil.ToFloat64(metrics.Uploads.WithLabelValues("success")))
	assert.Equal(t, uploaded+6, promtestutil.ToFloat64(metrics.UploadBytes))
}

func TestUpload_Empty(t *testing.T) {
	client, fs := newFileClient(t, files.ModeShared)

	stream, err := client.Upload(context.Background())
	require.NoError(t, err)

	resp, err := stream.CloseAndRecv()
	require.NoError(t, err)
	assert.Equal(t, pb.Status_SUCCESS, resp.GetStatus())

	exists, err := afero.Exists(fs, "/srv/File_Copy.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpload_MalformedChunkFails(t *testing.T) {
	client, fs := newFileClient(t, files.ModeShared)
	failed := promtestutil.ToFloat64(metrics.Uploads.WithLabelValues("failed"))

	stream, err := client.Upload(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream.Send(fileChunk("AB")))
	require.NoError(t, stream.Send(&pb.FileUploadRequest{}))

	resp, err := stream.CloseAndRecv()
	require.NoError(t, err)
	assert.Equal(t, pb.Status_FAILED, resp.GetStatus())

	data, err := afero.ReadFile(fs, "/srv/File_Copy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "AB", string(data))
	assert.Equal(t, failed+1, promtestutil.ToFloat64(metrics.Uploads.WithLabelValues("failed")))
}

func TestUpload_PerCallNames(t *testing.T) {
	client, fs := newFileClient(t, files.ModePerCall)

	var names []string
	for _, payload := range []string{"one", "two"} {
		stream, err := client.Upload(context.Background())
		require.NoError(t, err)
		require.NoError(t, stream.Send(fileChunk(payload)))
		resp, err := stream.CloseAndRecv()
		require.NoError(t, err)
		require.Equal(t, pb.Status_SUCCESS, resp.GetStatus())
		names = append(names, resp.GetName())

		data, err := afero.ReadFile(fs, "/srv/"+resp.GetName())
		require.NoError(t, err)
		assert.Equal(t, payload, string(data))
	}
	assert.NotEqual(t, names[0], names[1])
}

func TestToStatus(t *testing.T) {
	assert.Equal(t, pb.Status_SUCCESS, toStatus(files.StatusSuccess))
	assert.Equal(t, pb.Status_FAILED, toStatus(files.StatusFailed))
}

func TestUpload_ClientCancelReleasesDestination(t *testing.T) {
	client, fs := newFileClient(t, files.ModeShared)
	failed := promtestutil.ToFloat64(metrics.Uploads.WithLabelValues("failed"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := client.Upload(ctx)
	require.NoError(t, err)
	require.NoError(t, stream.Send(fileChunk("AB")))

	// the chunk is on disk before the client goes away
	require.Eventually(t, func() bool {
		data, err := afero.ReadFile(fs, "/srv/File_Copy.pdf")
		return err == nil && string(data) == "AB"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	// the interrupted upload finishes as failed and keeps what was written
	require.Eventually(t, func() bool {
		return promtestutil.ToFloat64(metrics.Uploads.WithLabelValues("failed")) == failed+1
	}, 5*time.Second, 10*time.Millisecond)
	data, err := afero.ReadFile(fs, "/srv/File_Copy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "AB", string(data))

	// the shared destination was released
	next, cancelNext := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelNext()
	second, err := client.Upload(next)
	require.NoError(t, err)
	require.NoError(t, second.Send(fileChunk("CD")))
	resp, err := second.CloseAndRecv()
	require.NoError(t, err)
	assert.Equal(t, pb.Status_SUCCESS, resp.GetStatus())

	data, err = afero.ReadFile(fs, "/srv/File_Copy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "CD", string(data))
}
