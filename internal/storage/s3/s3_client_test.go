package s3_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetabler/internal/config"
	"timetabler/internal/port"
	s3storage "timetabler/internal/storage/s3"
)

type recordedRequest struct {
	method string
	path   string
	meta   string
}

func newFakeS3(t *testing.T) (*httptest.Server, *[]recordedRequest, *sync.Mutex) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			meta:   r.Header.Get("X-Amz-Meta-Original-Name"),
		})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"abc123"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)
	return server, &reqs, &mu
}

func newClient(t *testing.T, endpoint string) port.ObjectStorage {
	t.Helper()
	client, err := s3storage.NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return client
}

func TestS3Client_Upload(t *testing.T) {
	server, reqs, mu := newFakeS3(t)
	client := newClient(t, server.URL)

	body := []byte("\x89PNG timetable")
	out, err := client.Upload(context.Background(), port.UploadInput{
		Bucket:      "timetabler-uploads",
		Key:         "uploads/2026/10/abc.png",
		Body:        bytes.NewReader(body),
		ContentType: "image/png",
		Size:        int64(len(body)),
		Metadata:    map[string]string{"original-name": "week.png"},
	})

	require.NoError(t, err)
	assert.Equal(t, `"abc123"`, out.ETag)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodPut, (*reqs)[0].method)
	assert.Equal(t, "/timetabler-uploads/uploads/2026/10/abc.png", (*reqs)[0].path)
	assert.Equal(t, "week.png", (*reqs)[0].meta)
}

func TestS3Client_Delete(t *testing.T) {
	server, reqs, mu := newFakeS3(t)
	client := newClient(t, server.URL)

	err := client.Delete(context.Background(), "timetabler-uploads", "uploads/abc.png")

	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodDelete, (*reqs)[0].method)
	assert.Equal(t, "/timetabler-uploads/uploads/abc.png", (*reqs)[0].path)
}
