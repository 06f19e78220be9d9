package noop

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"timetabler/internal/logger"
	"timetabler/internal/port"
)

type noopStorage struct {
	log zerolog.Logger
}

// NewNoopStorage creates an ObjectStorage that discards uploads. It is used
// when archiving to S3 is disabled.
func NewNoopStorage(log zerolog.Logger) port.ObjectStorage {
	return &noopStorage{log: logger.Component(log, "storage.noop")}
}

func (s *noopStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	n, err := io.Copy(io.Discard, input.Body)
	if err != nil {
		return nil, fmt.Errorf("noop upload: %w", err)
	}
	s.log.Debug().Str("key", input.Key).Int64("bytes", n).Msg("archive disabled, upload discarded")
	return &port.UploadOutput{Location: "noop://" + input.Bucket + "/" + input.Key}, nil
}

func (s *noopStorage) Delete(_ context.Context, bucket, key string) error {
	s.log.Debug().Str("bucket", bucket).Str("key", key).Msg("archive disabled, delete ignored")
	return nil
}
