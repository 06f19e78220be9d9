package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"timetabler/internal/domain"
	"timetabler/internal/export"
	"timetabler/internal/logger"
	"timetabler/internal/metrics"
	"timetabler/internal/port"
	"timetabler/internal/timetable"
	"timetabler/internal/validator"
)

// ExtractInput is the DTO for timetable extraction requests.
type ExtractInput struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// NormalizeResult is a normalized document with its advisory findings.
type NormalizeResult struct {
	Document *domain.ScheduleDocument `json:"document"`
	Warnings []validator.Issue        `json:"warnings"`
}

// TimetableService defines the timetable extraction contract.
type TimetableService interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.Timetable, error)
	Normalize(ctx context.Context, doc *domain.ScheduleDocument) (*NormalizeResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Timetable, error)
	List(ctx context.Context, offset, limit int) ([]domain.Timetable, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Export(ctx context.Context, id uuid.UUID, format domain.ExportFormat, w io.Writer) (*domain.Timetable, error)
}

// TimetableServiceConfig carries the settings the service reads.
type TimetableServiceConfig struct {
	Bucket       string
	MaxBytes     int64
	DefaultTitle string
}

type timetableService struct {
	repo      port.TimetableRepository
	storage   port.ObjectStorage
	parser    port.DocumentParser
	extractor port.TextExtractor
	metrics   *metrics.Metrics
	cfg       TimetableServiceConfig
	log       zerolog.Logger
	now       func() time.Time
}

// NewTimetableService creates a new TimetableService implementation.
func NewTimetableService(
	repo port.TimetableRepository,
	storage port.ObjectStorage,
	parser port.DocumentParser,
	extractor port.TextExtractor,
	m *metrics.Metrics,
	cfg TimetableServiceConfig,
	log zerolog.Logger,
) TimetableService {
	return &timetableService{
		repo:      repo,
		storage:   storage,
		parser:    parser,
		extractor: extractor,
		metrics:   m,
		cfg:       cfg,
		log:       logger.Component(log, "service.timetable"),
		now:       time.Now,
	}
}

func (s *timetableService) Extract(ctx context.Context, input ExtractInput) (*domain.Timetable, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Size > s.cfg.MaxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if !sniffMatches(fileType, data) {
		return nil, domain.ErrUnsupportedFileType
	}

	id := uuid.New()
	contentType := domain.AllowedFileTypes[fileType]
	key := fmt.Sprintf("uploads/%s/%s.%s", s.now().UTC().Format("2006/01"), id, ext)
	log := s.log.With().Str("timetable_id", id.String()).Str("file", input.FileName).Logger()

	log.Info().Str("file_type", string(fileType)).Int("bytes", len(data)).Msg("extracting timetable")

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
		Metadata:    map[string]string{"original-name": input.FileName},
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("archive upload failed")
		return nil, domain.ErrUploadFailed
	}

	record := &domain.Timetable{
		ID:           id,
		OriginalName: input.FileName,
		FileType:     fileType,
		FileSize:     int64(len(data)),
		S3Bucket:     s.cfg.Bucket,
		S3Key:        key,
	}

	parseInput := port.ParseInput{
		FileBytes:   data,
		ContentType: contentType,
		FileName:    input.FileName,
	}
	if fileType.IsWordProcessing() {
		text, err := s.extractor.ExtractText(ctx, input.FileName, data)
		if err != nil {
			return nil, s.fail(ctx, record, 0, err)
		}
		parseInput = port.ParseInput{Text: text, FileName: input.FileName, ContentType: contentType}
	}

	start := time.Now()
	out, err := s.parser.Parse(ctx, parseInput)
	elapsed := time.Since(start)
	if err != nil {
		return nil, s.fail(ctx, record, elapsed, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err))
	}
	record.ParserModel = out.ModelUsed
	if out.SecondaryModel != "" && out.SecondaryModel != out.ModelUsed {
		record.ParserModel += "+" + out.SecondaryModel
	}

	doc, err := timetable.Decode(out.RawJSON)
	if err != nil {
		return nil, s.fail(ctx, record, elapsed, err)
	}
	if doc.Title == "" {
		doc.Title = s.cfg.DefaultTitle
	}
	timetable.Normalize(doc)
	issues := validator.Check(doc)

	if err := fillDocument(record, doc, issues); err != nil {
		return nil, err
	}
	record.Status = domain.ExtractionStatusCompleted

	if err := s.repo.Create(ctx, record); err != nil {
		log.Error().Err(err).Msg("persisting timetable failed")
		s.discardArchive(ctx, record)
		s.metrics.RecordExtraction(string(domain.ExtractionStatusFailed), out.ModelUsed, string(fileType), elapsed)
		return nil, fmt.Errorf("creating timetable: %w", err)
	}

	s.metrics.RecordExtraction(string(record.Status), out.ModelUsed, string(fileType), elapsed)
	s.metrics.RecordBlocks(record.BlockCount)
	for _, issue := range issues {
		s.metrics.RecordIssue(issue.Rule)
	}

	log.Info().
		Str("model", record.ParserModel).
		Int("days", record.DayCount).
		Int("blocks", record.BlockCount).
		Int("warnings", len(issues)).
		Dur("elapsed", elapsed).
		Msg("timetable extracted")

	return record, nil
}

// fail stores a failed attempt for the history and returns cause unchanged.
func (s *timetableService) fail(ctx context.Context, record *domain.Timetable, elapsed time.Duration, cause error) error {
	log := s.log.With().Str("timetable_id", record.ID.String()).Logger()
	log.Warn().Err(cause).Msg("extraction failed")

	record.Status = domain.ExtractionStatusFailed
	record.ErrorMessage = cause.Error()
	if err := s.repo.Create(ctx, record); err != nil {
		log.Error().Err(err).Msg("persisting failed extraction")
	}
	s.metrics.RecordExtraction(string(record.Status), record.ParserModel, string(record.FileType), elapsed)
	return cause
}

// discardArchive removes the upload of a record that could not be stored, so
// the archive holds no object without a history row.
func (s *timetableService) discardArchive(ctx context.Context, record *domain.Timetable) {
	if record.S3Key == "" {
		return
	}
	if err := s.storage.Delete(ctx, record.S3Bucket, record.S3Key); err != nil {
		s.log.Error().Err(err).Str("key", record.S3Key).Msg("removing orphaned upload failed")
	}
}

func (s *timetableService) Normalize(_ context.Context, doc *domain.ScheduleDocument) (*NormalizeResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", domain.ErrMalformedExtraction)
	}
	timetable.Normalize(doc)
	return &NormalizeResult{Document: doc, Warnings: validator.Check(doc)}, nil
}

func (s *timetableService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Timetable, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *timetableService) List(ctx context.Context, offset, limit int) ([]domain.Timetable, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *timetableService) Delete(ctx context.Context, id uuid.UUID) error {
	s.log.Info().Str("timetable_id", id.String()).Msg("deleting timetable")

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if record.S3Key != "" {
		if err := s.storage.Delete(ctx, record.S3Bucket, record.S3Key); err != nil {
			s.log.Error().Err(err).Str("key", record.S3Key).Msg("archive delete failed")
			return fmt.Errorf("deleting from storage: %w", err)
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *timetableService) Export(ctx context.Context, id uuid.UUID, format domain.ExportFormat, w io.Writer) (*domain.Timetable, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != domain.ExtractionStatusCompleted {
		return nil, fmt.Errorf("%w: extraction did not complete", domain.ErrNotFound)
	}

	doc, err := record.Schedule()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedExtraction, err)
	}
	if err := export.Write(w, format, doc); err != nil {
		if errors.Is(err, domain.ErrUnsupportedExportFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("exporting timetable: %w", err)
	}
	s.metrics.RecordExport(string(format))
	return record, nil
}

func fillDocument(record *domain.Timetable, doc *domain.ScheduleDocument, issues []validator.Issue) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	warnJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("encoding warnings: %w", err)
	}
	record.Title = doc.Title
	record.Document = docJSON
	record.Warnings = warnJSON
	record.DayCount, record.BlockCount = timetable.Stats(doc)
	return nil
}

// sniffMatches checks the leading bytes against what the extension claims.
func sniffMatches(fileType domain.FileType, data []byte) bool {
	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	for _, allowed := range domain.AllowedSniffedTypes[fileType] {
		if detected == allowed {
			return true
		}
	}
	return false
}
