package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrMalformedExtraction     = errors.New("extraction result is not a valid timetable")
	ErrExtractionFailed        = errors.New("timetable extraction failed")
	ErrTextExtractionFailed    = errors.New("could not read text from document")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)
