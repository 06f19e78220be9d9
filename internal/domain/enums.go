package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeDOCX FileType = "docx"
	FileTypeDOC  FileType = "doc"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypeDOC:  "application/msword",
}

// AllowedSniffedTypes lists the content types http.DetectContentType may
// report for each FileType. Word files sniff as generic containers.
var AllowedSniffedTypes = map[FileType][]string{
	FileTypePDF:  {"application/pdf"},
	FileTypeJPG:  {"image/jpeg"},
	FileTypePNG:  {"image/png"},
	FileTypeDOCX: {"application/zip", "application/octet-stream"},
	FileTypeDOC:  {"application/octet-stream"},
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"docx": FileTypeDOCX,
	"doc":  FileTypeDOC,
}

// IsImage reports whether the file type is sent to the model as an image.
func (f FileType) IsImage() bool {
	return f == FileTypeJPG || f == FileTypePNG
}

// IsWordProcessing reports whether the file must be converted to text first.
func (f FileType) IsWordProcessing() bool {
	return f == FileTypeDOCX || f == FileTypeDOC
}

// ParseMode controls how the configured parser providers are combined.
type ParseMode string

const (
	ParseModeSingle   ParseMode = "single"
	ParseModeFallback ParseMode = "fallback"
	ParseModeDual     ParseMode = "dual"
)

// ExtractionStatus represents the lifecycle of a stored extraction.
type ExtractionStatus string

const (
	ExtractionStatusCompleted ExtractionStatus = "completed"
	ExtractionStatusFailed    ExtractionStatus = "failed"
)

// ExportFormat is a supported timetable export format.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)
