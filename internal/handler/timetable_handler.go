package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"timetabler/internal/domain"
	"timetabler/internal/export"
	"timetabler/internal/service"
	"timetabler/internal/timetable"
)

// ExtractSuccessMessage is returned with every successful extraction.
const ExtractSuccessMessage = "Timetable extracted successfully"

// TimetableHandler handles timetable extraction and history endpoints.
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler creates a new TimetableHandler.
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// Extract handles POST /api/v1/timetables/extract
// @Summary Extract a timetable
// @Description Upload an image, PDF, or Word document and return the normalized weekly timetable
// @Tags timetables
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Timetable document (jpg, png, pdf, doc, docx)"
// @Success 201 {object} APIResponse "Timetable extracted successfully"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Model output was not a timetable"
// @Failure 429 {object} APIResponse "Extraction backend rate limited"
// @Router /timetables/extract [post]
func (h *TimetableHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	record, err := h.svc.Extract(c.Request.Context(), service.ExtractInput{
		FileName: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	view, err := timetableView(record)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, ExtractSuccessMessage, view)
}

// Normalize handles POST /api/v1/timetables/normalize
// @Summary Normalize an extraction
// @Description Apply recurring blocks, sort, and split multi-subject blocks on a document already in extraction shape
// @Tags timetables
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse{data=service.NormalizeResult}
// @Failure 422 {object} APIResponse "Body is not a timetable document"
// @Router /timetables/normalize [post]
func (h *TimetableHandler) Normalize(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
		return
	}

	doc, err := timetable.Decode(raw)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.svc.Normalize(c.Request.Context(), doc)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// List handles GET /api/v1/timetables
// @Summary List extractions
// @Description List stored extractions, newest first
// @Tags timetables
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Timetable,meta=PagMeta}
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	if items == nil {
		items = []domain.Timetable{}
	}

	RespondPaginated(c, items, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/timetables/:id
// @Summary Get an extraction
// @Tags timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Not found"
// @Router /timetables/{id} [get]
func (h *TimetableHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	view, err := timetableView(record)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Delete handles DELETE /api/v1/timetables/:id
// @Summary Delete an extraction
// @Description Remove the stored extraction and its archived upload
// @Tags timetables
// @Param id path string true "Timetable ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Not found"
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: "Timetable deleted"})
}

// Export handles GET /api/v1/timetables/:id/export
// @Summary Export a timetable
// @Description Download the normalized timetable as CSV or XLSX
// @Tags timetables
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Timetable ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} APIResponse "Unsupported format"
// @Failure 404 {object} APIResponse "Not found"
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	record, err := h.svc.Export(c.Request.Context(), id, format, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(record.Title, format, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid timetable ID")
		return uuid.Nil, false
	}
	return id, true
}

// timetableView flattens the stored document next to the record fields, so
// clients get {id, title, days, recurringBlocks, ...} in one object.
func timetableView(t *domain.Timetable) (map[string]interface{}, error) {
	view := make(map[string]interface{})
	if len(t.Document) > 0 {
		if err := json.Unmarshal(t.Document, &view); err != nil {
			return nil, fmt.Errorf("decoding stored document: %w", err)
		}
	}
	view["id"] = t.ID
	view["title"] = t.Title
	view["status"] = t.Status
	view["original_name"] = t.OriginalName
	view["file_type"] = t.FileType
	view["parser_model"] = t.ParserModel
	view["created_at"] = t.CreatedAt
	if t.ErrorMessage != "" {
		view["error_message"] = t.ErrorMessage
	}
	if len(t.Warnings) > 0 {
		view["warnings"] = t.Warnings
	} else {
		view["warnings"] = json.RawMessage("[]")
	}
	return view, nil
}
