package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/parsing"
	"resume-parser/internal/resume"
	"resume-parser/internal/shared/server/middleware"
	"resume-parser/internal/shared/server/respond"
)

const (
	DefaultMaxUploadBytes = 10 << 20 // 10MB
	DefaultParseTimeout   = 90 * time.Second

	statusClientClosedRequest = 499
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
	ParseTimeout   time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64, parseTimeout time.Duration) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if parseTimeout <= 0 {
		parseTimeout = DefaultParseTimeout
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes, ParseTimeout: parseTimeout}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/parse", h.parse)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes/:id/file", h.file)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.remove)
}

func (h *Handler) parse(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	// multipart framing adds a little on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+64<<10)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fileTooLarge(c)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		h.fileTooLarge(c)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	if int64(len(data)) > h.MaxUploadBytes {
		h.fileTooLarge(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.ParseTimeout)
	defer cancel()
	ctx = parsing.WithRequestID(ctx, middleware.RequestIDFromContext(c))

	res, err := h.Svc.ParseUpload(ctx, ownerID, Upload{
		FileName:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		writeParseError(c, err)
		return
	}

	c.Set("resumeId", res.ID)
	respond.Created(c, gin.H{
		"resumeId": res.ID,
		"title":    res.Title,
		"data":     res.Data,
	})
}

func (h *Handler) fileTooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large",
		"File too large. Maximum size is "+strconv.FormatInt(h.MaxUploadBytes>>20, 10)+"MB", nil)
}

// writeParseError maps a pipeline failure to a distinct status and code.
func writeParseError(c *gin.Context, err error) {
	switch parsing.KindOf(err) {
	case parsing.KindUnsupportedFormat:
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format",
			"Unsupported file type. Please upload PDF, Word, PowerPoint, or image files", nil)
	case parsing.KindExtractionFailed:
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "Could not extract text from file", nil)
	case parsing.KindEmptyDocument:
		respond.Error(c, http.StatusUnprocessableEntity, "empty_document", "File appears to be empty", nil)
	case parsing.KindUpstreamUnavailable:
		writeUpstreamError(c, err)
	case parsing.KindMalformedResponse:
		respond.Error(c, http.StatusBadGateway, "ai_malformed_response", "Failed to process resume data. Please try again.", nil)
	case parsing.KindIncompleteResponse:
		respond.Error(c, http.StatusBadGateway, "ai_incomplete_response", "Failed to process resume data. Please try again.",
			schemaDetails(err))
	case parsing.KindTimeout:
		respond.Error(c, http.StatusGatewayTimeout, "timeout", "Parsing took too long. Please try again.", nil)
	case parsing.KindCanceled:
		respond.Error(c, statusClientClosedRequest, "canceled", "Request canceled", nil)
	default:
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to save resume", nil)
	}
}

func schemaDetails(err error) any {
	var schemaErr *resume.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Violations
	}
	return nil
}

func (h *Handler) get(c *gin.Context) {
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeLookupError(c, err, "failed to fetch resume")
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) file(c *gin.Context) {
	res, rc, err := h.Svc.OpenOriginal(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeLookupError(c, err, "failed to open file")
		return
	}
	defer rc.Close()

	mediaType := res.SourceMediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(res.SourceFileName, `"`, "")+`"`)
	c.DataFromReader(http.StatusOK, res.SourceSizeBytes, mediaType, rc, nil)
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeLookupError(c, err, "failed to list resumes")
		return
	}

	resp := make([]SummaryResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toSummary(item))
	}
	respond.OK(c, resp)
}

type updateRequest struct {
	Title string          `json:"title"`
	Data  json.RawMessage `json:"data"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "data is required", nil)
		return
	}

	res, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Title, req.Data)
	if err != nil {
		var editErr *resume.EditError
		switch {
		case errors.As(err, &editErr):
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "resume data failed validation", editErr.Fields)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "resume data is incomplete or malformed", schemaDetails(err))
		default:
			writeLookupError(c, err, "failed to update resume")
		}
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeLookupError(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeLookupError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
