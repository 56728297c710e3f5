package handler

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	transferapp "github.com/storefront/backend/internal/application/transfer"
	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/storefront/backend/internal/infrastructure/archive"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Importer applies an uploaded archive
type Importer interface {
	Import(ctx context.Context, in transferapp.ImportInput) (*transfer.Report, error)
}

// Exporter builds a downloadable archive
type Exporter interface {
	Export(ctx context.Context, in transferapp.ExportInput) (*transferapp.ExportResult, error)
}

// HistoryReader lists past runs
type HistoryReader interface {
	Limit(requested int) int
	Recent(ctx context.Context, limit int) ([]bulk.TransferRun, error)
}

// TransferHandler serves the bulk import and export endpoints
type TransferHandler struct {
	BaseHandler
	importer      Importer
	exporter      Exporter
	history       HistoryReader
	importTimeout time.Duration
}

// NewTransferHandler creates a new TransferHandler. A zero importTimeout
// leaves imports bounded only by the client connection.
func NewTransferHandler(importer Importer, exporter Exporter, history HistoryReader, importTimeout time.Duration) *TransferHandler {
	return &TransferHandler{
		importer:      importer,
		exporter:      exporter,
		history:       history,
		importTimeout: importTimeout,
	}
}

// Import godoc
// @Summary      Import an archive
// @Description  Accepts a multipart upload with the archive in "file" and the optional "clear" and "noImport" flags, and answers 201 with the report
// @Tags         transfer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "JSON, CSV or gzip tarball archive"
// @Param        clear formData string false "Clear the archive's collections first" Enums(true, false, 1, 0)
// @Param        noImport formData string false "Only clear, import nothing" Enums(true, false, 1, 0)
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Success      201 {object} transfer.Report
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "archive exceeds maximum allowed size")
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationRequired, "file is required")
		return
	}

	var form dto.ImportForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	clear, err := parseFlag("clear", form.Clear)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, err.Error())
		return
	}
	noImport, err := parseFlag("noImport", form.NoImport)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	if h.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.importTimeout)
		defer cancel()
	}

	report, err := h.importer.Import(ctx, transferapp.ImportInput{
		FileName:    fileHeader.Filename,
		MimeType:    archiveType(fileHeader),
		Body:        file,
		Clear:       clear,
		NoImport:    noImport,
		RequestedBy: requester(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// Export godoc
// @Summary      Export collections
// @Description  Streams the requested collections as an attachment in the requested format
// @Tags         transfer
// @Accept       json
// @Produce      application/json,text/csv,application/gzip
// @Param        request body dto.ExportRequest true "Collections and format"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /export [post]
func (h *TransferHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.exporter.Export(c.Request.Context(), transferapp.ExportInput{
		Types:       req.Data,
		Format:      req.Format,
		RequestedBy: requester(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Types godoc
// @Summary      List data types
// @Description  Lists the collections in dependency order with their dependencies
// @Tags         transfer
// @Produce      json
// @Success      200 {object} dto.Response{data=[]dto.DataTypeResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfer/types [get]
func (h *TransferHandler) Types(c *gin.Context) {
	h.Success(c, dto.NewDataTypeResponses(transfer.DependencyOrder()))
}

// History godoc
// @Summary      List transfer history
// @Description  Lists the most recent import and export runs, newest first
// @Tags         transfer
// @Produce      json
// @Param        limit query int false "Maximum entries" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]dto.TransferRunResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transfer/history [get]
func (h *TransferHandler) History(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	runs, err := h.history.Recent(c.Request.Context(), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, dto.NewTransferRunResponses(runs), len(runs), h.history.Limit(q.Limit))
}

func parseFlag(name, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, value)
	}
	return b, nil
}

// archiveType prefers the part's Content-Type and falls back to the file
// extension when the client sent none or a generic one.
func archiveType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}
	return archive.MIMEFromFileName(fh.Filename)
}

func requester(c *gin.Context) string {
	if email := middleware.GetJWTEmail(c); email != "" {
		return email
	}
	if id := middleware.GetJWTUserID(c); id != 0 {
		return strconv.FormatUint(uint64(id), 10)
	}
	return ""
}
