package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

type FileHandler struct {
	BaseHandler
	bank      *services.QuestionBankService
	exporter  *services.ExportService
	validator *validator.Validator
}

func NewFileHandler(
	bank *services.QuestionBankService,
	exporter *services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(logger),
		bank:        bank,
		exporter:    exporter,
		validator:   validator,
	}
}

// ListFiles returns the files found by the last scan
// @Router /files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	h.LogRequest(c, "Listing question files")
	c.JSON(http.StatusOK, h.bank.GetAllAvailableFiles())
}

// ScanFiles rescans the questions directory
// @Router /files/scan [post]
func (h *FileHandler) ScanFiles(c *gin.Context) {
	h.LogRequest(c, "Scanning question files")

	files, err := h.bank.Scan(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// SelectFiles replaces the active question pool
// @Router /files/select [post]
func (h *FileHandler) SelectFiles(c *gin.Context) {
	req, ok := h.bindFileNames(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Selecting question files", "files", req.Files)

	if err := h.bank.SelectFiles(c.Request.Context(), req.Files); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.bank.GetAllAvailableFiles())
}

// DeselectFiles removes files from the active question pool
// @Router /files/deselect [post]
func (h *FileHandler) DeselectFiles(c *gin.Context) {
	req, ok := h.bindFileNames(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Deselecting question files", "files", req.Files)

	h.bank.DeselectFiles(c.Request.Context(), req.Files)
	c.JSON(http.StatusOK, h.bank.GetAllAvailableFiles())
}

// ResetMetadata resets every rank of a file to the default
// @Router /files/{name}/reset [post]
func (h *FileHandler) ResetMetadata(c *gin.Context) {
	name := ParseStringIDParam(c, "name")
	if name == "" {
		return
	}
	h.LogRequest(c, "Resetting metadata", "file", name)

	if err := h.bank.ResetMetadata(c.Request.Context(), name); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Metadata reset", nil)
}

// DeleteMetadata removes a file's metadata from disk
// @Router /files/{name}/metadata [delete]
func (h *FileHandler) DeleteMetadata(c *gin.Context) {
	name := ParseStringIDParam(c, "name")
	if name == "" {
		return
	}
	h.LogRequest(c, "Deleting metadata", "file", name)

	if err := h.bank.DeleteMetadata(c.Request.Context(), name); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Metadata deleted", nil)
}

// GetStats returns the rank distribution of every file
// @Router /stats [get]
func (h *FileHandler) GetStats(c *gin.Context) {
	h.LogRequest(c, "Getting file stats")

	stats, err := h.bank.GetFileStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportProgress downloads a progress report of the loaded questions
// @Router /export [get]
func (h *FileHandler) ExportProgress(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	if req.Format == "" {
		req.Format = models.ExportCSV
	}
	h.LogRequest(c, "Exporting progress", "format", req.Format)

	data, err := h.exporter.Export(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	contentType := "text/csv"
	if req.Format == models.ExportXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	filename := fmt.Sprintf("progress-%s.%s", time.Now().Format("20060102"), req.Format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *FileHandler) bindFileNames(c *gin.Context) (*FileNamesRequest, bool) {
	var req FileNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return nil, false
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return nil, false
	}
	return &req, true
}
