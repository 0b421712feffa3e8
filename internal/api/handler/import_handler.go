package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/service"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
	"github.com/reyesbrostec/deceAUM/pkg/response"
)

// ImportHandler 导入处理器
type ImportHandler struct {
	importSvc     service.ImportService
	validationSvc service.ValidationService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService, validationSvc service.ValidationService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, validationSvc: validationSvc}
}

// ImportDocument 导入合并导出文档 v0.2
// POST /api/v1/import?dry_run=true
func (h *ImportHandler) ImportDocument(c *gin.Context) {
	var req dto.ImportRequest
	raw, ok := h.bindUpload(c, &req)
	if !ok {
		return
	}

	result, err := h.importSvc.Import(c.Request.Context(), raw, req.DryRun)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	respondImport(c, result)
}

// ImportICS 导入 ExportICS 生成的日历
// POST /api/v1/import/ics?dry_run=true
//
// 支持 multipart/form-data（field="file"）或 text/calendar 请求体
func (h *ImportHandler) ImportICS(c *gin.Context) {
	var req dto.ImportRequest
	raw, ok := h.bindUpload(c, &req)
	if !ok {
		return
	}

	result, err := h.importSvc.ImportICS(c.Request.Context(), bytes.NewReader(raw), req.DryRun)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	respondImport(c, result)
}

func (h *ImportHandler) bindUpload(c *gin.Context, req *dto.ImportRequest) ([]byte, bool) {
	if err := c.ShouldBindQuery(req); err != nil {
		response.BadRequest(c, 10001, "Parámetros inválidos")
		return nil, false
	}
	raw, err := readUpload(c)
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Archivo demasiado grande")
			return nil, false
		}
		response.BadRequest(c, 23001, "Suba un archivo en el campo file o envíe el contenido en el cuerpo")
		return nil, false
	}
	if len(raw) == 0 {
		response.BadRequest(c, 23001, "Archivo vacío")
		return nil, false
	}
	return raw, true
}

// respondImport dry run 返回 200，实际写入返回 201
func respondImport(c *gin.Context, result *dto.ImportResult) {
	if result.DryRun {
		response.OK(c, result)
		return
	}
	response.Created(c, result)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	var rejected *service.ImportRejectedError
	switch {
	case errors.As(err, &rejected):
		response.Unprocessable(c, 23002, service.ErrImportRejected.Error(), h.validationSvc.ToResponse(rejected.Report))
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		response.ServiceUnavailable(c, 50301, pkgerrors.ErrStoreUnavailable.Error())
	default:
		// ICS / JSON 无法解析
		response.ErrorWithDetails(c, http.StatusBadRequest, 23003, "Archivo no válido", err.Error())
	}
}
