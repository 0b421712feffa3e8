package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/service"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
	"github.com/reyesbrostec/deceAUM/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出与导出文档校验处理器
type ExportHandler struct {
	exportSvc     service.ExportService
	validationSvc service.ValidationService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, validationSvc service.ValidationService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, validationSvc: validationSvc}
}

// ExportJSON 合并导出文档 v0.2
// GET /api/v1/export
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	data, err := h.exportSvc.ExportJSON(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ExportExcel 导出 Excel
// GET /api/v1/export/xlsx
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportExcel(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportICS 导出 iCalendar
// GET /api/v1/export/ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	data, filename, err := h.exportSvc.ExportICS(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeICS, data)
}

// ValidateExport 校验上传的导出文档
// POST /api/v1/export/validate?fix=true&formal=true
//
// 文档本身的问题（结构、哈希、语义）均以 200 + 报告返回，由 outcome 区分。
func (h *ExportHandler) ValidateExport(c *gin.Context) {
	var req dto.ValidateExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetros inválidos")
		return
	}

	raw, err := readUpload(c)
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Documento demasiado grande")
			return
		}
		response.BadRequest(c, 22001, "No se pudo leer el documento")
		return
	}
	if len(raw) == 0 {
		response.BadRequest(c, 22001, "Documento vacío")
		return
	}

	report, err := h.validationSvc.Validate(c.Request.Context(), raw, req.Fix, req.Formal)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, h.validationSvc.ToResponse(report))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportEmpty):
		response.NotFound(c, 22401, service.ErrExportEmpty.Error())
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		response.ServiceUnavailable(c, 50301, pkgerrors.ErrStoreUnavailable.Error())
	default:
		response.InternalError(c)
	}
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
