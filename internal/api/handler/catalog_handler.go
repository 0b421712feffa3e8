package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/schema"
	"github.com/reyesbrostec/deceAUM/internal/service"
	"github.com/reyesbrostec/deceAUM/pkg/response"
)

// CatalogHandler 目录与 schema 查询处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// GetCatalogs 三张目录及统计
// GET /api/v1/catalogs
func (h *CatalogHandler) GetCatalogs(c *gin.Context) {
	response.OK(c, h.catalogSvc.Get(c.Request.Context()))
}

// ResolveTeacher 教师名解析（精确优先，模糊兜底）
// GET /api/v1/catalogs/teachers/resolve?nombre=
func (h *CatalogHandler) ResolveTeacher(c *gin.Context) {
	var req dto.CatalogLookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetro nombre requerido")
		return
	}

	match, err := h.catalogSvc.ResolveTeacher(c.Request.Context(), req.Nombre)
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			response.NotFound(c, 21401, "Docente no encontrado en catálogo")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, match)
}

// NormalizeSubject 科目名归一化
// GET /api/v1/catalogs/subjects/normalize?nombre=
func (h *CatalogHandler) NormalizeSubject(c *gin.Context) {
	var req dto.CatalogLookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetro nombre requerido")
		return
	}

	response.OK(c, gin.H{"materia": h.catalogSvc.NormalizeSubject(c.Request.Context(), req.Nombre)})
}

// GetSchema 内嵌的 v0.2 JSON Schema
// GET /api/v1/schema
func (h *CatalogHandler) GetSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/schema+json", schema.JSONSchemaV02)
}
