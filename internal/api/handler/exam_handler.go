package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/rules"
	"github.com/reyesbrostec/deceAUM/internal/service"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
	"github.com/reyesbrostec/deceAUM/pkg/response"
)

// ExamHandler 考试模块 HTTP 处理器
type ExamHandler struct {
	examSvc service.ExamService
}

// NewExamHandler 创建 ExamHandler
func NewExamHandler(examSvc service.ExamService) *ExamHandler {
	return &ExamHandler{examSvc: examSvc}
}

// ListExams 获取考试列表
// GET /api/v1/exams?docente=&curso=&week_anchor=
func (h *ExamHandler) ListExams(c *gin.Context) {
	var req dto.ExamListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetros inválidos")
		return
	}

	list, err := h.examSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// CreateExam 登记考试
// POST /api/v1/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req dto.ExamEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetros inválidos")
		return
	}

	exam, err := h.examSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.Created(c, exam)
}

// ValidateExam 仅做字段校验，不写入
// POST /api/v1/exams/validate
func (h *ExamHandler) ValidateExam(c *gin.Context) {
	var req dto.ExamEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetros inválidos")
		return
	}

	response.OK(c, h.examSvc.Validate(c.Request.Context(), &req))
}

// DeleteExamByIndex 按列表下标删除
// DELETE /api/v1/exams?i=
func (h *ExamHandler) DeleteExamByIndex(c *gin.Context) {
	var req dto.ExamDeleteByIndexRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetro i requerido")
		return
	}

	if err := h.examSvc.DeleteByIndex(c.Request.Context(), *req.Index); err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteExam 按 ID 删除
// DELETE /api/v1/exams/:id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "ID de examen requerido")
		return
	}

	if err := h.examSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteExamByKey 按 (curso, fecha, periodo) 删除
// DELETE /api/v1/exams/by-key?course_key=&fecha=&periodo=
func (h *ExamHandler) DeleteExamByKey(c *gin.Context) {
	var req dto.ExamDeleteByKeyRequest
	if err := c.ShouldBindQuery(&req); err != nil || (req.CourseKey == "" && req.Curso == "") {
		response.BadRequest(c, 10001, "Parámetros inválidos: course_key o curso, fecha y periodo son requeridos")
		return
	}

	if err := h.examSvc.DeleteByKey(c.Request.Context(), &req); err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, nil)
}

// ReplaceExam 替换考试（删除 + 新增）
// PUT /api/v1/exams/:id
func (h *ExamHandler) ReplaceExam(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "ID de examen requerido")
		return
	}

	var req dto.ExamEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Parámetros inválidos")
		return
	}

	exam, err := h.examSvc.Replace(c.Request.Context(), id, &req)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, exam)
}

// handleExamError 统一处理考试模块业务错误
func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	var (
		invalid *service.EntryInvalidError
		rej     *rules.RejectionError
		mapping *mapper.MappingError
	)
	switch {
	case errors.As(err, &invalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20001, "Datos de examen inválidos", invalid.Errors)
	case errors.As(err, &rej):
		h.handleRejection(c, rej)
	case errors.As(err, &mapping):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20002, mapping.Error(), gin.H{"value": mapping.Value})
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 20401, "Examen no encontrado")
	case errors.Is(err, service.ErrExamIndexOutOfRange):
		response.NotFound(c, 20402, "Índice fuera de rango")
	case errors.Is(err, service.ErrExamBusy):
		response.Conflict(c, 20904, service.ErrExamBusy.Error())
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		response.ServiceUnavailable(c, 50301, pkgerrors.ErrStoreUnavailable.Error())
	default:
		response.InternalError(c)
	}
}

// handleRejection 日历类拒绝为 400，容量类拒绝为 409
func (h *ExamHandler) handleRejection(c *gin.Context, rej *rules.RejectionError) {
	switch {
	case errors.Is(rej, rules.ErrNonBusinessDay):
		response.BadRequest(c, 20003, rej.Error())
	case errors.Is(rej, rules.ErrOutsideWindow):
		response.BadRequest(c, 20004, rej.Error())
	case errors.Is(rej, rules.ErrDuplicateEntry):
		response.Conflict(c, 20901, rej.Error())
	case errors.Is(rej, rules.ErrDailyLimitExceeded):
		response.ErrorWithDetails(c, http.StatusConflict, 20902, rej.Error(), gin.H{"used": rej.Used, "limit": rej.Limit})
	case errors.Is(rej, rules.ErrWeekdayDensityExceeded):
		response.ErrorWithDetails(c, http.StatusConflict, 20903, rej.Error(), gin.H{"used": rej.Used, "limit": rej.Limit})
	default:
		response.Conflict(c, 20900, rej.Error())
	}
}
