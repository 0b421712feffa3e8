package dto

// ── 考试模块 DTO ──

// ExamEntryRequest 新增或替换考试请求（API 形态）
// 字段是否齐全由 mapper.Validate 统一检查，以返回逐项错误
type ExamEntryRequest struct {
	Curso   string `json:"curso"   binding:"max=120"`
	Fecha   string `json:"fecha"   binding:"max=10"`
	Periodo string `json:"periodo" binding:"max=8"`
	Materia string `json:"materia" binding:"max=120"`
	Docente string `json:"docente" binding:"max=120"`
}

// ExamListRequest 考试列表查询参数
type ExamListRequest struct {
	Docente    string `form:"docente"     binding:"omitempty,max=120"`
	Curso      string `form:"curso"       binding:"omitempty,max=120"`
	WeekAnchor string `form:"week_anchor" binding:"omitempty,datetime=2006-01-02"`
}

// ExamDeleteByIndexRequest 按列表下标删除
type ExamDeleteByIndexRequest struct {
	Index *int `form:"i" binding:"required,min=0"`
}

// ExamDeleteByKeyRequest 按复合键删除；course_key 与 curso 二选一
type ExamDeleteByKeyRequest struct {
	CourseKey string `form:"course_key" binding:"omitempty,max=64"`
	Curso     string `form:"curso"      binding:"omitempty,max=120"`
	Fecha     string `form:"fecha"      binding:"required,datetime=2006-01-02"`
	Periodo   string `form:"periodo"    binding:"required,max=8"`
}

// ── 响应 ──

// ExamEntryResponse 考试记录响应，同时给出 API 形态与存储形态字段
type ExamEntryResponse struct {
	ID            string `json:"id"`
	Curso         string `json:"curso"`
	CourseKey     string `json:"course_key"`
	Fecha         string `json:"fecha"`
	Dia           string `json:"dia"`
	Periodo       string `json:"periodo"`
	Materia       string `json:"materia"`
	Docente       string `json:"docente"`
	DocenteNombre string `json:"docente_nombre"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// ExamValidationResponse 字段校验结果
type ExamValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
