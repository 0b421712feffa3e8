package dto

import "github.com/reyesbrostec/deceAUM/internal/catalog"

// ── 目录模块 DTO ──

// CatalogLookupRequest 教师名解析 / 科目归一化查询参数
type CatalogLookupRequest struct {
	Nombre string `form:"nombre" binding:"required,max=120"`
}

// CatalogResponse 三张目录及统计
type CatalogResponse struct {
	Cursos      []catalog.Course  `json:"cursos"`
	Docentes    []catalog.Teacher `json:"docentes"`
	Asignaturas []catalog.Subject `json:"asignaturas"`
	Stats       catalog.Stats     `json:"stats"`
	Periodos    []string          `json:"periodos"`
}

// TeacherMatchResponse 教师名解析结果
type TeacherMatchResponse struct {
	ID         string            `json:"id"`
	Nombre     string            `json:"nombre"`
	Fuzzy      bool              `json:"fuzzy"`
	Ambiguous  bool              `json:"ambiguous"`
	Candidates []catalog.Teacher `json:"candidates,omitempty"`
}
