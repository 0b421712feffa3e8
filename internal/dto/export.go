package dto

// ── 导出 / 校验 / 导入 DTO ──

// ValidateExportRequest 导出文档校验查询参数（文档本身为请求体）
type ValidateExportRequest struct {
	Fix    bool `form:"fix"`
	Formal bool `form:"formal"`
}

// ImportRequest 导入查询参数
type ImportRequest struct {
	DryRun bool `form:"dry_run"`
}

// IntegrityResult 单个块的哈希比对
type IntegrityResult struct {
	Block    string `json:"block"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Match    bool   `json:"match"`
}

// ValidationReportResponse 导出文档校验报告
type ValidationReportResponse struct {
	Outcome        string            `json:"outcome"`
	ExitCode       int               `json:"exit_code"`
	SchemaErrors   []string          `json:"schema_errors,omitempty"`
	Integrity      []IntegrityResult `json:"integrity,omitempty"`
	Fixed          bool              `json:"fixed"`
	Warnings       []string          `json:"warnings,omitempty"`
	SemanticErrors []string          `json:"semantic_errors,omitempty"`
	// Corrected fix 模式下修正后的完整文档
	Corrected interface{} `json:"corrected,omitempty"`
}

// ImportRejection 导入时被拒绝的条目
type ImportRejection struct {
	CourseKey string `json:"course_key"`
	Index     int    `json:"index"`
	Fecha     string `json:"fecha,omitempty"`
	Periodo   string `json:"periodo,omitempty"`
	Reason    string `json:"reason"`
}

// ImportResult 导入结果统计
type ImportResult struct {
	DryRun      bool              `json:"dry_run"`
	Cursos      int               `json:"cursos"`
	Asignaturas int               `json:"asignaturas"`
	Docentes    int               `json:"docentes"`
	Entradas    int               `json:"entradas"`
	Importadas  int               `json:"importadas"`
	Rechazadas  []ImportRejection `json:"rechazadas"`
	Warnings    []string          `json:"warnings,omitempty"`
}
