// Package mapper 在 API 形态（课程名、教师全名、日期）与存储形态
// （course_key、教师简码、工作日）之间转换单条考试记录。
package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reyesbrostec/deceAUM/internal/catalog"
)

// APIEntry 考试记录的 API 形态
type APIEntry struct {
	Curso   string `json:"curso"`
	Fecha   string `json:"fecha"` // YYYY-MM-DD
	Periodo string `json:"periodo"`
	Materia string `json:"materia"`
	Docente string `json:"docente"` // 教师全名
}

// StorageEntry 考试记录的存储形态。Dia 由 fecha 推导，不能单独设置。
type StorageEntry struct {
	CourseKey string `json:"course_key"`
	Dia       Dia    `json:"dia"`
	Periodo   string `json:"periodo"`
	Materia   string `json:"materia"`
	Docente   string `json:"docente"` // 教师简码
}

// Periodos 合法的课时编号
var Periodos = []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII"}

var fechaPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidPeriodo 判断课时编号是否合法
func ValidPeriodo(p string) bool {
	for _, v := range Periodos {
		if v == p {
			return true
		}
	}
	return false
}

// ValidationResult 字段校验结果
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Mapper 依赖注入的目录做双向映射，本身无状态
type Mapper struct {
	catalog *catalog.Catalog
}

// New 创建 Mapper
func New(c *catalog.Catalog) *Mapper {
	return &Mapper{catalog: c}
}

// Catalog 返回注入的目录
func (m *Mapper) Catalog() *catalog.Catalog { return m.catalog }

// ToStorage API 形态 → 存储形态；任何一步失败都不返回部分结果
func (m *Mapper) ToStorage(e APIEntry) (StorageEntry, error) {
	courseKey, ok := m.catalog.CourseKey(e.Curso)
	if !ok {
		return StorageEntry{}, mappingErr(ErrUnknownCourse, e.Curso)
	}

	dia, ok := FechaToDia(e.Fecha)
	if !ok {
		return StorageEntry{}, mappingErr(ErrInvalidDate, e.Fecha)
	}

	teacher, ok := m.catalog.ResolveTeacher(e.Docente)
	if !ok {
		return StorageEntry{}, mappingErr(ErrUnknownTeacher, e.Docente)
	}

	return StorageEntry{
		CourseKey: courseKey,
		Dia:       dia,
		Periodo:   e.Periodo,
		Materia:   strings.ToUpper(e.Materia),
		Docente:   teacher.Code,
	}, nil
}

// ToAPI 存储形态 → API 形态。weekAnchor 为约定的周一日期，用于还原 fecha。
func (m *Mapper) ToAPI(e StorageEntry, weekAnchor string) (APIEntry, error) {
	curso, ok := m.catalog.CourseName(e.CourseKey)
	if !ok {
		return APIEntry{}, mappingErr(ErrUnknownCourseKey, e.CourseKey)
	}

	fecha, err := DiaToFecha(e.Dia, weekAnchor)
	if err != nil {
		return APIEntry{}, err
	}

	docente, ok := m.catalog.TeacherName(e.Docente)
	if !ok {
		return APIEntry{}, mappingErr(ErrUnknownTeacherCode, e.Docente)
	}

	return APIEntry{
		Curso:   curso,
		Fecha:   fecha,
		Periodo: e.Periodo,
		Materia: e.Materia,
		Docente: docente,
	}, nil
}

// Validate 廉价的形状/必填校验，所有规则都会执行。
// 不检查工作日与教师目录：分别由规则检查与 ToStorage 负责。
func (m *Mapper) Validate(e APIEntry) ValidationResult {
	errs := make([]string, 0)

	required := []struct {
		field, value string
	}{
		{"curso", e.Curso},
		{"fecha", e.Fecha},
		{"periodo", e.Periodo},
		{"materia", e.Materia},
		{"docente", e.Docente},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Sprintf("Campo %s requerido", r.field))
		}
	}

	if e.Curso != "" {
		if _, ok := m.catalog.CourseKey(e.Curso); !ok {
			errs = append(errs, fmt.Sprintf("Curso no válido: %s", e.Curso))
		}
	}
	if e.Fecha != "" && !fechaPattern.MatchString(e.Fecha) {
		errs = append(errs, fmt.Sprintf("Formato de fecha inválido: %s", e.Fecha))
	}
	if e.Periodo != "" && !ValidPeriodo(e.Periodo) {
		errs = append(errs, fmt.Sprintf("Periodo no válido: %s", e.Periodo))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
