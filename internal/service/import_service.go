package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/rules"
	"github.com/reyesbrostec/deceAUM/internal/schema"
	"github.com/reyesbrostec/deceAUM/internal/validator"
)

// ── 导入模块业务错误 ──

var (
	ErrImportRejected = errors.New("documento rechazado por la validación")
)

// ImportRejectedError 文档未通过校验，携带完整报告
type ImportRejectedError struct {
	Report *validator.Report
}

func (e *ImportRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrImportRejected.Error(), e.Report.Outcome)
}

func (e *ImportRejectedError) Unwrap() error { return ErrImportRejected }

// ImportService 导入接口
//
// 文档先整体校验（Valid 或 ValidWithWarnings 才继续），再逐条走正常的新增流程，
// 每条记录仍受规则检查约束。dryRun 在当前数据的内存副本上执行，不写入存储。
type ImportService interface {
	Import(ctx context.Context, raw []byte, dryRun bool) (*dto.ImportResult, error)
	ImportICS(ctx context.Context, r io.Reader, dryRun bool) (*dto.ImportResult, error)
}

type importService struct {
	exams      repository.ExamRepository
	exam       ExamService
	validation ValidationService
	mapper     *mapper.Mapper
	checker    *rules.Checker
	weekAnchor string
	logger     *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(
	exams repository.ExamRepository,
	exam ExamService,
	validation ValidationService,
	m *mapper.Mapper,
	checker *rules.Checker,
	weekAnchor string,
	logger *zap.Logger,
) ImportService {
	return &importService{
		exams:      exams,
		exam:       exam,
		validation: validation,
		mapper:     m,
		checker:    checker,
		weekAnchor: weekAnchor,
		logger:     logger,
	}
}

// importItem 待导入的一条记录；err 非空表示转换阶段已失败
type importItem struct {
	courseKey string
	index     int
	req       dto.ExamEntryRequest
	err       error
}

// ────────────────────── Import (JSON v0.2) ──────────────────────

func (s *importService) Import(ctx context.Context, raw []byte, dryRun bool) (*dto.ImportResult, error) {
	report, err := s.validation.Validate(ctx, raw, false, false)
	if err != nil {
		return nil, err
	}
	if !report.Outcome.Accepted() {
		return nil, &ImportRejectedError{Report: report}
	}

	var doc schema.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("documento no decodificable: %w", err)
	}

	result := &dto.ImportResult{DryRun: dryRun, Warnings: report.Warnings}
	subjects := make(map[string]bool)
	teachers := make(map[string]bool)

	keys := make([]string, 0, len(doc.Schedule.Cursos))
	for k := range doc.Schedule.Cursos {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var items []importItem
	for _, key := range keys {
		for i, it := range doc.Schedule.Cursos[key] {
			subjects[it.Materia] = true
			teachers[it.Docente] = true
			items = append(items, s.fromDocumentItem(key, i, it))
		}
	}
	result.Cursos = len(keys)
	result.Asignaturas = len(subjects)
	result.Docentes = len(teachers)
	result.Entradas = len(items)

	if err := s.run(ctx, items, result); err != nil {
		return nil, err
	}
	return result, nil
}

// fromDocumentItem 存储形态 → API 请求。fecha 缺失时按配置的周一基准由 dia 还原。
func (s *importService) fromDocumentItem(key string, index int, it schema.Item) importItem {
	item := importItem{courseKey: key, index: index}
	cat := s.mapper.Catalog()

	curso, ok := cat.CourseName(key)
	if !ok {
		item.err = &mapper.MappingError{Kind: mapper.ErrUnknownCourseKey, Value: key}
		return item
	}

	fecha := it.Fecha
	if fecha == "" {
		f, err := mapper.DiaToFecha(mapper.Dia(it.Dia), s.weekAnchor)
		if err != nil {
			item.err = err
			return item
		}
		fecha = f
	}

	// 文档中 docente 为简码；不在目录中时按姓名交给映射器解析
	docente := it.Docente
	if name, ok := cat.TeacherName(it.Docente); ok {
		docente = name
	}

	item.req = dto.ExamEntryRequest{
		Curso:   curso,
		Fecha:   fecha,
		Periodo: it.Periodo,
		Materia: it.Materia,
		Docente: docente,
	}
	return item
}

// ────────────────────── ImportICS ──────────────────────

func (s *importService) ImportICS(ctx context.Context, r io.Reader, dryRun bool) (*dto.ImportResult, error) {
	entries, skipped, err := ParseExamICS(r)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{DryRun: dryRun}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d eventos sin datos de examen omitidos", skipped))
	}

	courses := make(map[string]bool)
	subjects := make(map[string]bool)
	teachers := make(map[string]bool)
	counter := make(map[string]int)

	items := make([]importItem, 0, len(entries))
	for _, e := range entries {
		key := e.Curso
		if k, ok := s.mapper.Catalog().CourseKey(e.Curso); ok {
			key = k
		}
		courses[key] = true
		subjects[e.Materia] = true
		teachers[e.Docente] = true

		items = append(items, importItem{
			courseKey: key,
			index:     counter[key],
			req: dto.ExamEntryRequest{
				Curso:   e.Curso,
				Fecha:   e.Fecha,
				Periodo: e.Periodo,
				Materia: e.Materia,
				Docente: e.Docente,
			},
		})
		counter[key]++
	}
	result.Cursos = len(courses)
	result.Asignaturas = len(subjects)
	result.Docentes = len(teachers)
	result.Entradas = len(items)

	if err := s.run(ctx, items, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ── 执行 ──

// run 逐条新增；规则拒绝与映射失败记为 rechazadas，存储故障中止导入
func (s *importService) run(ctx context.Context, items []importItem, result *dto.ImportResult) error {
	target := s.exam
	if result.DryRun {
		sandbox, err := s.sandbox(ctx)
		if err != nil {
			return err
		}
		target = sandbox
	}

	result.Rechazadas = make([]dto.ImportRejection, 0)
	for _, it := range items {
		err := it.err
		if err == nil {
			req := it.req
			_, err = target.Create(ctx, &req)
		}
		if err == nil {
			result.Importadas++
			continue
		}
		if !isEntryRejection(err) {
			s.logger.Error("导入中止", zap.String("course_key", it.courseKey), zap.Int("index", it.index), zap.Error(err))
			return err
		}
		result.Rechazadas = append(result.Rechazadas, dto.ImportRejection{
			CourseKey: it.courseKey,
			Index:     it.index,
			Fecha:     it.req.Fecha,
			Periodo:   it.req.Periodo,
			Reason:    err.Error(),
		})
	}

	s.logger.Info("导入完成",
		zap.Bool("dry_run", result.DryRun),
		zap.Int("entradas", result.Entradas),
		zap.Int("importadas", result.Importadas),
		zap.Int("rechazadas", len(result.Rechazadas)),
	)
	return nil
}

// sandbox 以当前数据的内存副本构建 ExamService，供 dry run 使用
func (s *importService) sandbox(ctx context.Context) (ExamService, error) {
	current, err := s.exams.List(ctx, repository.ExamFilter{})
	if err != nil {
		return nil, err
	}
	mem := repository.NewMemoryExamRepo()
	for i := range current {
		e := current[i]
		if err := mem.CreateChecked(ctx, &e, nil); err != nil {
			return nil, err
		}
	}
	return NewExamService(mem, s.mapper, s.checker, nil, s.logger), nil
}

// isEntryRejection 单条记录层面的失败（不影响后续记录）
func isEntryRejection(err error) bool {
	var (
		rej     *rules.RejectionError
		mapping *mapper.MappingError
		invalid *EntryInvalidError
	)
	return errors.As(err, &rej) ||
		errors.As(err, &mapping) ||
		errors.As(err, &invalid) ||
		errors.Is(err, mapper.ErrInvalidDay) ||
		errors.Is(err, mapper.ErrInvalidDate)
}
