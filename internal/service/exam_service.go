package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/model"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/rules"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
)

// ── 考试模块业务错误 ──

var (
	ErrExamNotFound        = errors.New("examen no encontrado")
	ErrExamIndexOutOfRange = errors.New("índice fuera de rango")
	ErrExamBusy            = errors.New("otro registro del mismo curso está en curso, intente nuevamente")
	ErrExamInvalid         = errors.New("datos de examen inválidos")
)

// EntryInvalidError 字段校验失败，Errors 为逐项错误信息
type EntryInvalidError struct {
	Errors []string
}

func (e *EntryInvalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExamInvalid.Error(), strings.Join(e.Errors, "; "))
}

func (e *EntryInvalidError) Unwrap() error { return ErrExamInvalid }

// ExamService 考试记录业务接口
//
// 记录创建后不可修改，编辑一律为删除 + 新增（Replace 在同一事务内完成）。
type ExamService interface {
	Validate(ctx context.Context, req *dto.ExamEntryRequest) *dto.ExamValidationResponse
	Create(ctx context.Context, req *dto.ExamEntryRequest) (*dto.ExamEntryResponse, error)
	List(ctx context.Context, req *dto.ExamListRequest) ([]dto.ExamEntryResponse, error)
	DeleteByIndex(ctx context.Context, index int) error
	Delete(ctx context.Context, id string) error
	DeleteByKey(ctx context.Context, req *dto.ExamDeleteByKeyRequest) error
	Replace(ctx context.Context, id string, req *dto.ExamEntryRequest) (*dto.ExamEntryResponse, error)
}

type examService struct {
	exams   repository.ExamRepository
	mapper  *mapper.Mapper
	checker *rules.Checker
	locker  *courseLocker
	logger  *zap.Logger
}

// NewExamService 创建 ExamService 实例
func NewExamService(
	exams repository.ExamRepository,
	m *mapper.Mapper,
	checker *rules.Checker,
	locker *courseLocker,
	logger *zap.Logger,
) ExamService {
	if locker == nil {
		locker = newCourseLocker(nil, 0, logger)
	}
	return &examService{exams: exams, mapper: m, checker: checker, locker: locker, logger: logger}
}

// ────────────────────── Validate ──────────────────────

func (s *examService) Validate(_ context.Context, req *dto.ExamEntryRequest) *dto.ExamValidationResponse {
	res := s.mapper.Validate(toAPIEntry(req))
	return &dto.ExamValidationResponse{Valid: res.Valid, Errors: res.Errors}
}

// ────────────────────── Create ──────────────────────
//
// 校验 → 日历规则 → 映射 → 加课程锁 → 事务内（同课程记录 + 完整规则检查 + 插入）

func (s *examService) Create(ctx context.Context, req *dto.ExamEntryRequest) (*dto.ExamEntryResponse, error) {
	entry, cand, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, cand.CourseKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.exams.CreateChecked(ctx, entry, s.checkFunc(cand)); err != nil {
		return nil, s.mapWriteErr(err, cand)
	}

	s.logger.Info("考试已登记",
		zap.String("id", entry.ExamEntryID),
		zap.String("course_key", entry.CourseKey),
		zap.String("fecha", entry.Fecha),
		zap.String("periodo", entry.Periodo),
	)
	resp := s.toResponse(*entry, "")
	return &resp, nil
}

// prepare 完成写入前不依赖存储的全部检查
func (s *examService) prepare(req *dto.ExamEntryRequest) (*model.ExamEntry, rules.Candidate, error) {
	api := toAPIEntry(req)

	if res := s.mapper.Validate(api); !res.Valid {
		return nil, rules.Candidate{}, &EntryInvalidError{Errors: res.Errors}
	}

	// 课程已由 Validate 确认存在；先跑日历规则，周末日期报告为 NonBusinessDay 而非映射失败
	courseKey, _ := s.mapper.Catalog().CourseKey(api.Curso)
	cand := rules.Candidate{CourseKey: courseKey, Fecha: api.Fecha, Periodo: api.Periodo}
	if err := s.checker.Check(cand, nil); err != nil {
		return nil, cand, err
	}

	stored, err := s.mapper.ToStorage(api)
	if err != nil {
		return nil, cand, err
	}

	// 模糊匹配命中多位教师时取目录顺序第一位
	if match, ok := s.mapper.Catalog().MatchTeacher(api.Docente); ok && match.Ambiguous() {
		s.logger.Debug("教师名存在歧义，取目录顺序第一位",
			zap.String("docente", api.Docente),
			zap.String("resolved", match.Teacher.Code),
			zap.Int("candidates", len(match.Candidates)),
		)
	}

	return &model.ExamEntry{
		CourseKey: stored.CourseKey,
		Fecha:     api.Fecha,
		Periodo:   stored.Periodo,
		Dia:       string(stored.Dia),
		Materia:   stored.Materia,
		Docente:   stored.Docente,
	}, cand, nil
}

func (s *examService) checkFunc(cand rules.Candidate) repository.CheckFunc {
	return func(existing []model.ExamEntry) error {
		return s.checker.Check(cand, existing)
	}
}

// mapWriteErr 唯一索引冲突与规则检查的重复统一为 DuplicateEntry
func (s *examService) mapWriteErr(err error, cand rules.Candidate) error {
	var rej *rules.RejectionError
	switch {
	case errors.As(err, &rej):
		s.logger.Debug("考试被规则拒绝",
			zap.String("course_key", cand.CourseKey),
			zap.String("fecha", cand.Fecha),
			zap.String("reason", rej.Kind.Error()),
		)
		return err
	case errors.Is(err, pkgerrors.ErrDuplicateSlot):
		return &rules.RejectionError{Kind: rules.ErrDuplicateEntry, Message: "Ya existe examen para ese curso/fecha/periodo"}
	case errors.Is(err, pkgerrors.ErrEntryNotFound):
		return ErrExamNotFound
	default:
		s.logger.Error("写入考试失败", zap.String("course_key", cand.CourseKey), zap.Error(err))
		return err
	}
}

// ────────────────────── List ──────────────────────

func (s *examService) List(ctx context.Context, req *dto.ExamListRequest) ([]dto.ExamEntryResponse, error) {
	filter, err := s.resolveFilter(req)
	if err != nil {
		return nil, err
	}

	entries, err := s.exams.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出考试失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExamEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, s.toResponse(e, req.WeekAnchor))
	}
	return result, nil
}

// resolveFilter docente 可以是简码或（部分）姓名，curso 可以是课程名或 course_key
func (s *examService) resolveFilter(req *dto.ExamListRequest) (repository.ExamFilter, error) {
	var filter repository.ExamFilter
	cat := s.mapper.Catalog()

	if d := strings.TrimSpace(req.Docente); d != "" {
		if _, ok := cat.TeacherName(strings.ToUpper(d)); ok {
			filter.Docente = strings.ToUpper(d)
		} else if t, ok := cat.ResolveTeacher(d); ok {
			filter.Docente = t.Code
		} else {
			return filter, &mapper.MappingError{Kind: mapper.ErrUnknownTeacher, Value: d}
		}
	}

	if c := strings.TrimSpace(req.Curso); c != "" {
		if cat.HasCourseKey(c) {
			filter.CourseKey = c
		} else if key, ok := cat.CourseKey(c); ok {
			filter.CourseKey = key
		} else {
			return filter, &mapper.MappingError{Kind: mapper.ErrUnknownCourse, Value: c}
		}
	}
	return filter, nil
}

// ────────────────────── Delete ──────────────────────

// DeleteByIndex 按全量列表（插入顺序）的下标删除
func (s *examService) DeleteByIndex(ctx context.Context, index int) error {
	entries, err := s.exams.List(ctx, repository.ExamFilter{})
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return ErrExamIndexOutOfRange
	}
	return s.Delete(ctx, entries[index].ExamEntryID)
}

func (s *examService) Delete(ctx context.Context, id string) error {
	if err := s.exams.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrEntryNotFound) {
			return ErrExamNotFound
		}
		s.logger.Error("删除考试失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("考试已删除", zap.String("id", id))
	return nil
}

func (s *examService) DeleteByKey(ctx context.Context, req *dto.ExamDeleteByKeyRequest) error {
	courseKey := req.CourseKey
	if courseKey == "" {
		key, ok := s.mapper.Catalog().CourseKey(req.Curso)
		if !ok {
			return &mapper.MappingError{Kind: mapper.ErrUnknownCourse, Value: req.Curso}
		}
		courseKey = key
	}

	if err := s.exams.DeleteByKey(ctx, courseKey, req.Fecha, req.Periodo); err != nil {
		if errors.Is(err, pkgerrors.ErrEntryNotFound) {
			return ErrExamNotFound
		}
		s.logger.Error("按复合键删除考试失败", zap.String("course_key", courseKey), zap.Error(err))
		return err
	}
	s.logger.Info("考试已删除",
		zap.String("course_key", courseKey),
		zap.String("fecha", req.Fecha),
		zap.String("periodo", req.Periodo),
	)
	return nil
}

// ────────────────────── Replace ──────────────────────

func (s *examService) Replace(ctx context.Context, id string, req *dto.ExamEntryRequest) (*dto.ExamEntryResponse, error) {
	entry, cand, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, cand.CourseKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.exams.Replace(ctx, id, entry, s.checkFunc(cand)); err != nil {
		return nil, s.mapWriteErr(err, cand)
	}

	s.logger.Info("考试已替换", zap.String("old_id", id), zap.String("id", entry.ExamEntryID))
	resp := s.toResponse(*entry, "")
	return &resp, nil
}

// ── 辅助函数 ──

func toAPIEntry(req *dto.ExamEntryRequest) mapper.APIEntry {
	return mapper.APIEntry{
		Curso:   strings.TrimSpace(req.Curso),
		Fecha:   strings.TrimSpace(req.Fecha),
		Periodo: strings.TrimSpace(req.Periodo),
		Materia: strings.TrimSpace(req.Materia),
		Docente: strings.TrimSpace(req.Docente),
	}
}

// toResponse weekAnchor 为空时按记录自身所在周还原日期，即原样返回 fecha
func (s *examService) toResponse(e model.ExamEntry, weekAnchor string) dto.ExamEntryResponse {
	resp := dto.ExamEntryResponse{
		ID:            e.ExamEntryID,
		Curso:         e.CourseKey,
		CourseKey:     e.CourseKey,
		Fecha:         e.Fecha,
		Dia:           e.Dia,
		Periodo:       e.Periodo,
		Materia:       e.Materia,
		Docente:       e.Docente,
		DocenteNombre: e.Docente,
	}
	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}

	anchor := weekAnchor
	if anchor == "" {
		var err error
		if anchor, err = mapper.WeekAnchorOf(e.Fecha); err != nil {
			return resp
		}
	}

	api, err := s.mapper.ToAPI(mapper.StorageEntry{
		CourseKey: e.CourseKey,
		Dia:       mapper.Dia(e.Dia),
		Periodo:   e.Periodo,
		Materia:   e.Materia,
		Docente:   e.Docente,
	}, anchor)
	if err != nil {
		// 目录变更后旧记录可能无法还原，保留存储形态字段
		s.logger.Warn("考试记录无法还原为 API 形态", zap.String("id", e.ExamEntryID), zap.Error(err))
		return resp
	}
	resp.Curso = api.Curso
	resp.Fecha = api.Fecha
	resp.DocenteNombre = api.Docente
	return resp
}
