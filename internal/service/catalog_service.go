package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/catalog"
	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
)

// ── 目录模块业务错误 ──

var (
	ErrTeacherNotFound = errors.New("docente no encontrado en catálogo")
)

// CatalogService 目录查询接口（目录启动后只读）
type CatalogService interface {
	Get(ctx context.Context) *dto.CatalogResponse
	ResolveTeacher(ctx context.Context, nombre string) (*dto.TeacherMatchResponse, error)
	NormalizeSubject(ctx context.Context, nombre string) string
}

type catalogService struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(cat *catalog.Catalog, logger *zap.Logger) CatalogService {
	return &catalogService{catalog: cat, logger: logger}
}

func (s *catalogService) Get(_ context.Context) *dto.CatalogResponse {
	return &dto.CatalogResponse{
		Cursos:      s.catalog.Courses(),
		Docentes:    s.catalog.Teachers(),
		Asignaturas: s.catalog.Subjects(),
		Stats:       s.catalog.Stats(),
		Periodos:    append([]string(nil), mapper.Periodos...),
	}
}

// ResolveTeacher 精确优先、模糊兜底；模糊命中多位教师时标记 ambiguous 并返回全部候选
func (s *catalogService) ResolveTeacher(_ context.Context, nombre string) (*dto.TeacherMatchResponse, error) {
	m, ok := s.catalog.MatchTeacher(nombre)
	if !ok {
		return nil, ErrTeacherNotFound
	}
	if m.Ambiguous() {
		s.logger.Debug("教师名模糊匹配存在歧义",
			zap.String("input", nombre),
			zap.String("chosen", m.Teacher.Code),
			zap.Int("candidates", len(m.Candidates)),
		)
	}

	resp := &dto.TeacherMatchResponse{
		ID:        m.Teacher.Code,
		Nombre:    m.Teacher.Name,
		Fuzzy:     m.Fuzzy,
		Ambiguous: m.Ambiguous(),
	}
	if m.Ambiguous() {
		resp.Candidates = m.Candidates
	}
	return resp, nil
}

func (s *catalogService) NormalizeSubject(_ context.Context, nombre string) string {
	return s.catalog.NormalizeSubject(nombre)
}
