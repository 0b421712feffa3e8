package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/catalog"
	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/model"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/rules"
	"github.com/reyesbrostec/deceAUM/internal/schema"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
)

// ── Mock ExamRepository：存储不可用 ──

type unavailableExamRepo struct{}

func (unavailableExamRepo) CreateChecked(context.Context, *model.ExamEntry, repository.CheckFunc) error {
	return pkgerrors.ErrStoreUnavailable
}

func (unavailableExamRepo) List(context.Context, repository.ExamFilter) ([]model.ExamEntry, error) {
	return nil, pkgerrors.ErrStoreUnavailable
}

func (unavailableExamRepo) GetByID(context.Context, string) (*model.ExamEntry, error) {
	return nil, pkgerrors.ErrStoreUnavailable
}

func (unavailableExamRepo) Delete(context.Context, string) error {
	return pkgerrors.ErrStoreUnavailable
}

func (unavailableExamRepo) DeleteByKey(context.Context, string, string, string) error {
	return pkgerrors.ErrStoreUnavailable
}

func (unavailableExamRepo) Replace(context.Context, string, *model.ExamEntry, repository.CheckFunc) error {
	return pkgerrors.ErrStoreUnavailable
}

// ── 测试辅助 ──

// testNormativa 窗口 2025-09-15（周一）至 2025-09-26（周五），单日上限 3
func testNormativa() schema.Normativa {
	return schema.Normativa{
		LimiteExamenesPorDia: 3,
		VentanaDiagnostica:   schema.VentanaDiagnostica{Inicio: "2025-09-15", Fin: "2025-09-26"},
	}
}

func setupTestExamService(exams repository.ExamRepository) ExamService {
	return NewExamService(exams, mapper.New(catalog.Default()), rules.NewChecker(testNormativa()), nil, zap.NewNop())
}

func examReq(curso, fecha, periodo, materia, docente string) *dto.ExamEntryRequest {
	return &dto.ExamEntryRequest{Curso: curso, Fecha: fecha, Periodo: periodo, Materia: materia, Docente: docente}
}
