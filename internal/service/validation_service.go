package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/dto"
	"github.com/reyesbrostec/deceAUM/internal/schema"
	"github.com/reyesbrostec/deceAUM/internal/validator"
)

// ValidationService 导出文档校验接口
type ValidationService interface {
	Validate(ctx context.Context, raw []byte, fix, formal bool) (*validator.Report, error)
	ToResponse(report *validator.Report) *dto.ValidationReportResponse
}

type validationService struct {
	validator *validator.Validator
	logger    *zap.Logger

	formalOnce sync.Once
	formal     *schema.Formal
	formalErr  error
}

// NewValidationService 创建 ValidationService 实例
func NewValidationService(logger *zap.Logger) ValidationService {
	return &validationService{validator: validator.New(logger), logger: logger}
}

func (s *validationService) Validate(_ context.Context, raw []byte, fix, formal bool) (*validator.Report, error) {
	opts := validator.Options{Fix: fix}
	if formal {
		f, err := s.formalSchema()
		if err != nil {
			return nil, err
		}
		opts.Formal = f
	}

	report, err := s.validator.Validate(raw, opts)
	if err != nil {
		s.logger.Error("导出文档校验失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("导出文档已校验",
		zap.Stringer("outcome", report.Outcome),
		zap.Bool("fixed", report.Fixed),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

// formalSchema 内嵌 schema 只编译一次
func (s *validationService) formalSchema() (*schema.Formal, error) {
	s.formalOnce.Do(func() {
		s.formal, s.formalErr = schema.CompileEmbedded()
		if s.formalErr != nil {
			s.logger.Error("编译内嵌 JSON Schema 失败", zap.Error(s.formalErr))
		}
	})
	return s.formal, s.formalErr
}

func (s *validationService) ToResponse(report *validator.Report) *dto.ValidationReportResponse {
	resp := &dto.ValidationReportResponse{
		Outcome:        report.Outcome.String(),
		ExitCode:       report.Outcome.ExitCode(),
		SchemaErrors:   report.SchemaErrors,
		Fixed:          report.Fixed,
		Warnings:       report.Warnings,
		SemanticErrors: report.SemanticErrors,
	}
	for _, c := range report.Integrity {
		resp.Integrity = append(resp.Integrity, dto.IntegrityResult{
			Block:    c.Block,
			Expected: c.Expected,
			Actual:   c.Actual,
			Match:    c.Match,
		})
	}
	if len(report.Corrected) > 0 {
		resp.Corrected = json.RawMessage(report.Corrected)
	}
	return resp
}
