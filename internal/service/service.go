package service

import (
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/config"
	"github.com/reyesbrostec/deceAUM/internal/catalog"
	"github.com/reyesbrostec/deceAUM/internal/mapper"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/rules"
	"github.com/reyesbrostec/deceAUM/internal/schema"
	pkgredis "github.com/reyesbrostec/deceAUM/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Catalog    CatalogService
	Exam       ExamService
	Export     ExportService
	Validation ValidationService
	Import     ImportService
}

// NewService 创建 Service 聚合。rdb 为 nil 表示未启用 Redis。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cat *catalog.Catalog,
	rdb *pkgredis.Client,
	logger *zap.Logger,
) *Service {
	m := mapper.New(cat)
	checker := rules.NewChecker(NormativaFromConfig(&cfg.Normativa))
	locker := newCourseLocker(rdb, cfg.Redis.LockTTL, logger)

	exam := NewExamService(repo.Exam, m, checker, locker, logger)
	validation := NewValidationService(logger)

	return &Service{
		Catalog:    NewCatalogService(cat, logger),
		Exam:       exam,
		Export:     NewExportService(repo.Exam, cat, checker.Normativa(), &cfg.Schedule, rdb, cfg.Redis.CacheTTL, logger),
		Validation: validation,
		Import:     NewImportService(repo.Exam, exam, validation, m, checker, cfg.Schedule.WeekAnchor, logger),
	}
}

// NormativaFromConfig 由配置构建规则块（配置已在加载时校验）
func NormativaFromConfig(cfg *config.NormativaConfig) schema.Normativa {
	return schema.Normativa{
		LimiteExamenesPorDia: cfg.LimiteExamenesPorDia,
		VentanaDiagnostica: schema.VentanaDiagnostica{
			Inicio: cfg.VentanaDiagnostica.Inicio,
			Fin:    cfg.VentanaDiagnostica.Fin,
		},
	}
}
