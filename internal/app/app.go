package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reyesbrostec/deceAUM/config"
	"github.com/reyesbrostec/deceAUM/internal/catalog"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/internal/service"
	"github.com/reyesbrostec/deceAUM/pkg/database"
	"github.com/reyesbrostec/deceAUM/pkg/redis"
)

// App 组装完成的依赖：Repository → Service
type App struct {
	Config  *config.Config
	Repo    *repository.Repository
	Catalog *catalog.Catalog
	Redis   *redis.Client // 可为 nil
	Service *service.Service

	db     *gorm.DB
	logger *zap.Logger
}

// New 按配置连接存储、加载目录并创建 Service
//
// storage.backend=database 时连接数据库并执行迁移；失败且 fallback_to_memory
// 为 true 时降级为内存存储，否则返回错误。Redis 仅在 redis.addr 非空时启用，
// 连接失败只记录告警。
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	repo, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	a.Repo = repo

	cat, found, err := repo.Catalog.Load(ctx)
	switch {
	case err != nil:
		logger.Warn("加载目录失败，使用内置目录", zap.Error(err))
		cat = catalog.Default()
	case !found:
		logger.Info("数据库目录为空，使用内置目录")
		cat = catalog.Default()
	}
	a.Catalog = cat
	stats := cat.Stats()
	logger.Info("目录已加载",
		zap.Int("cursos", stats.Cursos),
		zap.Int("docentes", stats.Docentes),
		zap.Int("asignaturas", stats.Asignaturas),
	)

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，仅使用进程内锁且不缓存导出", zap.Error(err))
		} else {
			a.Redis = rdb
		}
	}

	a.Service = service.NewService(cfg, repo, cat, a.Redis, logger)
	return a, nil
}

func (a *App) openStorage() (*repository.Repository, error) {
	if a.Config.Storage.Backend == "memory" {
		a.logger.Info("使用内存存储")
		return repository.NewMemoryRepository(), nil
	}

	db, err := a.connectDB()
	if err == nil {
		a.db = db
		return repository.NewRepository(db), nil
	}
	if !a.Config.Storage.FallbackToMemory {
		return nil, err
	}

	a.logger.Warn("数据库不可用，降级为内存存储", zap.Error(err))
	return repository.NewMemoryRepository(), nil
}

func (a *App) connectDB() (*gorm.DB, error) {
	db, err := database.NewDB(&a.Config.Database, a.logger)
	if err != nil {
		return nil, err
	}
	a.logger.Info("数据库连接成功", zap.String("driver", a.Config.Database.Driver))

	if err := database.RunMigrations(db, a.logger); err != nil {
		if sqlDB, e := db.DB(); e == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

// Close 关闭数据库与 Redis 连接
func (a *App) Close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}
