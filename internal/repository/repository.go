package repository

import (
	"gorm.io/gorm"

	"github.com/reyesbrostec/deceAUM/internal/catalog"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Exam    ExamRepository
	Catalog CatalogRepository
	// Backend 当前生效的存储后端：database | memory
	Backend string
}

// NewRepository 创建基于数据库的 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Exam:    NewExamRepo(db),
		Catalog: NewCatalogRepo(db),
		Backend: "database",
	}
}

// NewMemoryRepository 创建进程内 Repository 聚合，目录使用内置数据
func NewMemoryRepository() *Repository {
	return &Repository{
		Exam:    NewMemoryExamRepo(),
		Catalog: NewStaticCatalogRepo(catalog.Default()),
		Backend: "memory",
	}
}
