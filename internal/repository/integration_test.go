//go:build integration

package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/reyesbrostec/deceAUM/config"
	"github.com/reyesbrostec/deceAUM/internal/repository"
	"github.com/reyesbrostec/deceAUM/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

// openTestDB 每个测试使用独立的 sqlite 文件并执行全部迁移
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "dece.db"),
	}
	db, err := database.NewDB(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// ═══════════════════════════════════════════════════════════
// Test: Exam Repository
// ═══════════════════════════════════════════════════════════

func TestExamRepo_Contract(t *testing.T) {
	runExamRepoContract(t, func(t *testing.T) repository.ExamRepository {
		return repository.NewExamRepo(openTestDB(t))
	})
}

// ═══════════════════════════════════════════════════════════
// Test: Catalog Seed
// ═══════════════════════════════════════════════════════════

func TestCatalogRepo_LoadsSeededTables(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))

	cat, ok, err := repo.Catalog.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("期望读取到种子目录，ok=%v err=%v", ok, err)
	}

	stats := cat.Stats()
	if stats.Cursos != 14 || stats.Docentes != 19 || stats.Asignaturas != 14 {
		t.Errorf("目录数量不符: %+v", stats)
	}
	if key, ok := cat.CourseKey("tercero de basica"); !ok || key != "TERCERO_DE_BASICA" {
		t.Errorf("课程查找失败: %s %v", key, ok)
	}
	// sort_order 保持内置顺序，模糊匹配结果与内置目录一致
	if teacher, ok := cat.ResolveTeacher("REYES"); !ok || teacher.Code != "DR" {
		t.Errorf("期望 REYES → DR，实际 %+v", teacher)
	}
}

func TestCatalogRepo_EmptyTables(t *testing.T) {
	db := openTestDB(t)
	db.Exec("DELETE FROM subjects")

	_, ok, err := repository.NewCatalogRepo(db).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("目录表为空时应返回 ok=false")
	}
}
