package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/internal/catalog"
)

func TestCatalogService_Get(t *testing.T) {
	svc := NewCatalogService(catalog.Default(), zap.NewNop())

	resp := svc.Get(context.Background())
	if resp.Stats.Cursos != 14 || resp.Stats.Docentes != 19 || resp.Stats.Asignaturas != 14 {
		t.Errorf("统计不符: %+v", resp.Stats)
	}
	if len(resp.Periodos) != 8 || resp.Periodos[0] != "I" {
		t.Errorf("课时列表不符: %v", resp.Periodos)
	}
}

func TestCatalogService_ResolveTeacher(t *testing.T) {
	svc := NewCatalogService(catalog.Default(), zap.NewNop())
	ctx := context.Background()

	exact, err := svc.ResolveTeacher(ctx, "malla santiago")
	if err != nil {
		t.Fatal(err)
	}
	if exact.ID != "MS" || exact.Fuzzy || exact.Ambiguous {
		t.Errorf("精确匹配不符: %+v", exact)
	}

	// REYES 同时命中 REYES DANIEL 与 REYES MIRYAM，取目录中第一个
	fuzzy, err := svc.ResolveTeacher(ctx, "REYES")
	if err != nil {
		t.Fatal(err)
	}
	if fuzzy.ID != "DR" || !fuzzy.Fuzzy || !fuzzy.Ambiguous || len(fuzzy.Candidates) != 2 {
		t.Errorf("模糊匹配不符: %+v", fuzzy)
	}

	if _, err := svc.ResolveTeacher(ctx, "NADIE"); !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("期望 ErrTeacherNotFound，实际: %v", err)
	}
}

func TestCatalogService_NormalizeSubject(t *testing.T) {
	svc := NewCatalogService(catalog.Default(), zap.NewNop())

	if got := svc.NormalizeSubject(context.Background(), " matemáticas "); got != "MATEMÁTICAS" {
		t.Errorf("期望 MATEMÁTICAS，实际 %s", got)
	}
	if got := svc.NormalizeSubject(context.Background(), "robótica"); got != "ROBÓTICA" {
		t.Errorf("不在目录中的科目应原样大写，实际 %s", got)
	}
}
