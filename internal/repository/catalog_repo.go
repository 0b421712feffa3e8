package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/reyesbrostec/deceAUM/internal/catalog"
	"github.com/reyesbrostec/deceAUM/internal/model"
)

// CatalogRepository 目录表数据访问接口
type CatalogRepository interface {
	// Load 按 sort_order 读取三张目录表；任一表为空时 ok=false
	Load(ctx context.Context) (cat *catalog.Catalog, ok bool, err error)
}

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) Load(ctx context.Context) (*catalog.Catalog, bool, error) {
	db := r.db.WithContext(ctx)

	var courses []model.Course
	if err := db.Order("sort_order ASC, course_key ASC").Find(&courses).Error; err != nil {
		return nil, false, wrapStoreErr(err)
	}
	var teachers []model.Teacher
	if err := db.Order("sort_order ASC, code ASC").Find(&teachers).Error; err != nil {
		return nil, false, wrapStoreErr(err)
	}
	var subjects []model.Subject
	if err := db.Order("sort_order ASC, abbr ASC").Find(&subjects).Error; err != nil {
		return nil, false, wrapStoreErr(err)
	}
	if len(courses) == 0 || len(teachers) == 0 || len(subjects) == 0 {
		return nil, false, nil
	}

	cc := make([]catalog.Course, len(courses))
	for i, c := range courses {
		cc[i] = catalog.Course{Name: c.Name, Key: c.CourseKey}
	}
	tt := make([]catalog.Teacher, len(teachers))
	for i, t := range teachers {
		tt[i] = catalog.Teacher{Code: t.Code, Name: t.Name}
	}
	ss := make([]catalog.Subject, len(subjects))
	for i, s := range subjects {
		ss[i] = catalog.Subject{Abbr: s.Abbr, Name: s.Name}
	}
	return catalog.New(cc, tt, ss), true, nil
}

// staticCatalogRepo 内存模式下直接返回内置目录
type staticCatalogRepo struct {
	cat *catalog.Catalog
}

func NewStaticCatalogRepo(cat *catalog.Catalog) CatalogRepository {
	return &staticCatalogRepo{cat: cat}
}

func (r *staticCatalogRepo) Load(context.Context) (*catalog.Catalog, bool, error) {
	return r.cat, r.cat != nil, nil
}
