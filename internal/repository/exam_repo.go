package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reyesbrostec/deceAUM/internal/model"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
)

// CheckFunc 在写入前对同课程的现有记录做检查，返回非 nil 则放弃写入
type CheckFunc func(existing []model.ExamEntry) error

// ExamFilter 列表过滤条件，空字段不过滤
type ExamFilter struct {
	CourseKey string
	Docente   string
}

// ExamRepository 考试记录数据访问接口
// 列表按插入顺序返回；DeleteByIndex 依赖该顺序
type ExamRepository interface {
	// CreateChecked 检查与写入在同一事务内完成
	CreateChecked(ctx context.Context, entry *model.ExamEntry, check CheckFunc) error
	List(ctx context.Context, filter ExamFilter) ([]model.ExamEntry, error)
	GetByID(ctx context.Context, id string) (*model.ExamEntry, error)
	Delete(ctx context.Context, id string) error
	DeleteByKey(ctx context.Context, courseKey, fecha, periodo string) error
	// Replace 删除 id 对应记录并写入新记录；检查时不包含被删除的记录
	Replace(ctx context.Context, id string, entry *model.ExamEntry, check CheckFunc) error
}

// ── gorm 实现 ──

type examRepo struct {
	db *gorm.DB
}

func NewExamRepo(db *gorm.DB) ExamRepository {
	return &examRepo{db: db}
}

func (r *examRepo) CreateChecked(ctx context.Context, entry *model.ExamEntry, check CheckFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertChecked(tx, entry, check)
	})
}

func insertChecked(tx *gorm.DB, entry *model.ExamEntry, check CheckFunc) error {
	if check != nil {
		var existing []model.ExamEntry
		if err := tx.Where("course_key = ?", entry.CourseKey).
			Order("seq ASC").
			Find(&existing).Error; err != nil {
			return wrapStoreErr(err)
		}
		if err := check(existing); err != nil {
			return err
		}
	}
	if entry.ExamEntryID == "" {
		entry.ExamEntryID = uuid.NewString()
	}
	seq, err := nextSeq(tx)
	if err != nil {
		return err
	}
	entry.Seq = seq
	if err := tx.Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrDuplicateSlot
		}
		return wrapStoreErr(err)
	}
	return nil
}

// nextSeq 计数器行的更新锁把并发写入的序号分配串行化，事务回滚时序号一并回滚
func nextSeq(tx *gorm.DB) (int64, error) {
	if err := tx.Exec("UPDATE exam_seq SET value = value + 1 WHERE id = 1").Error; err != nil {
		return 0, wrapStoreErr(err)
	}
	var seq int64
	if err := tx.Raw("SELECT value FROM exam_seq WHERE id = 1").Scan(&seq).Error; err != nil {
		return 0, wrapStoreErr(err)
	}
	return seq, nil
}

func (r *examRepo) List(ctx context.Context, filter ExamFilter) ([]model.ExamEntry, error) {
	q := r.db.WithContext(ctx).Model(&model.ExamEntry{})
	if filter.CourseKey != "" {
		q = q.Where("course_key = ?", filter.CourseKey)
	}
	if filter.Docente != "" {
		q = q.Where("docente = ?", filter.Docente)
	}
	var entries []model.ExamEntry
	if err := q.Order("seq ASC").Find(&entries).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return entries, nil
}

func (r *examRepo) GetByID(ctx context.Context, id string) (*model.ExamEntry, error) {
	var entry model.ExamEntry
	err := r.db.WithContext(ctx).Where("exam_entry_id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrEntryNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &entry, nil
}

func (r *examRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("exam_entry_id = ?", id).Delete(&model.ExamEntry{})
	return rowsOrNotFound(result)
}

func (r *examRepo) DeleteByKey(ctx context.Context, courseKey, fecha, periodo string) error {
	result := r.db.WithContext(ctx).
		Where("course_key = ? AND fecha = ? AND periodo = ?", courseKey, fecha, periodo).
		Delete(&model.ExamEntry{})
	return rowsOrNotFound(result)
}

func (r *examRepo) Replace(ctx context.Context, id string, entry *model.ExamEntry, check CheckFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rowsOrNotFound(tx.Where("exam_entry_id = ?", id).Delete(&model.ExamEntry{})); err != nil {
			return err
		}
		return insertChecked(tx, entry, check)
	})
}

func rowsOrNotFound(result *gorm.DB) error {
	if result.Error != nil {
		return wrapStoreErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrEntryNotFound
	}
	return nil
}

// wrapStoreErr 底层驱动错误统一标记为存储不可用，保留原始错误链
func wrapStoreErr(err error) error {
	return errors.Join(pkgerrors.ErrStoreUnavailable, err)
}
