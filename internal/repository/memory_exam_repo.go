package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reyesbrostec/deceAUM/internal/model"
	pkgerrors "github.com/reyesbrostec/deceAUM/pkg/errors"
)

// memoryExamRepo 进程内存储，数据库不可用时的替代实现，对外行为与 gorm 实现一致
type memoryExamRepo struct {
	mu      sync.RWMutex
	entries []model.ExamEntry
	seq     int64
	now     func() time.Time
}

func NewMemoryExamRepo() ExamRepository {
	return &memoryExamRepo{now: time.Now}
}

func (r *memoryExamRepo) CreateChecked(_ context.Context, entry *model.ExamEntry, check CheckFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(entry, check)
}

func (r *memoryExamRepo) insertLocked(entry *model.ExamEntry, check CheckFunc) error {
	if check != nil {
		if err := check(r.filterLocked(ExamFilter{CourseKey: entry.CourseKey})); err != nil {
			return err
		}
	}
	for i := range r.entries {
		if r.entries[i].SameSlot(entry.CourseKey, entry.Fecha, entry.Periodo) {
			return pkgerrors.ErrDuplicateSlot
		}
	}
	if entry.ExamEntryID == "" {
		entry.ExamEntryID = uuid.NewString()
	}
	r.seq++
	entry.Seq = r.seq
	now := r.now()
	entry.CreatedAt, entry.UpdatedAt = now, now
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryExamRepo) List(_ context.Context, filter ExamFilter) ([]model.ExamEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filterLocked(filter), nil
}

func (r *memoryExamRepo) filterLocked(filter ExamFilter) []model.ExamEntry {
	out := make([]model.ExamEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if filter.CourseKey != "" && e.CourseKey != filter.CourseKey {
			continue
		}
		if filter.Docente != "" && e.Docente != filter.Docente {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r *memoryExamRepo) GetByID(_ context.Context, id string) (*model.ExamEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.entries {
		if r.entries[i].ExamEntryID == id {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, pkgerrors.ErrEntryNotFound
}

func (r *memoryExamRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(func(e *model.ExamEntry) bool { return e.ExamEntryID == id })
}

func (r *memoryExamRepo) DeleteByKey(_ context.Context, courseKey, fecha, periodo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(func(e *model.ExamEntry) bool { return e.SameSlot(courseKey, fecha, periodo) })
}

func (r *memoryExamRepo) Replace(_ context.Context, id string, entry *model.ExamEntry, check CheckFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := append([]model.ExamEntry(nil), r.entries...)
	if err := r.removeLocked(func(e *model.ExamEntry) bool { return e.ExamEntryID == id }); err != nil {
		return err
	}
	if err := r.insertLocked(entry, check); err != nil {
		r.entries = snapshot
		return err
	}
	return nil
}

func (r *memoryExamRepo) removeLocked(match func(*model.ExamEntry) bool) error {
	kept := r.entries[:0:0]
	removed := 0
	for i := range r.entries {
		if match(&r.entries[i]) {
			removed++
			continue
		}
		kept = append(kept, r.entries[i])
	}
	if removed == 0 {
		return pkgerrors.ErrEntryNotFound
	}
	r.entries = kept
	return nil
}
