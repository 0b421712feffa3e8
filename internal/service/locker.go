package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	pkgredis "github.com/reyesbrostec/deceAUM/pkg/redis"
)

const defaultLockTTL = 5 * time.Second

// courseLocker 按课程串行化写入：检查与插入之间不能有同课程的其他写入插队。
// 进程内用互斥锁；启用 Redis 时再叠加分布式锁，覆盖多实例部署。
type courseLocker struct {
	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	rdb    *pkgredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func newCourseLocker(rdb *pkgredis.Client, ttl time.Duration, logger *zap.Logger) *courseLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &courseLocker{
		locks:  make(map[string]*sync.Mutex),
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (l *courseLocker) local(courseKey string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[courseKey]
	if !ok {
		m = &sync.Mutex{}
		l.locks[courseKey] = m
	}
	return m
}

// Lock 获取课程锁，返回释放函数。
// Redis 锁在 ttl 内未获取到返回 ErrExamBusy；Redis 本身出错时降级为仅进程内锁。
func (l *courseLocker) Lock(ctx context.Context, courseKey string) (func(), error) {
	m := l.local(courseKey)
	m.Lock()

	if l.rdb == nil {
		return m.Unlock, nil
	}

	lock, err := l.rdb.AcquireLock(ctx, "course:"+courseKey, l.ttl, l.ttl)
	switch {
	case err == nil:
		return func() {
			_ = lock.Release(context.Background())
			m.Unlock()
		}, nil
	case errors.Is(err, pkgredis.ErrLockNotAcquired):
		m.Unlock()
		return nil, ErrExamBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.Unlock()
		return nil, err
	default:
		l.logger.Warn("Redis 锁不可用，仅使用进程内锁", zap.String("course_key", courseKey), zap.Error(err))
		return m.Unlock, nil
	}
}
