package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CartCleaner 删除过期购物车
type CartCleaner interface {
	CleanupStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

// CartCleanupTask 定期清理长期未下单的匿名购物车
type CartCleanupTask struct {
	cleaner CartCleaner
	cron    *cron.Cron
	spec    string
	maxAge  time.Duration
	timeout time.Duration
	log     *zap.Logger

	// 手动触发与定时执行互斥；定时任务之间的重叠由 cron 链处理
	running sync.Mutex
}

func NewCartCleanupTask(cleaner CartCleaner, spec string, maxAge time.Duration, log *zap.Logger) *CartCleanupTask {
	log = log.Named("cart_cleanup")
	cronLog := cron.PrintfLogger(zap.NewStdLog(log))
	return &CartCleanupTask{
		cleaner: cleaner,
		cron: cron.New(
			cron.WithSeconds(), // 支持秒级控制
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		spec:    spec,
		maxAge:  maxAge,
		timeout: 5 * time.Minute,
		log:     log,
	}
}

// Start 注册并启动定时任务
func (t *CartCleanupTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.running.Lock()
		defer t.running.Unlock()
		_, _ = t.cleanup(ctx)
	}); err != nil {
		return err
	}

	t.cron.Start()
	t.log.Info("cart cleanup task started", zap.String("spec", t.spec), zap.Duration("max_age", t.maxAge))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (t *CartCleanupTask) Stop() {
	<-t.cron.Stop().Done()
	t.log.Info("cart cleanup task stopped")
}

// RunOnce 立即执行一次，上一轮仍在运行时跳过
func (t *CartCleanupTask) RunOnce(ctx context.Context) (int64, error) {
	if !t.running.TryLock() {
		t.log.Warn("previous cleanup still running, skipped")
		return 0, nil
	}
	defer t.running.Unlock()
	return t.cleanup(ctx)
}

func (t *CartCleanupTask) cleanup(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := t.cleaner.CleanupStale(ctx, t.maxAge)
	if err != nil {
		t.log.Error("cart cleanup failed", zap.Error(err))
		return 0, err
	}
	t.log.Info("cart cleanup finished",
		zap.Int64("removed", removed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return removed, nil
}
