package task

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ==================== TaskManager 定时任务管理器 ====================

// TaskManager 统一管理后台定时任务
type TaskManager struct {
	cartCleanup *CartCleanupTask
	log         *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	CartCleaner CartCleaner
	Log         *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 购物车清理，spec 为空表示关闭
	CartCleanupSpec string
	CartMaxAge      time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		CartCleanupSpec: "0 0 3 * * *",
		CartMaxAge:      30 * 24 * time.Hour,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	tm := &TaskManager{log: log.Named("task")}

	if cfg.CartCleanupSpec != "" && cfg.CartMaxAge > 0 && deps.CartCleaner != nil {
		tm.cartCleanup = NewCartCleanupTask(deps.CartCleaner, cfg.CartCleanupSpec, cfg.CartMaxAge, log)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	if tm.cartCleanup != nil {
		if err := tm.cartCleanup.Start(); err != nil {
			return err
		}
	}
	tm.log.Info("tasks started", zap.Any("status", tm.Status()))
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.cartCleanup != nil {
		tm.cartCleanup.Stop()
	}
	tm.log.Info("tasks stopped")
}

// ==================== 手动触发接口 ====================

// TriggerCartCleanup 立即清理过期购物车
func (tm *TaskManager) TriggerCartCleanup(ctx context.Context) (int64, error) {
	if tm.cartCleanup == nil {
		return 0, ErrTaskDisabled
	}
	return tm.cartCleanup.RunOnce(ctx)
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"cart_cleanup": tm.cartCleanup != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
