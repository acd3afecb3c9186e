// Package retry 提供有界重试能力
//
// 用于吸收短暂的写冲突（如MySQL死锁、锁等待超时）：
// 事务因冲突回滚后整体重做，重试耗尽仍失败才把错误抛给调用方。
//
// 设计要点：
// 1. 只重试"可重试"的错误（由IsRetryable判定），业务错误立即返回
// 2. 重试次数有上限，防止活锁
// 3. 每次重试之间做指数退避，降低再次撞车的概率
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config 重试配置
type Config struct {
	// MaxAttempts 最大执行次数（含首次，建议2-5）
	MaxAttempts int

	// BaseDelay 首次重试前的等待时间（后续按2倍递增）
	BaseDelay time.Duration

	// MaxDelay 单次等待时间上限
	MaxDelay time.Duration

	// IsRetryable 判断错误是否可重试
	// 返回false时立即返回该错误，不再重试
	IsRetryable func(err error) bool
}

// DefaultConfig 默认配置（3次，10ms起步，上限200ms）
func DefaultConfig(isRetryable func(err error) bool) Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
		IsRetryable: isRetryable,
	}
}

// Do 执行fn，失败且可重试时重做，直到成功或尝试耗尽
//
// 返回最后一次执行的错误；ctx取消时立即返回ctx.Err()。
//
// 示例：
//
//	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
//	    return txManager.WithTransaction(ctx, borrowOnce)
//	})
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		// 不可重试的错误（业务校验失败等）直接返回
		if cfg.IsRetryable == nil || !cfg.IsRetryable(lastErr) {
			return lastErr
		}

		// 最后一次失败不再等待
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		// 指数退避
		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("重试%d次后仍失败: %w", cfg.MaxAttempts, lastErr)
}
