package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("deadlock found")
var errBusiness = errors.New("no copies available")

func testConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		IsRetryable: func(err error) bool {
			return errors.Is(err, errTransient)
		},
	}
}

// TestDo_SucceedsFirstAttempt 首次成功不重试
func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
	if calls != 1 {
		t.Errorf("期望执行1次，实际%d次", calls)
	}
}

// TestDo_RetriesTransientError 瞬时错误重试后成功
func TestDo_RetriesTransientError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("期望重试后成功，实际失败: %v", err)
	}
	if calls != 3 {
		t.Errorf("期望执行3次，实际%d次", calls)
	}
}

// TestDo_BusinessErrorNotRetried 业务错误立即返回
func TestDo_BusinessErrorNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig(), func(ctx context.Context) error {
		calls++
		return errBusiness
	})

	if !errors.Is(err, errBusiness) {
		t.Fatalf("期望返回业务错误，实际%v", err)
	}
	if calls != 1 {
		t.Errorf("业务错误不应重试，实际执行%d次", calls)
	}
}

// TestDo_Exhausted 重试耗尽返回最后一次错误
func TestDo_Exhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig(), func(ctx context.Context) error {
		calls++
		return errTransient
	})

	if err == nil {
		t.Fatal("期望失败，实际成功")
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("期望包装最后一次错误，实际%v", err)
	}
	if calls != 3 {
		t.Errorf("期望执行3次，实际%d次", calls)
	}
}

// TestDo_ContextCancelled Context取消时立即退出
func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	cfg := testConfig()
	cfg.BaseDelay = 50 * time.Millisecond

	err := Do(ctx, cfg, func(ctx context.Context) error {
		calls++
		cancel() // 第一次执行后取消
		return errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("期望context.Canceled，实际%v", err)
	}
	if calls != 1 {
		t.Errorf("取消后不应再执行，实际%d次", calls)
	}
}
