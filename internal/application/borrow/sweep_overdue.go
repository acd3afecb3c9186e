package borrow

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/domain/user"
	"github.com/linkai/library/pkg/metrics"
	"github.com/linkai/library/pkg/tracing"
)

// SweepOverdueUseCase 逾期巡检用例
// 扫描应还时间已过且仍为"借出中"的记录,标记为"已逾期"并发布催还通知。
// 幂等:已标记过的记录不会重复标记;与归还并发时归还优先。
type SweepOverdueUseCase struct {
	borrowRepo borrow.Repository
	bookRepo   book.Repository
	userRepo   user.Repository
	notifier   borrow.Notifier
	batchSize  int
}

// NewSweepOverdueUseCase 创建逾期巡检用例
// notifier可以为nil(未配置MQ时只标记不通知)
func NewSweepOverdueUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	notifier borrow.Notifier,
	batchSize int,
) *SweepOverdueUseCase {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &SweepOverdueUseCase{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		batchSize:  batchSize,
	}
}

// SweepOverdueResponse 巡检结果DTO
// Records为本次实际标记为逾期的记录(附带用户与图书摘要)
type SweepOverdueResponse struct {
	Scanned  int          `json:"scanned"`  // 扫描到的到期记录数
	Marked   int          `json:"marked"`   // 实际标记为逾期的记录数
	Notified int          `json:"notified"` // 成功发布通知的记录数
	Records  []*RecordDTO `json:"records"`  // 被标记的记录明细
	SweptAt  string       `json:"swept_at"`
}

// Execute 执行逾期巡检
//
// 标记用条件UPDATE(仅status=借出中时生效),不在长事务里逐条锁:
// - 单条标记失败不影响其他记录
// - 扫描到的记录在标记前被归还,条件UPDATE不生效(归还优先),计入跳过
// - 重复执行巡检结果一致(幂等)
//
// 通知是旁路:发布失败只记录日志,不回滚标记。
func (uc *SweepOverdueUseCase) Execute(ctx context.Context) (*SweepOverdueResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "library-api", "SweepOverdue")
	defer span.End()

	start := time.Now()
	now := time.Now()

	records, err := uc.borrowRepo.FindDueBefore(ctx, now, uc.batchSize)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp := &SweepOverdueResponse{
		Scanned: len(records),
		Records: make([]*RecordDTO, 0, len(records)),
		SweptAt: now.Format(time.RFC3339),
	}

	for _, r := range records {
		marked, err := uc.borrowRepo.MarkOverdue(ctx, r.ID, now)
		if err != nil {
			log.Printf("[WARN] 标记逾期失败: record_id=%d, err=%v", r.ID, err)
			continue
		}
		if !marked {
			// 扫描后已被归还或已标记,跳过
			continue
		}

		resp.Marked++
		metrics.IncCounter(metrics.OverdueMarkedTotal)

		// 扫描快照是"借出中",落库后实际状态已是"已逾期"
		r.Status = borrow.StatusOverdue
		r.UpdatedAt = now
		resp.Records = append(resp.Records, toRecordDTO(r))

		if uc.notify(ctx, r, now) {
			resp.Notified++
		}
	}

	joinSummaries(ctx, uc.userRepo, uc.bookRepo, resp.Records)

	metrics.ObserveHistogram(metrics.SweepDuration, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("scanned", resp.Scanned),
		attribute.Int("marked", resp.Marked),
	)

	log.Printf("[INFO] 逾期巡检完成: 扫描=%d, 标记=%d, 通知=%d",
		resp.Scanned, resp.Marked, resp.Notified)

	return resp, nil
}

// notify 组装并发布催还通知(尽最大努力,失败不中断巡检)
func (uc *SweepOverdueUseCase) notify(ctx context.Context, r *borrow.Record, now time.Time) bool {
	if uc.notifier == nil {
		return false
	}

	u, err := uc.userRepo.FindByID(ctx, r.UserID)
	if err != nil {
		log.Printf("[WARN] 组装催还通知失败(查用户): record_id=%d, err=%v", r.ID, err)
		return false
	}
	b, err := uc.bookRepo.FindByID(ctx, r.BookID)
	if err != nil {
		log.Printf("[WARN] 组装催还通知失败(查图书): record_id=%d, err=%v", r.ID, err)
		return false
	}

	// 与罚金结算同口径:不足1天按1天计
	overdueDays := borrow.OverdueDays(r.DueDate, now)

	notice := &borrow.OverdueNotice{
		RecordID:   r.ID,
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		BookID:     b.ID,
		BookTitle:  b.Title,
		DueDate:    r.DueDate,
		OverdueDay: overdueDays,
		MarkedAt:   now,
	}

	if err := uc.notifier.NotifyOverdue(ctx, notice); err != nil {
		log.Printf("[WARN] 发布催还通知失败: record_id=%d, err=%v", r.ID, err)
		return false
	}
	return true
}
