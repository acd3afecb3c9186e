package borrow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/infrastructure/persistence/mysql"
	apperrors "github.com/linkai/library/pkg/errors"
	"github.com/linkai/library/pkg/metrics"
	"github.com/linkai/library/pkg/retry"
	"github.com/linkai/library/pkg/tracing"
)

// ReturnBookUseCase 还书用例
type ReturnBookUseCase struct {
	borrowRepo borrow.Repository
	bookRepo   book.Repository
	txManager  TxManager
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	txManager TxManager,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		txManager:  txManager,
	}
}

// ReturnBookRequest 还书请求DTO
type ReturnBookRequest struct {
	RecordID uint // 借阅记录ID
	UserID   uint // 操作人用户ID(从JWT中提取)
	IsAdmin  bool // 管理员可代还任意记录
}

// ReturnBookResponse 还书响应DTO
type ReturnBookResponse struct {
	RecordID   uint   `json:"record_id"`
	BookID     uint   `json:"book_id"`
	ReturnDate string `json:"return_date"`
	Fine       int64  `json:"fine"`
	Status     string `json:"status"`
}

// Execute 执行还书用例
//
// 事务流程:
//  1. SELECT FOR UPDATE锁定借阅记录(与逾期巡检的条件UPDATE互斥,
//     保证"归还优先":先归还则巡检标记不生效,先标记则归还照常结算罚金)
//  2. 权限检查:普通读者只能归还自己的记录
//  3. 状态流转:借出中/已逾期→已归还,重复归还返回ErrAlreadyReturned
//  4. 归还时刻一次性结算罚金
//  5. 条件UPDATE加回在架数,越过总数说明台账漂移,整个事务回滚
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnBookRequest) (*ReturnBookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "library-api", "ReturnBook")
	defer span.End()
	span.SetAttributes(attribute.Int("record_id", int(req.RecordID)))

	record, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		metrics.IncCounterVec(metrics.ReturnsTotal, map[string]string{"result": returnResult(err)})
		return nil, err
	}

	metrics.IncCounterVec(metrics.ReturnsTotal, map[string]string{"result": "success"})
	if record.Fine > 0 {
		metrics.AddCounter(metrics.FinesAssessedTotal, float64(record.Fine))
	}

	return &ReturnBookResponse{
		RecordID:   record.ID,
		BookID:     record.BookID,
		ReturnDate: record.ReturnDate.Format(time.RFC3339),
		Fine:       record.Fine,
		Status:     record.Status.String(),
	}, nil
}

func (uc *ReturnBookUseCase) execute(ctx context.Context, req ReturnBookRequest) (*borrow.Record, error) {
	var record *borrow.Record
	cfg := retry.DefaultConfig(mysql.IsSerializationError)
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		record = nil
		return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
			// 锁定借阅记录
			r, err := uc.borrowRepo.LockByID(txCtx, req.RecordID)
			if err != nil {
				return err
			}

			// 权限检查:普通读者只能归还自己的记录
			if !req.IsAdmin && !r.IsOwnedBy(req.UserID) {
				return borrow.ErrNotRecordOwner
			}

			// 状态流转+罚金结算
			if err := r.Return(time.Now()); err != nil {
				return err
			}

			if err := uc.borrowRepo.Update(txCtx, r); err != nil {
				return err
			}

			// 加回在架数;越过总数上限返回ErrCopyCountDrift,事务回滚
			if err := uc.bookRepo.AdjustAvailable(txCtx, r.BookID, 1); err != nil {
				return err
			}

			record = r
			return nil
		})
	})

	if err != nil {
		if mysql.IsSerializationError(err) {
			return nil, apperrors.ErrTxConflict
		}
		return nil, err
	}

	return record, nil
}

// returnResult 归还结果指标标签
func returnResult(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeAlreadyReturned:
		return "conflict"
	case apperrors.ErrCodeForbidden:
		return "forbidden"
	case apperrors.ErrCodeRecordNotFound:
		return "not_found"
	case apperrors.ErrCodeConsistency:
		return "drift"
	default:
		return "error"
	}
}
