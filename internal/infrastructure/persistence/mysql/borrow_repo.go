package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linkai/library/internal/domain/borrow"
	apperrors "github.com/linkai/library/pkg/errors"
)

// borrowRepository 借阅记录仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/borrow/repository.go定义的接口
// 2. 借出/归还的状态变更都在事务内完成(通过context传递事务DB)
// 3. MarkOverdue用条件UPDATE实现"归还优先"的并发语义
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository 创建借阅记录仓储
func NewBorrowRepository(db *gorm.DB) borrow.Repository {
	return &borrowRepository{db: db}
}

// Create 创建借阅记录
func (r *borrowRepository) Create(ctx context.Context, record *borrow.Record) error {
	model := &BorrowRecordModel{
		UserID:     record.UserID,
		BookID:     record.BookID,
		BorrowDate: record.BorrowDate,
		DueDate:    record.DueDate,
		ReturnDate: record.ReturnDate,
		Status:     int(record.Status),
		Fine:       record.Fine,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	record.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找借阅记录
func (r *borrowRepository) FindByID(ctx context.Context, id uint) (*borrow.Record, error) {
	var model BorrowRecordModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toRecordEntity(&model), nil
}

// LockByID 悲观锁查询借阅记录(归还事务中使用)
// SELECT FOR UPDATE防止并发归还/逾期标记互相踩踏
func (r *borrowRepository) LockByID(ctx context.Context, id uint) (*borrow.Record, error) {
	var model BorrowRecordModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "锁定借阅记录失败")
	}

	return toRecordEntity(&model), nil
}

// FindOpenByUserAndBook 查找用户对某图书的未归还记录
// 未归还 = 借出中(1)或已逾期(3)
func (r *borrowRepository) FindOpenByUserAndBook(ctx context.Context, userID, bookID uint) (*borrow.Record, error) {
	var model BorrowRecordModel
	err := r.getDB(ctx).
		Where("user_id = ? AND book_id = ? AND status IN ?", userID, bookID,
			[]int{int(borrow.StatusBorrowed), int(borrow.StatusOverdue)}).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toRecordEntity(&model), nil
}

// CountOpenByBook 统计某图书的未归还记录数
func (r *borrowRepository) CountOpenByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&BorrowRecordModel{}).
		Where("book_id = ? AND status IN ?", bookID,
			[]int{int(borrow.StatusBorrowed), int(borrow.StatusOverdue)}).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计未归还记录失败")
	}

	return count, nil
}

// Update 更新借阅记录(归还结算)
func (r *borrowRepository) Update(ctx context.Context, record *borrow.Record) error {
	model := &BorrowRecordModel{
		ID:         record.ID,
		UserID:     record.UserID,
		BookID:     record.BookID,
		BorrowDate: record.BorrowDate,
		DueDate:    record.DueDate,
		ReturnDate: record.ReturnDate,
		Status:     int(record.Status),
		Fine:       record.Fine,
		CreatedAt:  record.CreatedAt,
	}

	if err := r.getDB(ctx).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新借阅记录失败")
	}

	record.UpdatedAt = model.UpdatedAt
	return nil
}

// ListByUser 查询用户的借阅历史(分页,按借出时间倒序)
func (r *borrowRepository) ListByUser(ctx context.Context, userID uint, params borrow.ListParams) ([]*borrow.Record, int64, error) {
	params.UserID = userID
	return r.List(ctx, params)
}

// List 查询借阅记录列表(分页)
func (r *borrowRepository) List(ctx context.Context, params borrow.ListParams) ([]*borrow.Record, int64, error) {
	var models []BorrowRecordModel
	var total int64

	query := r.getDB(ctx).Model(&BorrowRecordModel{})

	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.BookID != 0 {
		query = query.Where("book_id = ?", params.BookID)
	}
	if params.Status != 0 {
		query = query.Where("status = ?", int(params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅记录总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("borrow_date DESC").Limit(params.PageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅记录列表失败")
	}

	records := make([]*borrow.Record, len(models))
	for i := range models {
		records[i] = toRecordEntity(&models[i])
	}

	return records, total, nil
}

// FindDueBefore 查找应还时间早于deadline且仍为"借出中"的记录
// 逾期巡检用,idx_due索引覆盖这条扫描
func (r *borrowRepository) FindDueBefore(ctx context.Context, deadline time.Time, limit int) ([]*borrow.Record, error) {
	var models []BorrowRecordModel
	err := r.getDB(ctx).
		Where("status = ? AND due_date < ?", int(borrow.StatusBorrowed), deadline).
		Order("due_date ASC").
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询到期记录失败")
	}

	records := make([]*borrow.Record, len(models))
	for i := range models {
		records[i] = toRecordEntity(&models[i])
	}

	return records, nil
}

// MarkOverdue 条件更新:仅当记录仍为"借出中"时标记为"已逾期"
// 归还与巡检并发时归还优先:
//
//	UPDATE borrow_records SET status = 3 WHERE id = ? AND status = 1
//
// RowsAffected=0说明记录已被归还(或已标记),幂等返回false
func (r *borrowRepository) MarkOverdue(ctx context.Context, id uint, now time.Time) (bool, error) {
	result := r.getDB(ctx).Model(&BorrowRecordModel{}).
		Where("id = ? AND status = ?", id, int(borrow.StatusBorrowed)).
		Updates(map[string]interface{}{
			"status":     int(borrow.StatusOverdue),
			"updated_at": now,
		})

	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "标记逾期失败")
	}

	return result.RowsAffected > 0, nil
}

// toRecordEntity GORM模型 → 领域实体
func toRecordEntity(model *BorrowRecordModel) *borrow.Record {
	return &borrow.Record{
		ID:         model.ID,
		UserID:     model.UserID,
		BookID:     model.BookID,
		BorrowDate: model.BorrowDate,
		DueDate:    model.DueDate,
		ReturnDate: model.ReturnDate,
		Status:     borrow.Status(model.Status),
		Fine:       model.Fine,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *borrowRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
