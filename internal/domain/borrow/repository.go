package borrow

import (
	"context"
	"time"
)

// Repository 借阅记录仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建借阅记录
	// 借出和副本扣减必须在同一事务中完成
	Create(ctx context.Context, record *Record) error

	// FindByID 根据ID查找借阅记录
	FindByID(ctx context.Context, id uint) (*Record, error)

	// LockByID 悲观锁查询借阅记录(归还事务中使用)
	// SELECT FOR UPDATE防止并发归还/逾期标记互相踩踏
	LockByID(ctx context.Context, id uint) (*Record, error)

	// FindOpenByUserAndBook 查找用户对某图书的未归还记录
	// 未归还 = 借出中或已逾期;不存在时返回ErrRecordNotFound
	FindOpenByUserAndBook(ctx context.Context, userID, bookID uint) (*Record, error)

	// CountOpenByBook 统计某图书的未归还记录数(删除图书前校验)
	CountOpenByBook(ctx context.Context, bookID uint) (int64, error)

	// Update 更新借阅记录(归还结算)
	Update(ctx context.Context, record *Record) error

	// ListByUser 查询用户的借阅历史(分页,按借出时间倒序)
	ListByUser(ctx context.Context, userID uint, params ListParams) ([]*Record, int64, error)

	// List 查询全量借阅记录(管理员,分页)
	List(ctx context.Context, params ListParams) ([]*Record, int64, error)

	// FindDueBefore 查找应还时间早于deadline且仍为"借出中"的记录
	// 逾期巡检用;limit限制单批数量,防止单次扫描过大
	FindDueBefore(ctx context.Context, deadline time.Time, limit int) ([]*Record, error)

	// MarkOverdue 条件更新:仅当记录仍为"借出中"时标记为"已逾期"
	// 返回是否实际更新。归还与巡检并发时归还优先:
	// 记录已不是"借出中"则不更新,返回false且不报错(幂等)
	MarkOverdue(ctx context.Context, id uint, now time.Time) (bool, error)
}

// ListParams 借阅记录列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Status   Status // 状态过滤(0表示不过滤)
	UserID   uint   // 用户过滤(管理员查询用,0表示不过滤)
	BookID   uint   // 图书过滤(0表示不过滤)
}

// OverdueNotice 逾期通知事件(发往消息队列)
type OverdueNotice struct {
	RecordID   uint      `json:"record_id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	BookID     uint      `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	DueDate    time.Time `json:"due_date"`
	OverdueDay int       `json:"overdue_days"` // 截至巡检时刻的逾期天数
	MarkedAt   time.Time `json:"marked_at"`
}

// Notifier 逾期通知端口
// 实现位于infrastructure/notify(RabbitMQ发布+熔断保护)
// 通知是旁路:发布失败不影响逾期标记本身
type Notifier interface {
	NotifyOverdue(ctx context.Context, notice *OverdueNotice) error
}
