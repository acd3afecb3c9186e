package borrow

import (
	"time"
)

// 借阅业务常量
const (
	// LoanPeriod 借阅期限:应还日期 = 借出日期 + 14天
	LoanPeriod = 14 * 24 * time.Hour

	// FinePerDay 逾期罚金:每逾期1天(不足1天按1天计)5元
	FinePerDay int64 = 5
)

// Status 借阅记录状态
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 状态值1-3递增,便于理解流转方向
type Status int

const (
	StatusBorrowed Status = 1 // 借出中
	StatusReturned Status = 2 // 已归还(终态)
	StatusOverdue  Status = 3 // 已逾期(仍未归还,由巡检标记)
)

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	switch s {
	case StatusBorrowed:
		return "借出中"
	case StatusReturned:
		return "已归还"
	case StatusOverdue:
		return "已逾期"
	default:
		return "未知状态"
	}
}

// IsOpen 是否为未归还状态(借出中或已逾期)
func (s Status) IsOpen() bool {
	return s == StatusBorrowed || s == StatusOverdue
}

// Record 借阅记录实体(聚合根)
// 设计说明:
// 1. 不直接关联Book/User对象,只保存ID(避免跨聚合引用)
// 2. DueDate在借出时一次性确定,后续不随副本数等变化
// 3. Fine只在归还时刻结算一次,之后不再变化(历史快照)
// 4. ReturnDate用指针表达"未归还"(NULL语义)
type Record struct {
	ID         uint
	UserID     uint       // 借阅人用户ID
	BookID     uint       // 图书ID
	BorrowDate time.Time  // 借出时间
	DueDate    time.Time  // 应还时间(借出+14天)
	ReturnDate *time.Time // 归还时间(未归还为nil)
	Status     Status     // 记录状态
	Fine       int64      // 逾期罚金(元),归还时结算
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRecord 创建借阅记录(工厂方法)
// 初始状态为借出中,应还时间 = 借出时间 + 14天
func NewRecord(userID, bookID uint, borrowedAt time.Time) *Record {
	return &Record{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrowedAt,
		DueDate:    borrowedAt.Add(LoanPeriod),
		Status:     StatusBorrowed,
		Fine:       0,
		CreatedAt:  borrowedAt,
		UpdatedAt:  borrowedAt,
	}
}

// IsOpen 记录是否未归还
func (r *Record) IsOpen() bool {
	return r.Status.IsOpen()
}

// IsOwnedBy 检查记录是否属于指定用户(权限校验)
func (r *Record) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// CanTransitionTo 检查是否可以转换到目标状态
// 合法流转:
//
//	借出中 → 已归还 / 已逾期
//	已逾期 → 已归还
//	已归还 → 终态,无后续状态
func (r *Record) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusBorrowed: {StatusReturned, StatusOverdue},
		StatusOverdue:  {StatusReturned},
		StatusReturned: {},
	}

	allowed, exists := transitions[r.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// Return 归还(领域行为)
// 业务规则:
// 1. 只有未归还的记录可以归还,重复归还返回ErrAlreadyReturned
// 2. 归还时刻一次性结算罚金(此后不再变化)
func (r *Record) Return(returnedAt time.Time) error {
	if !r.CanTransitionTo(StatusReturned) {
		return ErrAlreadyReturned
	}
	r.Status = StatusReturned
	r.ReturnDate = &returnedAt
	r.Fine = CalculateFine(r.DueDate, returnedAt)
	r.UpdatedAt = returnedAt
	return nil
}

// MarkOverdue 标记逾期(领域行为,由巡检调用)
// 业务规则:只有"借出中"且已过应还时间的记录可以标记
func (r *Record) MarkOverdue(now time.Time) error {
	if !r.CanTransitionTo(StatusOverdue) {
		return ErrInvalidStatusTransition
	}
	if !now.After(r.DueDate) {
		return ErrNotYetDue
	}
	r.Status = StatusOverdue
	r.UpdatedAt = now
	return nil
}

// OverdueDays 计算逾期天数(不足1天按1天计,向上取整)
// 例:逾期1秒算1天,逾期24小时零1秒算2天;未逾期为0
// 罚金结算与催还通知共用同一口径,避免"通知1天、罚2天"的矛盾
func OverdueDays(dueDate, at time.Time) int {
	if !at.After(dueDate) {
		return 0
	}
	elapsed := at.Sub(dueDate)
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// CalculateFine 计算逾期罚金
// 规则:逾期天数(向上取整)× 每天5元;未逾期为0
func CalculateFine(dueDate, returnedAt time.Time) int64 {
	return int64(OverdueDays(dueDate, returnedAt)) * FinePerDay
}
