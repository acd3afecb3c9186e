package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书信息
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询图书(借还事务中锁定副本台账)
	// 使用SELECT FOR UPDATE锁定行,防止并发借阅超借
	LockByID(ctx context.Context, id uint) (*Book, error)

	// AdjustAvailable 原子调整在架可借副本数
	// delta为-1表示借出,+1表示归还
	// 实现必须以条件UPDATE保证 0 <= available_copies <= total_copies,
	// 越界时不落库并返回领域错误(借出返回ErrNoAvailableCopies,归还返回ErrCopyCountDrift)
	AdjustAvailable(ctx context.Context, id uint, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(模糊匹配标题、作者、ISBN,不区分大小写)
	Genre    Genre  // 分类过滤(与Keyword为AND关系,空值表示不过滤)
}
