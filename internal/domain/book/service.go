package book

import (
	"context"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// AddBook 新增馆藏图书(管理员操作)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 分类必须属于固定集合
	// - 总副本数必须>=1
	// - ISBN不能重复
	AddBook(ctx context.Context, isbn, title, author string, publicationYear int, genre Genre, totalCopies int, coverURL, description string) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateBook 更新图书信息(管理员操作)
	// totalCopies为0表示不调整副本数
	UpdateBook(ctx context.Context, id uint, title, author string, publicationYear int, genre Genre, totalCopies int, coverURL, description string) (*Book, error)

	// DeleteBook 删除图书(管理员操作)
	// 业务规则:存在未归还的借阅记录时拒绝删除(由应用层校验后调用)
	DeleteBook(ctx context.Context, id uint) error

	// ListBooks 分页查询图书列表(公开接口)
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddBook 新增馆藏图书
func (s *service) AddBook(ctx context.Context, isbn, title, author string, publicationYear int, genre Genre, totalCopies int, coverURL, description string) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 分类校验
	if !genre.IsValid() {
		return nil, ErrInvalidGenre
	}

	// 3. 副本数校验
	if totalCopies < 1 {
		return nil, ErrInvalidCopies
	}

	// 4. 检查ISBN是否已存在
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	// 5. 创建图书实体并持久化
	// 数据库唯一索引兜底并发重复创建,Repository将重复错误转为ErrISBNDuplicate
	b := NewBook(isbn, title, author, publicationYear, genre, totalCopies, coverURL, description)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// UpdateBook 更新图书信息
func (s *service) UpdateBook(ctx context.Context, id uint, title, author string, publicationYear int, genre Genre, totalCopies int, coverURL, description string) (*Book, error) {
	// 1. 查询图书
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. 更新基本信息
	if err := b.UpdateInfo(title, author, publicationYear, genre, coverURL, description); err != nil {
		return nil, err
	}

	// 3. 调整副本数(0表示不调整)
	if totalCopies != 0 {
		if err := b.UpdateCopies(totalCopies); err != nil {
			return nil, err
		}
	}

	// 4. 持久化
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// DeleteBook 删除图书(软删除)
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// isValidISBN 校验ISBN格式
// 支持:
// - ISBN-10: 10位数字
// - ISBN-13: 13位数字,如9787115428028
// 简化实现:去除分隔符后只检查位数(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9Xx]`)
	cleanISBN := re.ReplaceAllString(isbn, "")

	length := len(cleanISBN)
	return length == 10 || length == 13
}
