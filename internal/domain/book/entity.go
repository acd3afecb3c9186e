package book

import (
	"time"
)

// Genre 图书分类（固定取值集合）
type Genre string

const (
	GenreFiction    Genre = "Fiction"
	GenreNonFiction Genre = "Non-Fiction"
	GenreScience    Genre = "Science"
	GenreHistory    Genre = "History"
	GenreBiography  Genre = "Biography"
	GenreTechnology Genre = "Technology"
	GenreOther      Genre = "Other"
)

// validGenres 合法分类集合
var validGenres = map[Genre]bool{
	GenreFiction:    true,
	GenreNonFiction: true,
	GenreScience:    true,
	GenreHistory:    true,
	GenreBiography:  true,
	GenreTechnology: true,
	GenreOther:      true,
}

// IsValid 检查分类是否合法
func (g Genre) IsValid() bool {
	return validGenres[g]
}

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是馆藏图书聚合的根实体
// 2. TotalCopies是馆藏总副本数,AvailableCopies是当前在架可借副本数
// 3. 核心不变量: 0 <= AvailableCopies <= TotalCopies(借出减1,归还加1)
// 4. ISBN作为业务唯一标识(数据库层保证唯一性)
type Book struct {
	ID              uint
	ISBN            string // ISBN号(国际标准书号)
	Title           string // 书名
	Author          string // 作者
	PublicationYear int    // 出版年份
	Genre           Genre  // 分类
	TotalCopies     int    // 馆藏总副本数
	AvailableCopies int    // 在架可借副本数
	CoverURL        string // 封面图片URL
	Description     string // 图书简介
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// 新入馆图书的全部副本都在架:AvailableCopies = TotalCopies
func NewBook(isbn, title, author string, publicationYear int, genre Genre, totalCopies int, coverURL, description string) *Book {
	now := time.Now()
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		PublicationYear: publicationYear,
		Genre:           genre,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CoverURL:        coverURL,
		Description:     description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasAvailableCopy 是否有可借副本
func (b *Book) HasAvailableCopy() bool {
	return b.AvailableCopies > 0
}

// CheckOut 借出一本(领域行为)
// 业务规则:无可借副本时拒绝
func (b *Book) CheckOut() error {
	if b.AvailableCopies <= 0 {
		return ErrNoAvailableCopies
	}
	b.AvailableCopies--
	b.UpdatedAt = time.Now()
	return nil
}

// CheckIn 归还一本(领域行为)
// 业务规则:归还后在架数不能超过总副本数(超过说明台账漂移)
func (b *Book) CheckIn() error {
	if b.AvailableCopies >= b.TotalCopies {
		return ErrCopyCountDrift
	}
	b.AvailableCopies++
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新图书基本信息
// 注意:不更新TotalCopies/AvailableCopies,副本数调整走UpdateCopies
func (b *Book) UpdateInfo(title, author string, publicationYear int, genre Genre, coverURL, description string) error {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publicationYear != 0 {
		b.PublicationYear = publicationYear
	}
	if genre != "" {
		if !genre.IsValid() {
			return ErrInvalidGenre
		}
		b.Genre = genre
	}
	if coverURL != "" {
		b.CoverURL = coverURL
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateCopies 调整馆藏副本数(管理员操作)
// 业务规则:
// - 总副本数必须>=1
// - 不能低于当前借出数(否则在架数会变成负数)
// 调整总数时在架数同步增减相同的差值,保持借出数不变
func (b *Book) UpdateCopies(newTotal int) error {
	if newTotal < 1 {
		return ErrInvalidCopies
	}
	borrowed := b.TotalCopies - b.AvailableCopies
	if newTotal < borrowed {
		return ErrCopiesBelowBorrowed
	}
	b.AvailableCopies = newTotal - borrowed
	b.TotalCopies = newTotal
	b.UpdatedAt = time.Now()
	return nil
}

// CheckConsistency 校验副本台账不变量
// 0 <= AvailableCopies <= TotalCopies,违反说明存在数据漂移
func (b *Book) CheckConsistency() error {
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return ErrCopyCountDrift
	}
	return nil
}
