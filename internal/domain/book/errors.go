package book

import (
	apperrors "github.com/linkai/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrNoAvailableCopies 无可借副本
	ErrNoAvailableCopies = apperrors.New(apperrors.ErrCodeBookUnavailable, "该图书暂无可借副本")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidGenre 无效的分类
	ErrInvalidGenre = apperrors.New(apperrors.ErrCodeInvalidParams, "图书分类不合法")

	// ErrInvalidCopies 无效的副本数
	ErrInvalidCopies = apperrors.New(apperrors.ErrCodeInvalidParams, "馆藏副本数必须大于0")

	// ErrCopiesBelowBorrowed 副本数低于已借出数
	ErrCopiesBelowBorrowed = apperrors.New(apperrors.ErrCodeBusinessError, "馆藏副本数不能低于当前借出数")

	// ErrCopyCountDrift 副本台账漂移(在架数越界)
	ErrCopyCountDrift = apperrors.New(apperrors.ErrCodeConsistency, "图书副本台账异常")

	// ErrBookHasOpenLoans 仍有未归还的借阅记录
	ErrBookHasOpenLoans = apperrors.New(apperrors.ErrCodeBusinessError, "该图书仍有未归还的借阅记录，无法删除")
)
