package borrow

import (
	apperrors "github.com/linkai/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrRecordNotFound 借阅记录不存在
	ErrRecordNotFound = apperrors.New(apperrors.ErrCodeRecordNotFound, "借阅记录不存在")

	// ErrAlreadyBorrowed 同一用户对同一图书已有未归还记录
	ErrAlreadyBorrowed = apperrors.New(apperrors.ErrCodeAlreadyBorrowed, "您已借阅该图书且尚未归还")

	// ErrAlreadyReturned 记录已归还,不能重复归还
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "该记录已归还")

	// ErrInvalidStatusTransition 非法状态流转
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeBusinessError, "借阅记录状态流转不合法")

	// ErrNotYetDue 尚未到应还时间,不能标记逾期
	ErrNotYetDue = apperrors.New(apperrors.ErrCodeBusinessError, "该记录尚未到期")

	// ErrNotRecordOwner 非本人记录(普通读者只能归还自己的记录)
	ErrNotRecordOwner = apperrors.New(apperrors.ErrCodeForbidden, "无权操作他人的借阅记录")
)
