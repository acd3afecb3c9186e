package borrow

import (
	"context"
)

// TxManager 事务执行端口
// mysql.TxManager实现此接口;单元测试用直通实现替代
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
