package user

import (
	"context"

	"github.com/linkai/library/internal/domain/user"
)

// GetUserUseCase 查询用户详情用例
// 服务于"当前登录用户信息"和管理员按ID查询两个入口
type GetUserUseCase struct {
	userRepo user.Repository
}

// NewGetUserUseCase 创建查询用户详情用例
func NewGetUserUseCase(userRepo user.Repository) *GetUserUseCase {
	return &GetUserUseCase{userRepo: userRepo}
}

// Execute 按ID查询用户
func (uc *GetUserUseCase) Execute(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}, nil
}
