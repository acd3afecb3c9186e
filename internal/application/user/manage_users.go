package user

import (
	"context"
	"log"

	"github.com/linkai/library/internal/domain/user"
	"github.com/linkai/library/internal/infrastructure/persistence/redis"
)

// ListUsersUseCase 用户列表用例(管理员)
type ListUsersUseCase struct {
	userRepo user.Repository
}

// NewListUsersUseCase 创建用户列表用例
func NewListUsersUseCase(userRepo user.Repository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

// Execute 分页查询用户列表
func (uc *ListUsersUseCase) Execute(ctx context.Context, page, pageSize int) ([]*UserInfo, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := uc.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*UserInfo, len(users))
	for i, u := range users {
		infos[i] = &UserInfo{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     string(u.Role),
			IsActive: u.IsActive,
		}
	}

	return infos, total, nil
}

// SetActiveUseCase 启用/停用账号用例(管理员)
type SetActiveUseCase struct {
	userService  user.Service
	sessionStore *redis.SessionStore
}

// NewSetActiveUseCase 创建启用/停用账号用例
func NewSetActiveUseCase(userService user.Service, sessionStore *redis.SessionStore) *SetActiveUseCase {
	return &SetActiveUseCase{
		userService:  userService,
		sessionStore: sessionStore,
	}
}

// Execute 执行启用/停用
// 幂等:重复设置同一状态返回成功。
// 停用时删除Redis会话强制下线;已签发的Access Token由认证中间件
// 实时校验IsActive兜底(停用账号的旧Token请求一律拒绝)
func (uc *SetActiveUseCase) Execute(ctx context.Context, userID uint, active bool) (*UserInfo, error) {
	u, err := uc.userService.SetActive(ctx, userID, active)
	if err != nil {
		return nil, err
	}

	if !active && uc.sessionStore != nil {
		if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
			log.Printf("[WARN] 停用账号后删除会话失败: user_id=%d, err=%v", userID, err)
		}
	}

	return &UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}, nil
}
