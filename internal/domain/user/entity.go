package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	// RoleMember 普通读者
	RoleMember Role = "member"
	// RoleAdmin 管理员(馆员)
	RoleAdmin Role = "admin"
)

// IsValid 检查角色是否合法
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// CanAdminister 是否具备管理权限(馆藏管理、账号管理、逾期巡检)
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，包含用户的核心属性
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. IsActive为停用开关：停用账号不能登录、不能借书，但历史记录保留
// 4. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string // bcrypt哈希值
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码；新用户默认启用、角色为member
func NewUser(username, email, hashedPassword string, role Role) *User {
	now := time.Now()
	if role == "" {
		role = RoleMember
	}
	return &User{
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Activate 启用账号(管理员操作,幂等)
func (u *User) Activate() {
	u.IsActive = true
	u.UpdatedAt = time.Now()
}

// Deactivate 停用账号(管理员操作,幂等)
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}
