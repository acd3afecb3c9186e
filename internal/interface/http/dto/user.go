package dto

// RegisterRequest HTTP注册请求
// validator tag说明:
// - required: 必填字段
// - email: 邮箱格式校验
// - min/max: 长度范围校验(密码强度在领域服务二次校验)
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"reader01"`
	Email    string `json:"email" binding:"required,email" example:"reader01@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"passw0rd"`
}

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"reader01"`
	Password string `json:"password" binding:"required" example:"passw0rd"`
}

// UserResponse HTTP用户响应
type UserResponse struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"reader01"`
	Email    string `json:"email" example:"reader01@example.com"`
	Role     string `json:"role" example:"member"`
	IsActive bool   `json:"is_active" example:"true"`
}

// UserInfo 登录响应中的用户信息
type UserInfo struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"reader01"`
	Email    string `json:"email" example:"reader01@example.com"`
	Role     string `json:"role" example:"member"`
	IsActive bool   `json:"is_active" example:"true"`
}

// LoginResponse HTTP登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in" example:"7200"` // Access Token有效期(秒)
}

// ListUsersRequest HTTP用户列表请求(管理员)
type ListUsersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
