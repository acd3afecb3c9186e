package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/linkai/library/pkg/errors"
)

// memRepo 内存仓储,服务层单元测试用
type memRepo struct {
	users  map[uint]*User
	nextID uint
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[uint]*User), nextID: 1}
}

func (r *memRepo) Create(ctx context.Context, u *User) error {
	for _, e := range r.users {
		if e.Username == u.Username || e.Email == u.Email {
			return apperrors.ErrEmailDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memRepo) Update(ctx context.Context, u *User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) List(ctx context.Context, page, pageSize int) ([]*User, int64, error) {
	var out []*User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func TestRegister(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	t.Run("正常注册", func(t *testing.T) {
		u, err := svc.Register(ctx, "reader01", "reader01@example.com", "passw0rd")
		require.NoError(t, err)

		assert.NotZero(t, u.ID)
		assert.Equal(t, RoleMember, u.Role, "注册入口只创建member角色")
		assert.True(t, u.IsActive, "新账号默认启用")
		assert.NotEqual(t, "passw0rd", u.Password, "密码必须加密存储")
	})

	t.Run("用户名过短", func(t *testing.T) {
		_, err := svc.Register(ctx, "ab", "ab@example.com", "passw0rd")
		assert.Error(t, err)
	})

	t.Run("邮箱格式错误", func(t *testing.T) {
		_, err := svc.Register(ctx, "reader02", "not-an-email", "passw0rd")
		assert.Error(t, err)
	})

	t.Run("弱密码被拒绝", func(t *testing.T) {
		cases := []string{
			"short1",                  // 太短
			"alllettersonly",          // 无数字
			"123456789012",            // 无字母
			"toolongpassword12345678", // 超过20位
		}
		for _, pwd := range cases {
			_, err := svc.Register(ctx, "reader03", "reader03@example.com", pwd)
			assert.ErrorIs(t, err, apperrors.ErrWeakPassword, "密码%q应被拒绝", pwd)
		}
	})
}

func TestLogin(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "reader01", "reader01@example.com", "passw0rd")
	require.NoError(t, err)

	t.Run("正常登录", func(t *testing.T) {
		u, err := svc.Login(ctx, "reader01", "passw0rd")
		require.NoError(t, err)
		assert.Equal(t, "reader01", u.Username)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Login(ctx, "reader01", "wrongpass1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "passw0rd")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("停用账号拒绝登录", func(t *testing.T) {
		u, err := svc.Login(ctx, "reader01", "passw0rd")
		require.NoError(t, err)

		_, err = svc.SetActive(ctx, u.ID, false)
		require.NoError(t, err)

		_, err = svc.Login(ctx, "reader01", "passw0rd")
		assert.ErrorIs(t, err, apperrors.ErrUserInactive)
	})
}

func TestSetActive(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "reader01", "reader01@example.com", "passw0rd")
	require.NoError(t, err)

	// 停用
	got, err := svc.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// 幂等:重复停用返回成功
	got, err = svc.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// 重新启用
	got, err = svc.SetActive(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	// 不存在的用户
	_, err = svc.SetActive(ctx, 999, true)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
