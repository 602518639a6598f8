package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tms-server/internal/dto"
	"tms-server/internal/repository"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

func newAuthServices(t *testing.T) (AuthService, AdminService) {
	t.Helper()

	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo), NewAdminService(userRepo)
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	authSvc, _ := newAuthServices(t)

	first, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "管理员",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdmin, first.Role)
	assert.Equal(t, constants.UserStatusActive, first.Status)

	second, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "user@example.com",
		Password: "secret123",
		Name:     "普通用户",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleUser, second.Role)
	assert.Equal(t, constants.UserStatusPending, second.Status)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	authSvc, _ := newAuthServices(t)

	_, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "管理员",
	})
	require.NoError(t, err)

	_, err = authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "other456",
		Name:     "冒名者",
	})
	assert.ErrorIs(t, err, pkgErrors.ErrEmailExists)
}

func TestLoginOnlyActiveUsers(t *testing.T) {
	authSvc, adminSvc := newAuthServices(t)

	_, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "管理员",
	})
	require.NoError(t, err)
	_, err = authSvc.Register(&dto.RegisterRequest{
		Email:    "pending@example.com",
		Password: "secret123",
		Name:     "等待审批",
	})
	require.NoError(t, err)

	// PENDING 用户拒绝登录
	_, err = authSvc.Login(&dto.LoginRequest{Email: "pending@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, pkgErrors.ErrUserNotActive)

	// 密码错误和用户不存在返回同一错误，不泄露账号是否存在
	_, err = authSvc.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
	_, err = authSvc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)

	// 管理员正常登录
	resp, err := authSvc.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, constants.RoleAdmin, resp.User.Role)

	// 审批后 PENDING 用户可登录
	_, err = adminSvc.ApproveUser(&dto.ApproveUserRequest{
		Email:  "pending@example.com",
		Action: constants.ApproveActionApprove,
	})
	require.NoError(t, err)

	resp, err = authSvc.Login(&dto.LoginRequest{Email: "pending@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestApproveRejectUser(t *testing.T) {
	authSvc, adminSvc := newAuthServices(t)

	_, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "管理员",
	})
	require.NoError(t, err)
	_, err = authSvc.Register(&dto.RegisterRequest{
		Email:    "bad@example.com",
		Password: "secret123",
		Name:     "拒绝对象",
	})
	require.NoError(t, err)

	rejected, err := adminSvc.ApproveUser(&dto.ApproveUserRequest{
		Email:  "bad@example.com",
		Action: constants.ApproveActionReject,
	})
	require.NoError(t, err)
	assert.Equal(t, constants.UserStatusRejected, rejected.Status)

	_, err = authSvc.Login(&dto.LoginRequest{Email: "bad@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, pkgErrors.ErrUserNotActive)
}

func TestAdminCannotChangeOwnRoleOrStatus(t *testing.T) {
	authSvc, adminSvc := newAuthServices(t)

	admin, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "管理员",
	})
	require.NoError(t, err)

	_, err = adminSvc.UpdateUserRole(admin.ID, &dto.UpdateUserRoleRequest{
		Email: "admin@example.com",
		Role:  constants.RoleUser,
	})
	assert.Error(t, err)

	_, err = adminSvc.UpdateUserStatus(admin.ID, &dto.UpdateUserStatusRequest{
		Email:  "admin@example.com",
		Status: constants.UserStatusRejected,
	})
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	authSvc, _ := newAuthServices(t)

	user, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "管理员",
	})
	require.NoError(t, err)

	// 当前密码错误
	err = authSvc.ChangePassword(user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass456",
	})
	assert.Error(t, err)

	err = authSvc.ChangePassword(user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newpass456",
	})
	require.NoError(t, err)

	_, err = authSvc.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
	_, err = authSvc.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "newpass456"})
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	authSvc, adminSvc := newAuthServices(t)

	_, err := authSvc.Register(&dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "管理员",
	})
	require.NoError(t, err)

	err = adminSvc.ResetUserPassword(&dto.ResetPasswordRequest{
		Email:       "admin@example.com",
		NewPassword: "reset789",
	})
	require.NoError(t, err)

	_, err = authSvc.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "reset789"})
	assert.NoError(t, err)
}
