package service

import (
	"time"

	"tms-server/internal/dto"
	"tms-server/internal/model"
	"tms-server/internal/pkg/crypto"
	"tms-server/internal/pkg/jwt"
	"tms-server/internal/repository"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetProfile(userID int64) (*dto.UserResponse, error)
	UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(userID int64, req *dto.ChangePasswordRequest) error
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Register 用户注册
// 首个注册用户自动成为 ADMIN 并激活，之后的用户为 USER 且需管理员审批
func (s *authService) Register(req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, pkgErrors.ErrEmailExists
	} else if appErr, ok := err.(*pkgErrors.AppError); !ok || appErr.Code != pkgErrors.CodeNotFound {
		return nil, err
	}

	hashed, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}

	count, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Role:     constants.RoleUser,
		Status:   constants.UserStatusPending,
	}
	if count == 0 {
		user.Role = constants.RoleAdmin
		user.Status = constants.UserStatusActive
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

// Login 用户登录，仅 ACTIVE 用户可登录
func (s *authService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if appErr, ok := err.(*pkgErrors.AppError); ok && appErr.Code == pkgErrors.CodeNotFound {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, user.Password) {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	if user.Status != constants.UserStatusActive {
		return nil, pkgErrors.ErrUserNotActive
	}

	accessToken, err := jwt.GenerateToken(user.ID, user.Email, user.Name, user.Role, user.Status)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成AccessToken失败", err)
	}

	now := time.Now()
	_ = s.userRepo.UpdateLastLogin(user.ID)
	user.LastLoginAt = &now

	return &dto.LoginResponse{
		AccessToken: accessToken,
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) GetProfile(userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *authService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	user.Name = req.Name
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

// ChangePassword 修改密码，需验证当前密码
func (s *authService) ChangePassword(userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}

	if !crypto.CheckPassword(req.CurrentPassword, user.Password) {
		return pkgErrors.New(pkgErrors.CodeBadRequest, "当前密码错误")
	}

	hashed, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}

	user.Password = hashed
	return s.userRepo.Update(user)
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
