package service

import (
	"tms-server/internal/dto"
	"tms-server/internal/pkg/crypto"
	"tms-server/internal/repository"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

type AdminService interface {
	ListUsers() ([]*dto.UserResponse, error)
	ApproveUser(req *dto.ApproveUserRequest) (*dto.UserResponse, error)
	UpdateUserRole(operatorID int64, req *dto.UpdateUserRoleRequest) (*dto.UserResponse, error)
	UpdateUserStatus(operatorID int64, req *dto.UpdateUserStatusRequest) (*dto.UserResponse, error)
	ResetUserPassword(req *dto.ResetPasswordRequest) error
}

type adminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

func (s *adminService) ListUsers() ([]*dto.UserResponse, error) {
	users, err := s.userRepo.ListAll()
	if err != nil {
		return nil, err
	}

	result := make([]*dto.UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, toUserResponse(user))
	}
	return result, nil
}

// ApproveUser 审批注册用户：approve 激活，reject 置为 REJECTED
func (s *adminService) ApproveUser(req *dto.ApproveUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case constants.ApproveActionApprove:
		user.Status = constants.UserStatusActive
	case constants.ApproveActionReject:
		user.Status = constants.UserStatusRejected
	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不支持的审批动作")
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UpdateUserRole 修改用户角色，不允许修改自己的角色
func (s *adminService) UpdateUserRole(operatorID int64, req *dto.UpdateUserRoleRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if user.ID == operatorID {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不能修改自己的角色")
	}

	user.Role = req.Role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UpdateUserStatus 修改用户状态，不允许修改自己的状态
func (s *adminService) UpdateUserStatus(operatorID int64, req *dto.UpdateUserStatusRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if user.ID == operatorID {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不能修改自己的状态")
	}

	user.Status = req.Status
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ResetUserPassword 管理员重置用户密码
func (s *adminService) ResetUserPassword(req *dto.ResetPasswordRequest) error {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return err
	}

	hashed, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}

	user.Password = hashed
	return s.userRepo.Update(user)
}
