package dto

// ApproveUserRequest 审批用户请求
type ApproveUserRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// UpdateUserRoleRequest 修改用户角色请求
type UpdateUserRoleRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=USER ADMIN"`
}

// UpdateUserStatusRequest 修改用户状态请求
type UpdateUserStatusRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Status string `json:"status" binding:"required,oneof=PENDING ACTIVE REJECTED"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}
