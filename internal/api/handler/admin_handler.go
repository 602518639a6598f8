package handler

import (
	"github.com/gin-gonic/gin"

	"tms-server/internal/api/middleware"
	"tms-server/internal/dto"
	"tms-server/internal/service"
	"tms-server/pkg/utils"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListUsers 用户列表
// @Summary 用户列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dto.UserResponse
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, users)
}

// ApproveUser 审批注册用户
// @Summary 审批注册用户
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ApproveUserRequest true "审批请求"
// @Success 200 {object} dto.UserResponse
// @Router /api/admin/users/approve [post]
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	var req dto.ApproveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	user, err := h.adminService.ApproveUser(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

// UpdateUserRole 修改用户角色
// @Summary 修改用户角色
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.UpdateUserRoleRequest true "角色请求"
// @Success 200 {object} dto.UserResponse
// @Router /api/admin/users/role [patch]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	claims := middleware.GetCurrentUser(c)
	if claims == nil {
		utils.ErrorWithCode(c, 401, "未登录")
		return
	}

	var req dto.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	user, err := h.adminService.UpdateUserRole(claims.UserID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

// UpdateUserStatus 修改用户状态
// @Summary 修改用户状态
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.UpdateUserStatusRequest true "状态请求"
// @Success 200 {object} dto.UserResponse
// @Router /api/admin/users/status [patch]
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	claims := middleware.GetCurrentUser(c)
	if claims == nil {
		utils.ErrorWithCode(c, 401, "未登录")
		return
	}

	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	user, err := h.adminService.UpdateUserStatus(claims.UserID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, user)
}

// ResetPassword 重置用户密码
// @Summary 重置用户密码
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ResetPasswordRequest true "重置密码请求"
// @Success 200 {object} utils.Response
// @Router /api/admin/users/reset-password [post]
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	if err := h.adminService.ResetUserPassword(&req); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "密码已重置", nil)
}
