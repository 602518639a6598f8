package handler

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"tms-server/internal/api/middleware"
	"tms-server/internal/dto"
	"tms-server/internal/pkg/config"
	"tms-server/internal/service"
	"tms-server/pkg/constants"
	"tms-server/pkg/utils"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 注册
// @Summary 用户注册
// @Description 首个注册用户自动成为管理员并激活，其余用户等待管理员审批
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册请求"
// @Success 201 {object} dto.UserResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	c.JSON(201, gin.H{"success": true, "user": user})
}

// Login 登录
// @Summary 用户登录
// @Description 仅激活用户可登录；Token同时写入响应体和httpOnly Cookie
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.LoginResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	maxAge := config.GlobalConfig.Auth.JWT.TokenExpire
	if maxAge <= 0 {
		maxAge = 7 * 24 * 3600
	}
	secure := config.GlobalConfig.Server.Mode == "release"

	// 浏览器会话：httpOnly Token + 可读CSRF Token（双提交）
	c.SetCookie(constants.CookieAccessToken, resp.AccessToken, maxAge, "/", "", secure, true)
	c.SetCookie(constants.CookieCSRFToken, newCSRFToken(), maxAge, "/", "", secure, false)

	utils.SuccessRaw(c, gin.H{
		"accessToken": resp.AccessToken,
		"user":        resp.User,
	})
}

// Logout 退出登录
// @Summary 退出登录
// @Description 清除会话Cookie
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	secure := config.GlobalConfig.Server.Mode == "release"
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", "", secure, true)
	c.SetCookie(constants.CookieCSRFToken, "", -1, "/", "", secure, false)

	utils.SuccessWithMessage(c, "已退出登录", nil)
}

// GetMe 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.UserResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	claims := middleware.GetCurrentUser(c)
	if claims == nil {
		utils.ErrorWithCode(c, 401, "未登录")
		return
	}

	user, err := h.authService.GetProfile(claims.UserID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessRaw(c, gin.H{"user": user})
}

// UpdateProfile 更新个人信息
// @Summary 更新个人信息
// @Tags 认证
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.UpdateProfileRequest true "更新请求"
// @Success 200 {object} dto.UserResponse
// @Router /api/auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims := middleware.GetCurrentUser(c)
	if claims == nil {
		utils.ErrorWithCode(c, 401, "未登录")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	user, err := h.authService.UpdateProfile(claims.UserID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessRaw(c, gin.H{"user": user})
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ChangePasswordRequest true "修改密码请求"
// @Success 200 {object} utils.Response
// @Router /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.GetCurrentUser(c)
	if claims == nil {
		utils.ErrorWithCode(c, 401, "未登录")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	if err := h.authService.ChangePassword(claims.UserID, &req); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "密码已修改", nil)
}

func newCSRFToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
