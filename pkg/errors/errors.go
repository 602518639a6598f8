package errors

import "fmt"

// 错误码（与HTTP状态码对齐）
const (
	CodeSuccess       = 200
	CodeBadRequest    = 400
	CodeUnauthorized  = 401
	CodeForbidden     = 403
	CodeNotFound      = 404
	CodeConflict      = 409
	CodeInternalError = 500
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 预定义错误
var (
	ErrBadRequest    = New(CodeBadRequest, "请求参数错误")
	ErrUnauthorized  = New(CodeUnauthorized, "未授权")
	ErrForbidden     = New(CodeForbidden, "禁止访问")
	ErrNotFound      = New(CodeNotFound, "资源不存在")
	ErrConflict      = New(CodeConflict, "资源冲突")
	ErrInternalError = New(CodeInternalError, "内部服务器错误")
	ErrDatabaseError = New(CodeInternalError, "数据库错误")

	// 具体业务错误
	ErrInvalidCredentials = New(CodeUnauthorized, "邮箱或密码错误")
	ErrEmailExists        = New(CodeConflict, "该邮箱已注册")
	ErrUserNotFound       = New(CodeNotFound, "用户不存在")
	ErrUserNotActive      = New(CodeForbidden, "账号未激活或已被拒绝")
	ErrInvalidToken       = New(CodeUnauthorized, "无效的Token")
	ErrTokenExpired       = New(CodeUnauthorized, "Token已过期")
	ErrAdminRequired      = New(CodeForbidden, "需要管理员权限")

	ErrFolderNotFound   = New(CodeNotFound, "文件夹不存在")
	ErrFolderCycle      = New(CodeBadRequest, "不能将文件夹移动到其自身或子文件夹下")
	ErrTestCaseNotFound = New(CodeNotFound, "测试用例不存在")
	ErrPlanNotFound     = New(CodeNotFound, "测试计划不存在")
	ErrPlanItemNotFound = New(CodeNotFound, "计划条目不存在")
)
