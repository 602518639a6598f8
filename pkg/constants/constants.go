package constants

// 用户角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// 用户状态
const (
	UserStatusPending  = "PENDING"  // 等待管理员审批
	UserStatusActive   = "ACTIVE"   // 可登录
	UserStatusRejected = "REJECTED" // 已拒绝
)

// 审批动作
const (
	ApproveActionApprove = "approve"
	ApproveActionReject  = "reject"
)

// 测试用例优先级
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// 测试用例执行方式
const (
	AutomationManual    = "MANUAL"
	AutomationAutomated = "AUTOMATED"
)

// 测试计划状态
const (
	PlanStatusActive   = "ACTIVE"
	PlanStatusArchived = "ARCHIVED"
)

// 计划条目执行结果
const (
	ResultNotRun     = "NOT_RUN"
	ResultInProgress = "IN_PROGRESS"
	ResultPass       = "PASS"
	ResultFail       = "FAIL"
	ResultBlock      = "BLOCK"
)

// ValidResults 合法的执行结果集合
var ValidResults = map[string]bool{
	ResultNotRun:     true,
	ResultInProgress: true,
	ResultPass:       true,
	ResultFail:       true,
	ResultBlock:      true,
}

// CSV 导入字段白名单（默认恒等映射时使用）
var CSVFields = []string{"title", "description", "precondition", "steps", "expectedResult", "priority"}

// HTTP Header / Cookie
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
	HeaderCSRFToken     = "X-CSRF-Token"
	CookieAccessToken   = "access_token"
	CookieCSRFToken     = "csrf_token"
)

// gin context key
const (
	ContextKeyUser = "user"
)
