package dto

import "time"

// CreatePlanRequest 创建测试计划请求
type CreatePlanRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	TestCaseIDs []int64 `json:"testCaseIds" binding:"required,min=1"`
	Assignee    *string `json:"assignee"`
}

// UpdatePlanRequest 更新测试计划请求
// testCaseIds 给定时按目标集合对账条目：新增的以 NOT_RUN 加入，未列出的删除，其余保留
type UpdatePlanRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	TestCaseIDs []int64 `json:"testCaseIds"`
}

// UpdatePlanItemRequest 更新计划条目请求
type UpdatePlanItemRequest struct {
	Result   *string `json:"result" binding:"omitempty,oneof=NOT_RUN IN_PROGRESS PASS FAIL BLOCK"`
	Comment  *string `json:"comment"`
	Assignee *string `json:"assignee"`
}

// BulkUpdatePlanItemsRequest 批量更新计划条目请求
// 至少指定一个待修改字段（服务层校验）
type BulkUpdatePlanItemsRequest struct {
	Items    []int64 `json:"items" binding:"required,min=1"`
	Result   *string `json:"result" binding:"omitempty,oneof=NOT_RUN IN_PROGRESS PASS FAIL BLOCK"`
	Comment  *string `json:"comment"`
	Assignee *string `json:"assignee"`
}

// PlanIDListRequest 批量计划操作请求
type PlanIDListRequest struct {
	PlanIDs []int64 `json:"planIds" binding:"required,min=1"`
}

// PlanItemResponse 计划条目响应
type PlanItemResponse struct {
	ID         int64      `json:"id"`
	PlanID     int64      `json:"planId"`
	TestCaseID int64      `json:"testCaseId"`
	Title      string     `json:"title"`
	Priority   string     `json:"priority"`
	Result     string     `json:"result"`
	Assignee   *string    `json:"assignee"`
	Comment    *string    `json:"comment"`
	ExecutedAt *time.Time `json:"executedAt"`
}

// PlanSummaryResponse 计划列表项
type PlanSummaryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"createdBy"`
	TotalCount  int       `json:"totalCount"`
	Progress    int       `json:"progress"` // round((total-notRun)/total*100)
	CreatedAt   time.Time `json:"createdAt"`
}

// PlanDetailResponse 计划详情
type PlanDetailResponse struct {
	PlanSummaryResponse
	Items []*PlanItemResponse `json:"items"`
}

// BulkPlanResult 批量计划操作结果
// 不存在的 planId 跳过并在 skippedIds 中返回
type BulkPlanResult struct {
	AffectedCount int     `json:"affectedCount"`
	SkippedIDs    []int64 `json:"skippedIds"`
}
