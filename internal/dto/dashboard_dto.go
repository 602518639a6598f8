package dto

import "time"

// DashboardStats 总体统计
type DashboardStats struct {
	TestCaseCount   int64 `json:"testCaseCount"`
	FolderCount     int64 `json:"folderCount"`
	PlanCount       int64 `json:"planCount"`
	ActivePlanCount int64 `json:"activePlanCount"`
}

// AssignmentStats 当前用户的待执行统计
type AssignmentStats struct {
	Assignee        string `json:"assignee"`
	NotRunCount     int64  `json:"notRunCount"`
	InProgressCount int64  `json:"inProgressCount"`
	TotalAssigned   int64  `json:"totalAssigned"`
}

// ActivityEntry 最近执行记录
type ActivityEntry struct {
	PlanItemID    int64     `json:"planItemId"`
	PlanID        int64     `json:"planId"`
	PlanName      string    `json:"planName"`
	TestCaseTitle string    `json:"testCaseTitle"`
	Result        string    `json:"result"`
	Assignee      *string   `json:"assignee"`
	ExecutedAt    time.Time `json:"executedAt"`
}

// OverviewStats 进行中计划的结果分布
type OverviewStats struct {
	NotRun     int64 `json:"notRun"`
	InProgress int64 `json:"inProgress"`
	Pass       int64 `json:"pass"`
	Fail       int64 `json:"fail"`
	Block      int64 `json:"block"`
	Total      int64 `json:"total"`
}

// ActivePlanEntry 进行中计划及其进度
type ActivePlanEntry struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TotalCount int       `json:"totalCount"`
	Progress   int       `json:"progress"`
	CreatedAt  time.Time `json:"createdAt"`
}
