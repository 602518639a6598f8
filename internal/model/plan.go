package model

import "time"

// Plan 测试计划模型
// 创建时以 PlanItem 的形式快照所选测试用例，Plan 独占其 Items 的生命周期
type Plan struct {
	BaseModel
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Status      string  `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"` // ACTIVE / ARCHIVED
	CreatedBy   string  `gorm:"size:100;not null" json:"createdBy"`

	Items []PlanItem `gorm:"foreignKey:PlanID" json:"items,omitempty"`
}

// TableName 指定表名
func (Plan) TableName() string {
	return "plans"
}

// PlanItem 计划条目: (plan, test_case) 维度的执行记录
// executed_at 仅在 result 被写入时更新，评论/指派的单独修改不会重置
type PlanItem struct {
	BaseModel
	PlanID     int64      `gorm:"not null;uniqueIndex:uk_plan_case,priority:1" json:"planId"`
	TestCaseID int64      `gorm:"not null;uniqueIndex:uk_plan_case,priority:2;index" json:"testCaseId"`
	Result     string     `gorm:"size:20;not null;default:'NOT_RUN';index" json:"result"` // NOT_RUN / IN_PROGRESS / PASS / FAIL / BLOCK
	Assignee   *string    `gorm:"size:100;index" json:"assignee"`
	Comment    *string    `gorm:"type:text" json:"comment"`
	ExecutedAt *time.Time `json:"executedAt"`

	TestCase *TestCase `gorm:"foreignKey:TestCaseID" json:"testCase,omitempty"`
}

// TableName 指定表名
func (PlanItem) TableName() string {
	return "plan_items"
}
