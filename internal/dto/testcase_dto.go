package dto

// CreateTestCaseRequest 创建测试用例请求
type CreateTestCaseRequest struct {
	Title          string  `json:"title" binding:"required,max=255"`
	Description    *string `json:"description"`
	Precondition   *string `json:"precondition"`
	Steps          *string `json:"steps"`
	ExpectedResult *string `json:"expectedResult"`
	Priority       string  `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AutomationType string  `json:"automationType" binding:"omitempty,oneof=MANUAL AUTOMATED"`
	Category       *string `json:"category"`
	FolderID       *int64  `json:"folderId"`
}

// UpdateTestCaseRequest 更新测试用例请求（部分更新）
type UpdateTestCaseRequest struct {
	Title          *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description    *string `json:"description"`
	Precondition   *string `json:"precondition"`
	Steps          *string `json:"steps"`
	ExpectedResult *string `json:"expectedResult"`
	Priority       *string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AutomationType *string `json:"automationType" binding:"omitempty,oneof=MANUAL AUTOMATED"`
	Category       *string `json:"category"`
}

// ReorderTestCasesRequest 文件夹内重排序请求
type ReorderTestCasesRequest struct {
	FolderID   *int64  `json:"folderId"`
	OrderedIDs []int64 `json:"orderedIds" binding:"required,min=1"`
}

// BulkUpdateTestCasesRequest 批量更新请求
// 至少指定一个待修改字段（服务层校验）
type BulkUpdateTestCasesRequest struct {
	IDs            []int64 `json:"ids" binding:"required,min=1"`
	Priority       *string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AutomationType *string `json:"automationType" binding:"omitempty,oneof=MANUAL AUTOMATED"`
	Category       *string `json:"category"`
	FolderID       *int64  `json:"folderId"`
	ClearFolder    bool    `json:"clearFolder"` // true 时移动到未归档（folderId 置空）
}

// BulkDeleteTestCasesRequest 批量删除请求
type BulkDeleteTestCasesRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

// MoveTestCasesRequest 批量移动到目标文件夹请求
type MoveTestCasesRequest struct {
	IDs            []int64 `json:"ids" binding:"required,min=1"`
	TargetFolderID *int64  `json:"targetFolderId"`
}

// ImportFailure CSV 导入失败明细
// Row 为 CSV 文件中的展示行号（数据行序号 + 表头行 + 1-based 偏移）
type ImportFailure struct {
	Row     int               `json:"row"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

// ImportResult CSV 导入结果
type ImportResult struct {
	SuccessCount int             `json:"successCount"`
	FailureCount int             `json:"failureCount"`
	Failures     []ImportFailure `json:"failures"`
}
