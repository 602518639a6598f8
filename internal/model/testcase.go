package model

// TestCase 测试用例模型
// folder_id 为空表示未归档到任何文件夹；sequence 在同一文件夹范围内唯一
type TestCase struct {
	BaseModel
	Title          string  `gorm:"size:255;not null" json:"title"`
	Description    *string `gorm:"type:text" json:"description"`
	Precondition   *string `gorm:"type:text" json:"precondition"`
	Steps          *string `gorm:"type:text" json:"steps"`
	ExpectedResult *string `gorm:"type:text" json:"expectedResult"`
	Priority       string  `gorm:"size:20;not null;default:'MEDIUM'" json:"priority"`        // LOW / MEDIUM / HIGH
	AutomationType string  `gorm:"size:20;not null;default:'MANUAL'" json:"automationType"`  // MANUAL / AUTOMATED
	Category       *string `gorm:"size:100" json:"category"`
	FolderID       *int64  `gorm:"index" json:"folderId"`
	Sequence       int     `gorm:"not null;default:0" json:"sequence"`
}

// TableName 指定表名
func (TestCase) TableName() string {
	return "test_cases"
}
