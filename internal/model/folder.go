package model

// Folder 文件夹模型（自引用树结构）
// sequence 定义同级顺序，在同一 parent 范围内唯一
type Folder struct {
	BaseModel
	Name     string  `gorm:"size:100;not null" json:"name"`
	ParentID *int64  `gorm:"index" json:"parent_id"`
	Sequence int     `gorm:"not null;default:0" json:"sequence"`

	Children []*Folder `gorm:"-" json:"children,omitempty"`
}

// TableName 指定表名
func (Folder) TableName() string {
	return "folders"
}
