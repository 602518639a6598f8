package model

import "time"

// User 用户模型
// 首个注册用户自动成为 ADMIN/ACTIVE，其余用户注册后处于 PENDING，需管理员审批
type User struct {
	BaseModel
	Email       string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"` // bcrypt哈希，不返回到前端
	Name        string     `gorm:"size:100;not null" json:"name"`
	Role        string     `gorm:"size:20;not null;default:'USER';index" json:"role"`      // USER / ADMIN
	Status      string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING / ACTIVE / REJECTED
	LastLoginAt *time.Time `json:"last_login_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
