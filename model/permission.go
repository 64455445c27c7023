package model

// Permission 权限模型，code 是聚合去重的键
type Permission struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Code        string `gorm:"not null;size:20" json:"code"`
	Description string `gorm:"not null;size:100" json:"description"`
}
