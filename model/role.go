package model

// Role 角色模型
type Role struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Name        string       `gorm:"not null;size:20" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"` // 关联权限
}
