package model

import "time"

// User 用户模型
type User struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Password    string    `gorm:"not null;size:50" json:"-"` // md5 哈希
	NickName    string    `gorm:"not null;size:50" json:"nickName"`
	Email       string    `gorm:"not null;size:50" json:"email"`
	PhoneNumber string    `gorm:"size:20" json:"phoneNumber"`
	HeadPic     string    `gorm:"size:100" json:"headPic"`
	IsFrozen    bool      `gorm:"default:false" json:"isFrozen"`
	IsAdmin     bool      `gorm:"default:false" json:"isAdmin"`
	CreateTime  time.Time `gorm:"autoCreateTime" json:"createTime"`
	UpdateTime  time.Time `gorm:"autoUpdateTime" json:"updateTime"`
	Roles       []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"` // 关联角色
}
