package dao

import (
	"errors"

	"userhub/model"

	"gorm.io/gorm"
)

type UserDAO struct {
	db *gorm.DB
}

// NewUserDAO 创建一个新的 UserDAO 实例
func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// CreateUser 创建新用户
func (dao *UserDAO) CreateUser(user *model.User) error {
	return dao.db.Create(user).Error
}

// FindByUsername 根据用户名查询用户，不存在返回 (nil, nil)
func (dao *UserDAO) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := dao.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameAndAdmin 登录查询：按用户名 + 管理员分区查找，
// 同时预加载角色及角色下的权限。
func (dao *UserDAO) FindByUsernameAndAdmin(username string, isAdmin bool) (*model.User, error) {
	var user model.User
	err := dao.db.
		Preload("Roles.Permissions").
		Where("username = ? AND is_admin = ?", username, isAdmin).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDAndAdmin 按 ID + 管理员分区查找，预加载同上。
func (dao *UserDAO) FindByIDAndAdmin(id uint64, isAdmin bool) (*model.User, error) {
	var user model.User
	err := dao.db.
		Preload("Roles.Permissions").
		Where("id = ? AND is_admin = ?", id, isAdmin).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SavePermissions 批量写入权限
func (dao *UserDAO) SavePermissions(permissions []*model.Permission) error {
	return dao.db.Create(permissions).Error
}

// SaveRoles 批量写入角色及角色-权限关联
func (dao *UserDAO) SaveRoles(roles []*model.Role) error {
	return dao.db.Create(roles).Error
}

// SaveUsers 批量写入用户及用户-角色关联
func (dao *UserDAO) SaveUsers(users []*model.User) error {
	return dao.db.Create(users).Error
}
