package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bhakti-social/apps/notification-service/model"
	"bhakti-social/pkg/database"
)

// userDAO 用户注册表数据访问对象（PostgreSQL实现）
type userDAO struct {
	db *database.PostgreSQL
}

// NewUserDAO 创建用户DAO实例
func NewUserDAO(db *database.PostgreSQL) UserDAO {
	return &userDAO{db: db}
}

// CreateUser 创建用户
func (d *userDAO) CreateUser(ctx context.Context, user *model.User) error {
	err := d.db.GetDB().WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %v", err)
	}
	return nil
}

// GetUserByID 按ID查询用户
func (d *userDAO) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := d.db.GetDB().WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetUserByUsername 按用户名查询用户
func (d *userDAO) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := d.db.GetDB().WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %v", err)
	}
	return &user, nil
}

// ListUserIDs 获取全部用户ID，供广播使用
func (d *userDAO) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := d.db.GetDB().WithContext(ctx).
		Model(&model.User{}).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %v", err)
	}
	return ids, nil
}
