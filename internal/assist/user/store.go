// Package user 提供免密登录的用户管理。
package user

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/camos-io/camos-assist/internal/model"
)

// Store 封装用户表的数据库访问。
type Store struct {
	db *gorm.DB
}

// NewStore 创建用户存储实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate 同步用户表结构。
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&model.User{})
}

// GetByName 按用户名查找用户，不存在时返回 (nil, nil)。
func (s *Store) GetByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Upsert 按用户名创建或更新用户，并刷新最近登录时间。
func (s *Store) Upsert(ctx context.Context, name, email, experience string) (*model.User, error) {
	now := time.Now().UnixMilli()

	existing, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		u := &model.User{
			Name:       name,
			Email:      email,
			Experience: experience,
			LastLogin:  now,
		}
		if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
			return nil, err
		}
		return u, nil
	}

	existing.Email = email
	existing.Experience = experience
	existing.LastLogin = now
	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}
