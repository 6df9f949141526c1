package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents the user model in the database.
// Login is passwordless: users identify by name and email, the
// experience level drives FAQ answering permissions.
type User struct {
	ID         uint64         `json:"id" gorm:"primaryKey;autoIncrement;comment:用户ID"`
	Name       string         `json:"name" gorm:"size:64;not null;uniqueIndex:uk_name;comment:用户名"`
	Email      string         `json:"email" gorm:"size:128;comment:邮箱"`
	Experience string         `json:"experience" gorm:"size:32;not null;comment:工作年限档位"`
	LastLogin  int64          `json:"last_login" gorm:"comment:最近登录时间(时间戳)"`
	CreatedAt  int64          `json:"created_at" gorm:"autoCreateTime:milli;comment:创建时间(时间戳)"`
	UpdatedAt  int64          `json:"updated_at" gorm:"autoUpdateTime:milli;comment:更新时间(时间戳)"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index;comment:软删除时间"`
}

// TableName returns the table name for GORM.
func (u *User) TableName() string {
	return "users"
}

// BeforeCreate sets the CreatedAt and UpdatedAt fields.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	u.CreatedAt = now
	u.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (u *User) BeforeUpdate(tx *gorm.DB) (err error) {
	u.UpdatedAt = time.Now().UnixMilli()
	return
}
