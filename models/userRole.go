package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type RoleName string

// RolePrivileged is the PM role: it may view other users' data.
const RolePrivileged RoleName = "admin"

type UserRole struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserId    string    `gorm:"size:64;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role      RoleName  `gorm:"size:32;not null;uniqueIndex:idx_user_role" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GrantPrivileged adds the PM role. Granting it twice is not an error.
func GrantPrivileged(ctx context.Context, db *gorm.DB, userId string) error {
	if userId == "" {
		return errors.New("user id is required")
	}
	role := UserRole{UserId: userId, Role: RolePrivileged}
	err := AsBackendError(db.WithContext(ctx).Create(&role).Error)
	if err != nil && IsUniqueViolation(err) {
		return nil
	}
	return err
}

func RevokePrivileged(ctx context.Context, db *gorm.DB, userId string) error {
	if userId == "" {
		return errors.New("user id is required")
	}
	return AsBackendError(db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userId, RolePrivileged).
		Delete(&UserRole{}).Error)
}

func IsPrivileged(ctx context.Context, db *gorm.DB, userId string) (bool, error) {
	if userId == "" {
		return false, nil
	}
	var count int64
	err := db.WithContext(ctx).Model(&UserRole{}).
		Where("user_id = ? AND role = ?", userId, RolePrivileged).
		Count(&count).Error
	if err != nil {
		return false, AsBackendError(err)
	}
	return count > 0, nil
}
