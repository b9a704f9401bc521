package utils

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, ownerId string, condition string, args ...interface{}) (int64, error) {
	var count int64
	var model T
	err := db.WithContext(ctx).Model(&model).
		Where("user_id = ?", ownerId).
		Where(condition, args...).
		Count(&count).Error
	return count, err
}

// ValidateUnique fails when another row of the owner already holds value in column.
func ValidateUnique[T any](ctx context.Context, db *gorm.DB, ownerId string, column string, value interface{}, exceptId int) error {
	condition := column + " = ?"
	args := []interface{}{value}
	if exceptId > 0 {
		condition += " AND id <> ?"
		args = append(args, exceptId)
	}
	count, err := ResourceCountWhere[T](ctx, db, ownerId, condition, args...)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate " + column)
	}
	return nil
}
