package utils

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db
// (ownerId is used in query's WHERE, may return RecordNotFound)
func FetchModel[T any](ctx context.Context, db *gorm.DB, ownerId string, id int, associations ...string) (*T, error) {
	dbCtx := db.WithContext(ctx).Where("user_id = ?", ownerId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models of the given owners
func FetchAllModels[T any](ctx context.Context, db *gorm.DB, ownerIds []string, order string) ([]*T, error) {
	dbCtx := db.WithContext(ctx).Where("user_id IN ?", ownerIds)
	if order != "" {
		dbCtx = dbCtx.Order(order)
	}
	var results []*T
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
