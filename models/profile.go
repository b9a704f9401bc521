package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/barrosyan/sistema-pronto/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile is the public identity of a user; ID is the owner id used on every row.
type Profile struct {
	ID        string    `gorm:"primary_key;size:64" json:"id"`
	Email     *string   `gorm:"size:255" json:"email"`
	FullName  *string   `gorm:"size:255" json:"full_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProfile struct {
	ID       string  `json:"id" binding:"required"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
}

// UpsertProfile creates the profile or refreshes its email and name.
func UpsertProfile(ctx context.Context, db *gorm.DB, input *NewProfile) (*Profile, error) {
	input.ID = strings.TrimSpace(input.ID)
	if input.ID == "" {
		return nil, errors.New("profile id is required")
	}
	if input.Email != nil && !utils.IsValidEmail(*input.Email) {
		return nil, errors.New("invalid email")
	}
	profile := Profile{ID: input.ID, Email: nilIfBlank(input.Email), FullName: nilIfBlank(input.FullName)}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		return nil, AsBackendError(err)
	}
	return &profile, nil
}

// ListProfiles is only available to privileged users.
func ListProfiles(ctx context.Context, db *gorm.DB) ([]*Profile, error) {
	if isAdmin, _ := utils.GetIsAdminFromContext(ctx); !isAdmin {
		return nil, utils.ErrorForbidden
	}
	var profiles []*Profile
	if err := db.WithContext(ctx).Order("full_name, id").Find(&profiles).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return profiles, nil
}
