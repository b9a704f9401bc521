package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/barrosyan/sistema-pronto/utils"
	"gorm.io/gorm"
)

type Campaign struct {
	ID          int       `gorm:"primary_key" json:"id"`
	UserId      string    `gorm:"size:64;not null;uniqueIndex:idx_campaign_owner_name" json:"user_id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:idx_campaign_owner_name" json:"name"`
	Company     *string   `gorm:"size:255" json:"company"`
	ProfileName *string   `gorm:"size:255" json:"profile_name"`
	Objective   *string   `gorm:"type:text" json:"objective"`
	Cadence     *string   `gorm:"size:255" json:"cadence"`
	JobTitles   *string   `gorm:"type:text" json:"job_titles"`
	EventLink   *string   `gorm:"size:512" json:"event_link"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCampaign struct {
	Name        string  `json:"name" binding:"required"`
	Company     *string `json:"company"`
	ProfileName *string `json:"profile_name"`
	Objective   *string `json:"objective"`
	Cadence     *string `json:"cadence"`
	JobTitles   *string `json:"job_titles"`
	EventLink   *string `json:"event_link" binding:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

// CampaignDetails is the editable profile block of a campaign.
type CampaignDetails struct {
	Company     *string `json:"company"`
	ProfileName *string `json:"profile_name"`
	Objective   *string `json:"objective"`
	Cadence     *string `json:"cadence"`
	JobTitles   *string `json:"job_titles"`
}

func (input *NewCampaign) validate(ctx context.Context, db *gorm.DB, userId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return errors.New("campaign name is required")
	}
	if err := utils.ValidateUnique[Campaign](ctx, db, userId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateCampaign(ctx context.Context, db *gorm.DB, input *NewCampaign) (*Campaign, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	if err := input.validate(ctx, db, userId, 0); err != nil {
		return nil, err
	}

	campaign := Campaign{
		UserId:      userId,
		Name:        input.Name,
		Company:     nilIfBlank(input.Company),
		ProfileName: nilIfBlank(input.ProfileName),
		Objective:   nilIfBlank(input.Objective),
		Cadence:     nilIfBlank(input.Cadence),
		JobTitles:   nilIfBlank(input.JobTitles),
		EventLink:   nilIfBlank(input.EventLink),
		IsActive:    utils.NewTrue(),
	}
	if input.IsActive != nil {
		campaign.IsActive = input.IsActive
	}
	if err := db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return &campaign, nil
}

func UpdateCampaign(ctx context.Context, db *gorm.DB, id int, input *NewCampaign) (*Campaign, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	campaign, err := utils.FetchModel[Campaign](ctx, db, userId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, db, userId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"Name":        input.Name,
		"Company":     nilIfBlank(input.Company),
		"ProfileName": nilIfBlank(input.ProfileName),
		"Objective":   nilIfBlank(input.Objective),
		"Cadence":     nilIfBlank(input.Cadence),
		"JobTitles":   nilIfBlank(input.JobTitles),
		"EventLink":   nilIfBlank(input.EventLink),
	}
	if input.IsActive != nil {
		updates["IsActive"] = input.IsActive
	}
	if err := db.WithContext(ctx).Model(campaign).Updates(updates).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return campaign, nil
}

// DeleteCampaign removes the campaign together with its imported metrics and leads.
func DeleteCampaign(ctx context.Context, db *gorm.DB, id int) (*Campaign, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	campaign, err := utils.FetchModel[Campaign](ctx, db, userId, id)
	if err != nil {
		return nil, err
	}
	if _, err := DeleteCampaignMetrics(ctx, db, campaign.Name); err != nil {
		return nil, err
	}
	if _, err := DeleteLeadsOfCampaign(ctx, db, campaign.Name); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(campaign).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return campaign, nil
}

func GetCampaign(ctx context.Context, db *gorm.DB, id int) (*Campaign, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Campaign](ctx, db, userId, id)
}

// GetCampaignByName returns nil, nil when the owner has no campaign of that name.
func GetCampaignByName(ctx context.Context, db *gorm.DB, userId string, name string) (*Campaign, error) {
	var campaigns []Campaign
	err := db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userId, name).
		Limit(1).
		Find(&campaigns).Error
	if err != nil {
		return nil, AsBackendError(err)
	}
	if len(campaigns) == 0 {
		return nil, nil
	}
	return &campaigns[0], nil
}

// ListCampaigns returns the campaigns of every owner the caller may view.
func ListCampaigns(ctx context.Context, db *gorm.DB) ([]*Campaign, error) {
	ownerIds := utils.ViewOwnerIds(ctx)
	if len(ownerIds) == 0 {
		return nil, errors.New("user id is required")
	}
	return utils.FetchAllModels[Campaign](ctx, db, ownerIds, "name")
}

// SaveCampaignDetails updates the campaign named name or inserts it when the
// owner has none. The lookup and the write are separate statements; the owner
// lock only narrows the race when redis is available.
func SaveCampaignDetails(ctx context.Context, db *gorm.DB, name string, details *CampaignDetails) (*Campaign, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("campaign name is required")
	}
	if details == nil {
		details = &CampaignDetails{}
	}

	release, err := utils.OwnerLock(ctx, userId, "CampaignDetails", "Models", "SaveCampaignDetails")
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := GetCampaignByName(ctx, db, userId, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
			"Company":     nilIfBlank(details.Company),
			"ProfileName": nilIfBlank(details.ProfileName),
			"Objective":   nilIfBlank(details.Objective),
			"Cadence":     nilIfBlank(details.Cadence),
			"JobTitles":   nilIfBlank(details.JobTitles),
		}).Error; err != nil {
			return nil, AsBackendError(err)
		}
		return existing, nil
	}

	campaign := Campaign{
		UserId:      userId,
		Name:        name,
		Company:     nilIfBlank(details.Company),
		ProfileName: nilIfBlank(details.ProfileName),
		Objective:   nilIfBlank(details.Objective),
		Cadence:     nilIfBlank(details.Cadence),
		JobTitles:   nilIfBlank(details.JobTitles),
		IsActive:    utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return &campaign, nil
}

// EnsureCampaigns creates a bare campaign row for every name the owner does not
// have yet and reports the names it created.
func EnsureCampaigns(ctx context.Context, db *gorm.DB, names []string) ([]string, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	created := []string{}
	for _, name := range names {
		existing, err := GetCampaignByName(ctx, db, userId, name)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		campaign := Campaign{UserId: userId, Name: name, IsActive: utils.NewTrue()}
		if err := db.WithContext(ctx).Create(&campaign).Error; err != nil {
			if IsUniqueViolation(err) {
				continue
			}
			return created, AsBackendError(err)
		}
		created = append(created, name)
	}
	return created, nil
}

// CampaignsByNames loads the caller's campaigns for the given names.
func CampaignsByNames(ctx context.Context, db *gorm.DB, userId string, names []string) ([]*Campaign, error) {
	var campaigns []*Campaign
	if err := db.WithContext(ctx).
		Where("user_id = ? AND name IN ?", userId, names).
		Find(&campaigns).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return campaigns, nil
}
