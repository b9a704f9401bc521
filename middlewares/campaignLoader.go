package middlewares

import (
	"context"
	"errors"

	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type campaignReader struct {
	db *gorm.DB
}

// getCampaigns resolves campaign names across the viewable owners. The
// caller's own campaign wins when several owners use the same name.
func (r *campaignReader) getCampaigns(ctx context.Context, names []string) []*dataloader.Result[*models.Campaign] {
	if r.db == nil {
		return handleError[*models.Campaign](len(names), errors.New("db is nil"))
	}
	ownerIds := utils.ViewOwnerIds(ctx)
	if len(ownerIds) == 0 {
		return handleError[*models.Campaign](len(names), errors.New("user id is required"))
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	var results []*models.Campaign
	err := r.db.WithContext(ctx).Where("user_id IN ? AND name IN ?", ownerIds, names).Order("id").Find(&results).Error
	if err != nil {
		return handleError[*models.Campaign](len(names), err)
	}

	resultMap := make(map[string]*models.Campaign, len(results))
	for _, result := range results {
		if existing, ok := resultMap[result.Name]; ok && existing.UserId == userId {
			continue
		}
		resultMap[result.Name] = result
	}
	loaderResults := make([]*dataloader.Result[*models.Campaign], 0, len(names))
	for _, name := range names {
		loaderResults = append(loaderResults, &dataloader.Result[*models.Campaign]{Data: resultMap[name]})
	}
	return loaderResults
}

// GetCampaign returns nil without error when no viewable campaign has the name.
func GetCampaign(ctx context.Context, name string) (*models.Campaign, error) {
	loaders := For(ctx)
	if loaders == nil {
		return nil, errors.New("loaders are not configured")
	}
	return loaders.campaignLoader.Load(ctx, name)()
}

func GetCampaigns(ctx context.Context, names []string) ([]*models.Campaign, []error) {
	loaders := For(ctx)
	if loaders == nil {
		return nil, []error{errors.New("loaders are not configured")}
	}
	return loaders.campaignLoader.LoadMany(ctx, names)()
}
