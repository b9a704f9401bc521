package models

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/barrosyan/sistema-pronto/utils"
	"gorm.io/gorm"
)

// DailyData maps an ISO date (YYYY-MM-DD) to the count of that day.
type DailyData map[string]float64

// Dates returns the keys in ascending order.
func (d DailyData) Dates() []string {
	dates := make([]string, 0, len(d))
	for k := range d {
		dates = append(dates, k)
	}
	sort.Strings(dates)
	return dates
}

// CampaignMetric is one (campaign, event type, profile) row. TotalCount and
// the daily counts come from separate columns and are never reconciled.
type CampaignMetric struct {
	ID           int       `gorm:"primary_key" json:"id"`
	UserId       string    `gorm:"size:64;index;not null" json:"user_id"`
	CampaignName string    `gorm:"size:255;index" json:"campaign_name"`
	EventType    string    `gorm:"size:100" json:"event_type"`
	ProfileName  string    `gorm:"size:255" json:"profile_name"`
	TotalCount   float64   `gorm:"not null;default:0" json:"total_count"`
	DailyData    DailyData `gorm:"serializer:json;type:text" json:"daily_data"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DailySum adds up the daily counts.
func (m CampaignMetric) DailySum() float64 {
	var sum float64
	for _, v := range m.DailyData {
		sum += v
	}
	return sum
}

func CreateCampaignMetrics(ctx context.Context, db *gorm.DB, metrics []*CampaignMetric) error {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return errors.New("user id is required")
	}
	if len(metrics) == 0 {
		return nil
	}
	for _, m := range metrics {
		if m.DailyData == nil {
			m.DailyData = DailyData{}
		}
		m.UserId = userId
	}
	if err := db.WithContext(ctx).CreateInBatches(metrics, 200).Error; err != nil {
		return AsBackendError(err)
	}
	return nil
}

// ListCampaignMetrics returns the metrics of every owner the caller may view,
// optionally restricted to one campaign.
func ListCampaignMetrics(ctx context.Context, db *gorm.DB, campaignName *string) ([]*CampaignMetric, error) {
	ownerIds := utils.ViewOwnerIds(ctx)
	if len(ownerIds) == 0 {
		return nil, errors.New("user id is required")
	}
	query := db.WithContext(ctx).Where("user_id IN ?", ownerIds)
	if campaignName != nil {
		query = query.Where("campaign_name = ?", *campaignName)
	}
	var metrics []*CampaignMetric
	if err := query.Order("id").Find(&metrics).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return metrics, nil
}

func DeleteCampaignMetrics(ctx context.Context, db *gorm.DB, campaignName string) (int64, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return 0, errors.New("user id is required")
	}
	result := db.WithContext(ctx).Where("user_id = ? AND campaign_name = ?", userId, campaignName).Delete(&CampaignMetric{})
	return result.RowsAffected, AsBackendError(result.Error)
}
