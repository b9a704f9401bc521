package models

import (
	"context"

	"gorm.io/gorm"
)

type ImportSummary struct {
	File             string     `json:"file"`
	Kind             SchemaKind `json:"kind"`
	Metrics          int        `json:"metrics"`
	Leads            int        `json:"leads"`
	Campaigns        []string   `json:"campaigns"`
	CreatedCampaigns []string   `json:"created_campaigns"`
}

// ImportCampaignData stores normalized rows for the caller. When targetCampaign
// is set every row is filed under it. Campaign rows are created for names the
// caller does not have yet. Writes are independent; a failure keeps what was
// already stored.
func ImportCampaignData(ctx context.Context, db *gorm.DB, data ParsedCampaignData, targetCampaign string) (*ImportSummary, error) {
	data = data.WithCampaignName(targetCampaign)
	summary := &ImportSummary{
		File:             data.File,
		Kind:             data.Kind,
		Campaigns:        data.CampaignNames(),
		CreatedCampaigns: []string{},
	}
	if len(data.Metrics) == 0 && len(data.Leads) == 0 {
		return summary, nil
	}

	created, err := EnsureCampaigns(ctx, db, summary.Campaigns)
	summary.CreatedCampaigns = created
	if err != nil {
		return summary, err
	}
	if err := CreateCampaignMetrics(ctx, db, data.Metrics); err != nil {
		return summary, err
	}
	summary.Metrics = len(data.Metrics)
	if err := CreateLeads(ctx, db, data.Leads); err != nil {
		return summary, err
	}
	summary.Leads = len(data.Leads)
	return summary, nil
}
