package reports

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/utils"
)

type Dashboard struct {
	Campaign        string                  `json:"campaign,omitempty"`
	Stats           CampaignStats           `json:"stats"`
	Totals          map[string]float64      `json:"totals"`
	Timeline        map[string][]DailyPoint `json:"timeline"`
	Weekly          []WeeklyPoint           `json:"weekly"`
	Funnel          []FunnelStage           `json:"funnel"`
	Consolidated    ConsolidatedMetrics     `json:"consolidated"`
	ConversionRates ConversionRateSet       `json:"conversion_rates"`
	Calendar        []WeeklyActivity        `json:"calendar"`
	Campaigns       []ConsolidatedMetrics   `json:"campaigns"`
	RecurrentLeads  int                     `json:"recurrent_leads"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// BuildDashboard derives every view from already loaded rows.
func BuildDashboard(metrics []*models.CampaignMetric, leads []*models.Lead) *Dashboard {
	consolidated := Consolidate(metrics, leads)
	stats := StatsFrom(metrics, leads)
	return &Dashboard{
		Stats:           stats,
		Totals:          Totals(metrics),
		Timeline:        Timeline(metrics),
		Weekly:          Weekly(metrics, leads),
		Funnel:          Funnel(stats),
		Consolidated:    consolidated,
		ConversionRates: ConversionRates(consolidated),
		Calendar:        ActivityCalendar(metrics),
		Campaigns:       ConsolidateByCampaign(metrics, leads),
		RecurrentLeads:  len(RecurrentLeads(leads)),
		GeneratedAt:     time.Now().UTC(),
	}
}

// GetDashboard loads the caller's viewable metrics and leads, optionally for
// one campaign, and builds the dashboard. Results are cached in redis when
// ENABLE_REPORT_CACHE is set.
func GetDashboard(ctx context.Context, db *gorm.DB, campaign *string) (*Dashboard, error) {
	started := time.Now()
	ownerIds := utils.ViewOwnerIds(ctx)
	if len(ownerIds) == 0 {
		return nil, errors.New("user id is required")
	}

	cacheKey := ""
	if reportCacheEnabled() {
		cacheKey = reportCacheKey("Dashboard", ownerIds, utils.DereferencePtr(campaign))
		var cached Dashboard
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	metrics, err := models.ListCampaignMetrics(ctx, db, campaign)
	if err != nil {
		return nil, err
	}
	leads, err := models.ListLeads(ctx, db, &models.LeadFilter{Campaign: campaign})
	if err != nil {
		return nil, err
	}
	dashboard := BuildDashboard(metrics, leads)
	dashboard.Campaign = utils.DereferencePtr(campaign)

	if cacheKey != "" {
		_ = cacheSet(cacheKey, dashboard, reportCacheTTL())
	}
	logSlowReport(ctx, "GetDashboard", started, map[string]any{"metrics": len(metrics), "leads": len(leads)})
	return dashboard, nil
}

// GetCampaignComparison compares two campaigns by name.
func GetCampaignComparison(ctx context.Context, db *gorm.DB, first, second string) (*Comparison, error) {
	if first == "" || second == "" {
		return nil, errors.New("two campaign names are required")
	}
	a, err := campaignStats(ctx, db, first)
	if err != nil {
		return nil, err
	}
	b, err := campaignStats(ctx, db, second)
	if err != nil {
		return nil, err
	}
	comparison := CompareCampaigns(a, b)
	return &comparison, nil
}

func campaignStats(ctx context.Context, db *gorm.DB, name string) (CampaignStats, error) {
	metrics, err := models.ListCampaignMetrics(ctx, db, &name)
	if err != nil {
		return CampaignStats{}, err
	}
	leads, err := models.ListLeads(ctx, db, &models.LeadFilter{Campaign: &name})
	if err != nil {
		return CampaignStats{}, err
	}
	stats := StatsFrom(metrics, leads)
	stats.Campaign = name
	return stats, nil
}

type LeadAnalysis struct {
	Events    []*EventLeads    `json:"events"`
	Recurrent []*RecurrentLead `json:"recurrent"`
}

type RecurrentLead struct {
	*LeadHistory
	RecommendedApproach string `json:"recommended_approach"`
}

// GetLeadAnalysis loads every viewable lead and reports recurrence per campaign.
func GetLeadAnalysis(ctx context.Context, db *gorm.DB) (*LeadAnalysis, error) {
	leads, err := models.ListLeads(ctx, db, nil)
	if err != nil {
		return nil, err
	}
	analysis := &LeadAnalysis{Events: EventLeadsAnalysis(leads), Recurrent: []*RecurrentLead{}}
	for _, h := range RecurrentLeads(leads) {
		analysis.Recurrent = append(analysis.Recurrent, &RecurrentLead{LeadHistory: h, RecommendedApproach: RecommendedApproach(h)})
	}
	return analysis, nil
}
