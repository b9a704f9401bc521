package reports

import (
	"github.com/shopspring/decimal"

	"github.com/barrosyan/sistema-pronto/models"
)

type ConsolidatedMetrics struct {
	Campaign          string          `json:"campaign,omitempty"`
	PeriodStart       string          `json:"period_start"`
	PeriodEnd         string          `json:"period_end"`
	ActiveCampaigns   int             `json:"active_campaigns"`
	ActiveDays        int             `json:"active_days"`
	Invitations       float64         `json:"invitations"`
	Connections       float64         `json:"connections"`
	AcceptanceRate    float64         `json:"acceptance_rate"`
	Messages          float64         `json:"messages"`
	Visits            float64         `json:"visits"`
	Likes             float64         `json:"likes"`
	Comments          float64         `json:"comments"`
	TotalActivities   float64         `json:"total_activities"`
	PositiveResponses float64         `json:"positive_responses"`
	LeadsProcessed    int             `json:"leads_processed"`
	Meetings          int             `json:"meetings"`
	Proposals         int             `json:"proposals"`
	Sales             int             `json:"sales"`
	ProposalValue     decimal.Decimal `json:"proposal_value"`
	SaleValue         decimal.Decimal `json:"sale_value"`
}

type ConversionRateSet struct {
	PositivePerInvitation float64 `json:"positive_per_invitation"`
	PositivePerConnection float64 `json:"positive_per_connection"`
	PositivePerMessage    float64 `json:"positive_per_message"`
	MeetingsPerPositive   float64 `json:"meetings_per_positive"`
	MeetingsPerInvitation float64 `json:"meetings_per_invitation"`
}

// Consolidate rolls metrics and leads up into the profile summary. The period
// spans the earliest and latest daily dates.
func Consolidate(metrics []*models.CampaignMetric, leads []*models.Lead) ConsolidatedMetrics {
	stats := StatsFrom(metrics, leads)
	counts := countLeads(leads)
	c := ConsolidatedMetrics{
		Invitations:       stats.Invitations,
		Connections:       stats.Connections,
		AcceptanceRate:    round1(stats.AcceptanceRate()),
		Messages:          stats.Messages,
		Visits:            stats.Visits,
		Likes:             stats.Likes,
		Comments:          stats.Comments,
		PositiveResponses: stats.PositiveResponses,
		LeadsProcessed:    len(leads),
		Meetings:          counts.Meetings,
		Proposals:         counts.Proposals,
		Sales:             counts.Sales,
		ProposalValue:     decimal.Zero,
		SaleValue:         decimal.Zero,
	}
	c.TotalActivities = c.Invitations + c.Connections + c.Messages + c.Visits + c.Likes + c.Comments

	campaigns := map[string]struct{}{}
	for _, m := range metrics {
		campaigns[m.CampaignName] = struct{}{}
	}
	c.ActiveCampaigns = len(campaigns)

	for _, day := range DailyTimeline(metrics) {
		if c.PeriodStart == "" || day.Date < c.PeriodStart {
			c.PeriodStart = day.Date
		}
		if day.Date > c.PeriodEnd {
			c.PeriodEnd = day.Date
		}
		if day.Activity() > 0 {
			c.ActiveDays++
		}
	}

	for _, l := range leads {
		if l.ProposalValue != nil {
			c.ProposalValue = c.ProposalValue.Add(*l.ProposalValue)
		}
		if l.SaleValue != nil {
			c.SaleValue = c.SaleValue.Add(*l.SaleValue)
		}
	}
	return c
}

// ConsolidateByCampaign consolidates each campaign on its own, in first-seen order.
func ConsolidateByCampaign(metrics []*models.CampaignMetric, leads []*models.Lead) []ConsolidatedMetrics {
	leadsByCampaign := map[string][]*models.Lead{}
	for _, l := range leads {
		leadsByCampaign[l.Campaign] = append(leadsByCampaign[l.Campaign], l)
	}
	out := []ConsolidatedMetrics{}
	for _, group := range models.GroupMetricsByCampaign(metrics) {
		c := Consolidate(group.Metrics, leadsByCampaign[group.CampaignName])
		c.Campaign = group.CampaignName
		out = append(out, c)
	}
	return out
}

// ConversionRates are the profile ratios in percent, one decimal, 0 on an empty denominator.
func ConversionRates(c ConsolidatedMetrics) ConversionRateSet {
	return ConversionRateSet{
		PositivePerInvitation: round1(percent(c.PositiveResponses, c.Invitations)),
		PositivePerConnection: round1(percent(c.PositiveResponses, c.Connections)),
		PositivePerMessage:    round1(percent(c.PositiveResponses, c.Messages)),
		MeetingsPerPositive:   round1(percent(float64(c.Meetings), c.PositiveResponses)),
		MeetingsPerInvitation: round1(percent(float64(c.Meetings), c.Invitations)),
	}
}
