package reports

import (
	"github.com/barrosyan/sistema-pronto/models"
)

// CampaignStats are the headline counts of one campaign or of a whole dashboard.
type CampaignStats struct {
	Campaign          string  `json:"campaign,omitempty"`
	ProfileName       string  `json:"profile_name,omitempty"`
	Invitations       float64 `json:"invitations"`
	Connections       float64 `json:"connections"`
	Messages          float64 `json:"messages"`
	Visits            float64 `json:"visits"`
	Likes             float64 `json:"likes"`
	Comments          float64 `json:"comments"`
	PositiveResponses float64 `json:"positive_responses"`
	Meetings          float64 `json:"meetings"`
	Proposals         float64 `json:"proposals"`
	Sales             float64 `json:"sales"`
}

// AcceptanceRate is connections over invitations in percent.
func (s CampaignStats) AcceptanceRate() float64 {
	return percent(s.Connections, s.Invitations)
}

// StatsFrom totals metrics and leads. Positive responses fall back to the
// positive lead count when no metric carries them.
func StatsFrom(metrics []*models.CampaignMetric, leads []*models.Lead) CampaignStats {
	totals := MetricTotals(metrics)
	counts := countLeads(leads)
	stats := CampaignStats{
		Invitations:       totals[MetricInvitations],
		Connections:       totals[MetricConnections],
		Messages:          totals[MetricMessages],
		Visits:            totals[MetricVisits],
		Likes:             totals[MetricLikes],
		Comments:          totals[MetricComments],
		PositiveResponses: totals[MetricPositiveResponses],
		Meetings:          float64(counts.Meetings),
		Proposals:         float64(counts.Proposals),
		Sales:             float64(counts.Sales),
	}
	if !hasMetric(metrics, MetricPositiveResponses) {
		stats.PositiveResponses = float64(counts.Positive)
	}
	for _, m := range metrics {
		if stats.ProfileName == "" && m.ProfileName != "" {
			stats.ProfileName = m.ProfileName
		}
	}
	return stats
}

type FunnelStage struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Width float64 `json:"width"`
}

// Funnel lays the stats out as ordered stages. Width is the percentage of the
// first stage and is 0 when the first stage is empty.
func Funnel(stats CampaignStats) []FunnelStage {
	stages := []FunnelStage{
		{Key: "invitations", Label: "Convites Enviados", Value: stats.Invitations},
		{Key: "connections", Label: "Conexões Realizadas", Value: stats.Connections},
		{Key: "messages", Label: "Mensagens Enviadas", Value: stats.Messages},
		{Key: "positive_responses", Label: "Respostas Positivas", Value: stats.PositiveResponses},
		{Key: "meetings", Label: "Reuniões Marcadas", Value: stats.Meetings},
		{Key: "proposals", Label: "Propostas", Value: stats.Proposals},
		{Key: "sales", Label: "Vendas", Value: stats.Sales},
	}
	first := stages[0].Value
	for i := range stages {
		stages[i].Width = percent(stages[i].Value, first)
	}
	return stages
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
