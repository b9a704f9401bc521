package reports

import (
	"github.com/barrosyan/sistema-pronto/models"
)

// Totals sums TotalCount per event type, ignoring dates.
func Totals(metrics []*models.CampaignMetric) map[string]float64 {
	totals := map[string]float64{}
	for _, m := range metrics {
		totals[m.EventType] += m.TotalCount
	}
	return totals
}

// MetricTotals sums TotalCount per canonical metric. Unknown event types are skipped.
func MetricTotals(metrics []*models.CampaignMetric) map[Metric]float64 {
	totals := map[Metric]float64{}
	for _, m := range metrics {
		if metric, ok := ClassifyEventType(m.EventType); ok {
			totals[metric] += m.TotalCount
		}
	}
	return totals
}

func hasMetric(metrics []*models.CampaignMetric, want Metric) bool {
	for _, m := range metrics {
		if metric, ok := ClassifyEventType(m.EventType); ok && metric == want {
			return true
		}
	}
	return false
}

type leadCounts struct {
	Positive  int
	Negative  int
	Meetings  int
	Proposals int
	Sales     int
}

func countLeads(leads []*models.Lead) leadCounts {
	var c leadCounts
	for _, l := range leads {
		switch l.Status {
		case models.LeadStatusPositive:
			c.Positive++
		case models.LeadStatusNegative:
			c.Negative++
		}
		if hasText(l.MeetingDate) {
			c.Meetings++
		}
		if hasText(l.ProposalDate) || l.ProposalValue != nil {
			c.Proposals++
		}
		if hasText(l.SaleDate) || l.SaleValue != nil {
			c.Sales++
		}
	}
	return c
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
