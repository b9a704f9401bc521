package reports

import (
	"sort"

	"github.com/barrosyan/sistema-pronto/models"
)

type DailyPoint struct {
	Date  string  `json:"date"`
	Count float64 `json:"count"`
}

// Timeline merges the daily counts of all metrics sharing an event type into
// one series per event type, sorted by date.
func Timeline(metrics []*models.CampaignMetric) map[string][]DailyPoint {
	merged := map[string]map[string]float64{}
	for _, m := range metrics {
		series, ok := merged[m.EventType]
		if !ok {
			series = map[string]float64{}
			merged[m.EventType] = series
		}
		for date, count := range m.DailyData {
			series[date] += count
		}
	}
	timeline := make(map[string][]DailyPoint, len(merged))
	for eventType, series := range merged {
		points := make([]DailyPoint, 0, len(series))
		for date, count := range series {
			points = append(points, DailyPoint{Date: date, Count: count})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
		timeline[eventType] = points
	}
	return timeline
}

// DailyActivity is one day of the timeline with every metric side by side.
type DailyActivity struct {
	Date              string  `json:"date"`
	Invitations       float64 `json:"invitations"`
	Connections       float64 `json:"connections"`
	Messages          float64 `json:"messages"`
	Visits            float64 `json:"visits"`
	Likes             float64 `json:"likes"`
	Comments          float64 `json:"comments"`
	PositiveResponses float64 `json:"positive_responses"`
}

func (d *DailyActivity) add(metric Metric, v float64) {
	switch metric {
	case MetricInvitations:
		d.Invitations += v
	case MetricConnections:
		d.Connections += v
	case MetricMessages:
		d.Messages += v
	case MetricVisits:
		d.Visits += v
	case MetricLikes:
		d.Likes += v
	case MetricComments:
		d.Comments += v
	case MetricPositiveResponses:
		d.PositiveResponses += v
	}
}

// Activity reports whether any outreach happened that day.
func (d DailyActivity) Activity() float64 {
	return d.Invitations + d.Connections + d.Messages + d.Visits + d.Likes + d.Comments
}

// DailyTimeline lays the daily counts of known event types out per date.
func DailyTimeline(metrics []*models.CampaignMetric) []DailyActivity {
	index := map[string]int{}
	days := []DailyActivity{}
	for _, m := range metrics {
		metric, known := ClassifyEventType(m.EventType)
		for date, count := range m.DailyData {
			i, ok := index[date]
			if !ok {
				i = len(days)
				index[date] = i
				days = append(days, DailyActivity{Date: date})
			}
			if known {
				days[i].add(metric, count)
			}
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
