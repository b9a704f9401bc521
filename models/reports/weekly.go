package reports

import (
	"sort"
	"time"

	"github.com/barrosyan/sistema-pronto/models"
)

type WeeklyPoint struct {
	Week              string  `json:"week"`
	WeekEnd           string  `json:"week_end"`
	Invitations       float64 `json:"invitations"`
	Connections       float64 `json:"connections"`
	Messages          float64 `json:"messages"`
	Visits            float64 `json:"visits"`
	Likes             float64 `json:"likes"`
	Comments          float64 `json:"comments"`
	PositiveResponses float64 `json:"positive_responses"`
	Meetings          int     `json:"meetings"`
	Proposals         int     `json:"proposals"`
	Sales             int     `json:"sales"`
}

// Weekly buckets the daily timeline into Monday weeks. Meetings, proposals and
// sales come from lead dates inside each week, not from the timeline.
func Weekly(metrics []*models.CampaignMetric, leads []*models.Lead) []WeeklyPoint {
	positiveFromLeads := !hasMetric(metrics, MetricPositiveResponses)

	index := map[time.Time]int{}
	starts := []time.Time{}
	points := []WeeklyPoint{}
	for _, day := range DailyTimeline(metrics) {
		date, ok := ParseDate(day.Date)
		if !ok {
			continue
		}
		start := WeekStart(date)
		i, ok := index[start]
		if !ok {
			i = len(points)
			index[start] = i
			starts = append(starts, start)
			points = append(points, WeeklyPoint{
				Week:    start.Format(isoDate),
				WeekEnd: start.AddDate(0, 0, 6).Format(isoDate),
			})
		}
		p := &points[i]
		p.Invitations += day.Invitations
		p.Connections += day.Connections
		p.Messages += day.Messages
		p.Visits += day.Visits
		p.Likes += day.Likes
		p.Comments += day.Comments
		p.PositiveResponses += day.PositiveResponses
	}

	for i := range points {
		start := starts[i]
		end := start.AddDate(0, 0, 6)
		for _, l := range leads {
			if inWeek(l.MeetingDate, start, end) {
				points[i].Meetings++
			}
			if inWeek(l.ProposalDate, start, end) {
				points[i].Proposals++
			}
			if inWeek(l.SaleDate, start, end) {
				points[i].Sales++
			}
			if positiveFromLeads && l.Status == models.LeadStatusPositive && inWeek(l.PositiveResponseDate, start, end) {
				points[i].PositiveResponses++
			}
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Week < points[j].Week })
	return points
}

func inWeek(date *string, start, end time.Time) bool {
	t, ok := parseDatePtr(date)
	return ok && withinDays(t, start, end)
}
