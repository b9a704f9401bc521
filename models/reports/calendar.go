package reports

import (
	"sort"
	"time"

	"github.com/barrosyan/sistema-pronto/models"
)

const (
	DayActive   = "Ativo"
	DayInactive = "Inativo"
)

// WeeklyActivity flags each weekday, Monday first, as active or not.
type WeeklyActivity struct {
	Week       string    `json:"week"`
	Days       [7]string `json:"days"`
	ActiveDays int       `json:"active_days"`
}

// ActivityCalendar marks a day active when any metric counted something on it.
func ActivityCalendar(metrics []*models.CampaignMetric) []WeeklyActivity {
	active := map[time.Time]map[int]bool{}
	for _, m := range metrics {
		for date, count := range m.DailyData {
			t, ok := ParseDate(date)
			if !ok {
				continue
			}
			start := WeekStart(t)
			days, ok := active[start]
			if !ok {
				days = map[int]bool{}
				active[start] = days
			}
			if count > 0 {
				days[int(t.Sub(start).Hours()/24)] = true
			}
		}
	}

	weeks := make([]WeeklyActivity, 0, len(active))
	for start, days := range active {
		w := WeeklyActivity{Week: start.Format(isoDate)}
		for i := range w.Days {
			w.Days[i] = DayInactive
			if days[i] {
				w.Days[i] = DayActive
				w.ActiveDays++
			}
		}
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })
	return weeks
}
