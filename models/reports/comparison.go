package reports

import (
	"fmt"
	"math"
)

type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionEqual Direction = "equal"
)

type ComparisonRow struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	First      float64   `json:"first"`
	Second     float64   `json:"second"`
	Direction  Direction `json:"direction"`
	Difference string    `json:"difference"`
}

type Comparison struct {
	First    CampaignStats   `json:"first"`
	Second   CampaignStats   `json:"second"`
	Rows     []ComparisonRow `json:"rows"`
	Insights []string        `json:"insights"`
}

// CompareCampaigns compares a against b metric by metric.
func CompareCampaigns(a, b CampaignStats) Comparison {
	metrics := []struct {
		key, label string
		value      func(CampaignStats) float64
	}{
		{"invitations", "Convites Enviados", func(s CampaignStats) float64 { return s.Invitations }},
		{"connections", "Conexões Realizadas", func(s CampaignStats) float64 { return s.Connections }},
		{"messages", "Mensagens Enviadas", func(s CampaignStats) float64 { return s.Messages }},
		{"positive_leads", "Respostas Positivas", func(s CampaignStats) float64 { return s.PositiveResponses }},
		{"acceptance_rate", "Taxa de Aceite (%)", CampaignStats.AcceptanceRate},
	}
	rows := make([]ComparisonRow, 0, len(metrics))
	for _, m := range metrics {
		first, second := m.value(a), m.value(b)
		rows = append(rows, ComparisonRow{
			Key:        m.key,
			Label:      m.label,
			First:      first,
			Second:     second,
			Direction:  compareValues(first, second),
			Difference: PercentageDifference(first, second),
		})
	}
	return Comparison{First: a, Second: b, Rows: rows, Insights: comparisonInsights(a, b)}
}

func compareValues(a, b float64) Direction {
	switch {
	case a > b:
		return DirectionUp
	case a < b:
		return DirectionDown
	}
	return DirectionEqual
}

// PercentageDifference formats (a-b)/b with one decimal, signed when positive.
func PercentageDifference(a, b float64) string {
	if b == 0 {
		return "N/A"
	}
	diff := (a - b) / b * 100
	if diff > 0 {
		return fmt.Sprintf("+%.1f%%", diff)
	}
	return fmt.Sprintf("%.1f%%", diff)
}

func comparisonInsights(a, b CampaignStats) []string {
	insights := []string{}
	if a.ProfileName == b.ProfileName {
		insights = append(insights, fmt.Sprintf("Mesmo perfil (%s) em eventos diferentes", a.ProfileName))
	}
	if a.AcceptanceRate() > b.AcceptanceRate() {
		insights = append(insights, fmt.Sprintf("%s teve melhor taxa de aceite (%.1f%% vs %.1f%%)", a.Campaign, a.AcceptanceRate(), b.AcceptanceRate()))
	} else {
		insights = append(insights, fmt.Sprintf("%s teve melhor taxa de aceite (%.1f%% vs %.1f%%)", b.Campaign, b.AcceptanceRate(), a.AcceptanceRate()))
	}
	diff := a.PositiveResponses - b.PositiveResponses
	switch {
	case diff > 0:
		insights = append(insights, fmt.Sprintf("%s gerou mais respostas positivas (+%s)", a.Campaign, formatCount(diff)))
	case diff < 0:
		insights = append(insights, fmt.Sprintf("%s gerou mais respostas positivas (+%s)", b.Campaign, formatCount(-diff)))
	default:
		insights = append(insights, "Ambas geraram o mesmo número de respostas positivas")
	}
	return insights
}

func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
