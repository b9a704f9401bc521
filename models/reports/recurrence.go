package reports

import (
	"fmt"

	"github.com/barrosyan/sistema-pronto/models"
)

type LeadHistory struct {
	Key         string       `json:"key"`
	Lead        *models.Lead `json:"lead"`
	Events      []string     `json:"events"`
	EventCount  int          `json:"event_count"`
	FirstEvent  string       `json:"first_event"`
	LastEvent   string       `json:"last_event"`
	IsRecurrent bool         `json:"is_recurrent"`
}

type EventLeads struct {
	EventName      string         `json:"event_name"`
	TotalLeads     int            `json:"total_leads"`
	PositiveLeads  int            `json:"positive_leads"`
	NegativeLeads  int            `json:"negative_leads"`
	RecurrentLeads int            `json:"recurrent_leads"`
	NewLeads       int            `json:"new_leads"`
	Leads          []*LeadHistory `json:"leads"`
}

// LeadHistories groups leads by identity key in first-seen order. The first
// lead seen represents the group. Name variants are distinct leads.
func LeadHistories(leads []*models.Lead) ([]*LeadHistory, map[string]*LeadHistory) {
	byKey := map[string]*LeadHistory{}
	ordered := []*LeadHistory{}
	for _, l := range leads {
		key := l.IdentityKey()
		h, ok := byKey[key]
		if !ok {
			h = &LeadHistory{
				Key:        key,
				Lead:       l,
				Events:     []string{l.Campaign},
				EventCount: 1,
				FirstEvent: l.Campaign,
				LastEvent:  l.Campaign,
			}
			byKey[key] = h
			ordered = append(ordered, h)
			continue
		}
		if containsString(h.Events, l.Campaign) {
			continue
		}
		h.Events = append(h.Events, l.Campaign)
		h.EventCount++
		h.LastEvent = l.Campaign
		h.IsRecurrent = h.EventCount > 1
	}
	return ordered, byKey
}

// RecurrentLeads returns the histories seen under more than one campaign.
func RecurrentLeads(leads []*models.Lead) []*LeadHistory {
	histories, _ := LeadHistories(leads)
	out := []*LeadHistory{}
	for _, h := range histories {
		if h.IsRecurrent {
			out = append(out, h)
		}
	}
	return out
}

// EventLeadsAnalysis breaks leads down per campaign, in first-seen campaign order.
func EventLeadsAnalysis(leads []*models.Lead) []*EventLeads {
	_, histories := LeadHistories(leads)
	byEvent := map[string]*EventLeads{}
	ordered := []*EventLeads{}
	for _, l := range leads {
		e, ok := byEvent[l.Campaign]
		if !ok {
			e = &EventLeads{EventName: l.Campaign, Leads: []*LeadHistory{}}
			byEvent[l.Campaign] = e
			ordered = append(ordered, e)
		}
		h := histories[l.IdentityKey()]
		e.TotalLeads++
		switch l.Status {
		case models.LeadStatusPositive:
			e.PositiveLeads++
		case models.LeadStatusNegative:
			e.NegativeLeads++
		}
		if h.IsRecurrent {
			e.RecurrentLeads++
		} else {
			e.NewLeads++
		}
		e.Leads = append(e.Leads, h)
	}
	return ordered
}

// RecommendedApproach suggests the next contact based on how often the lead
// showed up and how the representative lead answered.
func RecommendedApproach(h *LeadHistory) string {
	positive := h.Lead != nil && h.Lead.Status == models.LeadStatusPositive
	switch {
	case h.EventCount == 1 && positive:
		return "Lead novo com resposta positiva - priorizar agendamento de reunião"
	case h.EventCount == 1:
		return "Lead novo - primeira abordagem padrão"
	case h.EventCount == 2 && positive:
		return "Lead recorrente com interesse - referenciar evento anterior e propor reunião"
	case h.EventCount == 2:
		return "Lead recorrente sem conversão anterior - ajustar abordagem e destacar novidades"
	case h.EventCount >= 3 && positive:
		return fmt.Sprintf("Lead muito engajado (%d eventos) - tratamento VIP, reunião prioritária", h.EventCount)
	case h.EventCount >= 3:
		return fmt.Sprintf("Lead presente em %d eventos mas sem conversão - considerar abordagem diferenciada ou qualificação", h.EventCount)
	}
	return "Avaliar histórico detalhado"
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
