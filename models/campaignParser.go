package models

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/barrosyan/sistema-pronto/tabular"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/shopspring/decimal"
)

type SchemaKind string

const (
	SchemaCampaignMetrics SchemaKind = "campaign_metrics"
	SchemaPositiveLeads   SchemaKind = "positive_leads"
	SchemaNegativeLeads   SchemaKind = "negative_leads"
	SchemaUnknown         SchemaKind = "unknown"
)

// column markers of the outreach tool exports
const (
	ColCampaignName = "Campaign Name"
	ColEventType    = "Event Type"
	ColProfileName  = "Profile Name"
	ColTotalCount   = "Total Count"

	ColCampanha             = "Campanha"
	ColLinkedIn             = "LinkedIn"
	ColNome                 = "Nome"
	ColCargo                = "Cargo"
	ColEmpresa              = "Empresa"
	ColPositiveResponseDate = "Data Resposta Positiva"
	ColNegativeResponseDate = "Data Resposta Negativa"
	ColTransferDate         = "Data Repasse"
	ColStatus               = "Status"
	ColComments             = "Comentários"
	ColObservations         = "Observações"
	ColMeetingScheduleDate  = "Data de agendamento da reunião"
	ColMeetingDate          = "Data da Reunião"
	ColProposalDate         = "Data Proposta"
	ColProposalValue        = "Valor Proposta"
	ColSaleDate             = "Data Venda"
	ColSaleValue            = "Valor Venda"
	ColProfile              = "Perfil"
	ColClassification       = "Classificação"
	ColAttendedWebinar      = "Participou do Webnar"
	ColWhatsApp             = "WhatsApp"
	ColStandDay             = "Dia do Stand"
	ColPavilion             = "Pavilhão"
	ColStand                = "Stand"
	ColFollowUpReason       = "Teve FU? Porque?"

	// AttendedWebinarMarker is the only cell text read as "attended".
	AttendedWebinarMarker = "Sim"
)

var isoDateHeader = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DetectSchema classifies a file by its header set.
func DetectSchema(headers []string) SchemaKind {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}
	has := func(h string) bool {
		_, ok := set[h]
		return ok
	}
	switch {
	case has(ColCampaignName) && has(ColEventType):
		return SchemaCampaignMetrics
	case has(ColCampanha) && has(ColLinkedIn):
		if has(ColPositiveResponseDate) {
			return SchemaPositiveLeads
		}
		return SchemaNegativeLeads
	default:
		return SchemaUnknown
	}
}

// cellText is the raw text of a cell, "" when absent.
func cellText(row *tabular.Record, col string) string {
	return row.Get(col).String()
}

// optionalText is nil for absent or blank cells.
func optionalText(row *tabular.Record, col string) *string {
	v := row.Get(col)
	if v.IsEmpty() {
		return nil
	}
	s := v.String()
	return &s
}

// cellNumber reads a number cell; absent or non-numeric is 0.
func cellNumber(row *tabular.Record, col string) float64 {
	f, ok := row.Get(col).Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// cellMoney leaves empty or unreadable amounts absent, never zero.
func cellMoney(row *tabular.Record, col string) *decimal.Decimal {
	v := row.Get(col)
	if v.IsEmpty() {
		return nil
	}
	if v.Kind() == tabular.KindNumber {
		f, _ := v.Float()
		d := decimal.NewFromFloat(f)
		return &d
	}
	d, err := utils.ParseMoney(v.String())
	if err != nil {
		return nil
	}
	return &d
}

func NormalizeMetrics(rows []*tabular.Record) []*CampaignMetric {
	metrics := make([]*CampaignMetric, 0, len(rows))
	for _, row := range rows {
		daily := DailyData{}
		for _, key := range row.Keys() {
			if isoDateHeader.MatchString(key) {
				daily[key] = cellNumber(row, key)
			}
		}
		metrics = append(metrics, &CampaignMetric{
			CampaignName: cellText(row, ColCampaignName),
			EventType:    cellText(row, ColEventType),
			ProfileName:  cellText(row, ColProfileName),
			TotalCount:   cellNumber(row, ColTotalCount),
			DailyData:    daily,
		})
	}
	return metrics
}

func NormalizeLeads(rows []*tabular.Record, positive bool) []*Lead {
	leads := make([]*Lead, 0, len(rows))
	for i, row := range rows {
		lead := &Lead{
			SourceId: fmt.Sprintf("lead-%d", i),
			Campaign: cellText(row, ColCampanha),
			LinkedIn: cellText(row, ColLinkedIn),
			Name:     cellText(row, ColNome),
			Position: cellText(row, ColCargo),
			Company:  cellText(row, ColEmpresa),
			Status:   LeadStatusNegative,
		}
		lead.TransferDate = optionalText(row, ColTransferDate)
		lead.StatusDetails = optionalText(row, ColStatus)
		lead.Observations = optionalText(row, ColObservations)

		if positive {
			lead.Status = LeadStatusPositive
			lead.PositiveResponseDate = optionalText(row, ColPositiveResponseDate)
			lead.Comments = optionalText(row, ColComments)
			lead.FollowUp1Date = optionalText(row, "Data FU 1")
			lead.FollowUp1Comments = optionalText(row, "Comentarios FU1")
			lead.FollowUp2Date = optionalText(row, "Data FU 2")
			lead.FollowUp2Comments = optionalText(row, "Comentarios FU2")
			lead.FollowUp3Date = optionalText(row, "Data FU 3")
			lead.FollowUp3Comments = optionalText(row, "Comentarios FU3")
			lead.FollowUp4Date = optionalText(row, "Data FU 4")
			lead.FollowUp4Comments = optionalText(row, "Comentarios FU4")
			lead.MeetingScheduleDate = optionalText(row, ColMeetingScheduleDate)
			lead.MeetingDate = optionalText(row, ColMeetingDate)
			lead.ProposalDate = optionalText(row, ColProposalDate)
			lead.ProposalValue = cellMoney(row, ColProposalValue)
			lead.SaleDate = optionalText(row, ColSaleDate)
			lead.SaleValue = cellMoney(row, ColSaleValue)
			lead.Profile = optionalText(row, ColProfile)
			lead.Classification = optionalText(row, ColClassification)
			lead.AttendedWebinar = utils.NewFalse()
			if cellText(row, ColAttendedWebinar) == AttendedWebinarMarker {
				lead.AttendedWebinar = utils.NewTrue()
			}
			lead.WhatsApp = optionalText(row, ColWhatsApp)
			if lead.WhatsApp != nil {
				if e164, ok := utils.NormalizePhoneE164(*lead.WhatsApp); ok {
					lead.WhatsAppE164 = &e164
				}
			}
			lead.StandDay = optionalText(row, ColStandDay)
			lead.Pavilion = optionalText(row, ColPavilion)
			lead.Stand = optionalText(row, ColStand)
		} else {
			lead.NegativeResponseDate = optionalText(row, ColNegativeResponseDate)
			lead.FollowUpReason = optionalText(row, ColFollowUpReason)
			reason := row.Get(ColFollowUpReason)
			hadFollowUp := !reason.IsAbsent() && reason.String() != ""
			lead.HadFollowUp = &hadFollowUp
		}
		leads = append(leads, lead)
	}
	return leads
}

type ParsedCampaignData struct {
	File    string            `json:"file"`
	Kind    SchemaKind        `json:"kind"`
	Metrics []*CampaignMetric `json:"metrics"`
	Leads   []*Lead           `json:"leads"`
}

// ParseCampaignRows detects the schema of file and normalizes its rows.
// Unknown files yield no records and no error.
func ParseCampaignRows(file *tabular.ParsedFile) ParsedCampaignData {
	data := ParsedCampaignData{
		File:    file.Name,
		Kind:    DetectSchema(file.Headers),
		Metrics: []*CampaignMetric{},
		Leads:   []*Lead{},
	}
	switch data.Kind {
	case SchemaCampaignMetrics:
		data.Metrics = NormalizeMetrics(file.Rows)
	case SchemaPositiveLeads:
		data.Leads = NormalizeLeads(file.Rows, true)
	case SchemaNegativeLeads:
		data.Leads = NormalizeLeads(file.Rows, false)
	}
	return data
}

func ParseCampaignFile(name string, r io.Reader) (*tabular.ParsedFile, ParsedCampaignData, error) {
	file, err := tabular.Parse(name, r)
	if err != nil {
		return nil, ParsedCampaignData{File: name, Kind: SchemaUnknown}, err
	}
	return file, ParseCampaignRows(file), nil
}

// WithCampaignName stamps name on every record, used when an import targets
// a chosen campaign. Blank names leave the data untouched.
func (d ParsedCampaignData) WithCampaignName(name string) ParsedCampaignData {
	name = strings.TrimSpace(name)
	if name == "" {
		return d
	}
	for _, m := range d.Metrics {
		m.CampaignName = name
	}
	for _, l := range d.Leads {
		l.Campaign = name
	}
	return d
}

// CampaignNames lists the distinct campaign names in first-seen order.
func (d ParsedCampaignData) CampaignNames() []string {
	names := []string{}
	for _, m := range d.Metrics {
		names = append(names, m.CampaignName)
	}
	for _, l := range d.Leads {
		names = append(names, l.Campaign)
	}
	out := []string{}
	for _, n := range utils.UniqueSlice(names) {
		if strings.TrimSpace(n) != "" {
			out = append(out, n)
		}
	}
	return out
}

type CampaignGroup struct {
	CampaignName string            `json:"campaign_name"`
	Metrics      []*CampaignMetric `json:"metrics"`
}

// GroupMetricsByCampaign groups metrics by campaign name in first-seen order.
func GroupMetricsByCampaign(metrics []*CampaignMetric) []CampaignGroup {
	index := map[string]int{}
	groups := []CampaignGroup{}
	for _, m := range metrics {
		i, ok := index[m.CampaignName]
		if !ok {
			i = len(groups)
			index[m.CampaignName] = i
			groups = append(groups, CampaignGroup{CampaignName: m.CampaignName})
		}
		groups[i].Metrics = append(groups[i].Metrics, m)
	}
	return groups
}
