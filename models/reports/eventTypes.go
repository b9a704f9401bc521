package reports

import "strings"

// Metric is the canonical activity an event type counts.
type Metric string

const (
	MetricInvitations       Metric = "invitations"
	MetricConnections       Metric = "connections"
	MetricMessages          Metric = "messages"
	MetricVisits            Metric = "visits"
	MetricLikes             Metric = "likes"
	MetricComments          Metric = "comments"
	MetricPositiveResponses Metric = "positive_responses"
)

// ActivityMetrics are the metrics that count as outreach activity.
var ActivityMetrics = []Metric{
	MetricInvitations, MetricConnections, MetricMessages,
	MetricVisits, MetricLikes, MetricComments,
}

var eventTypeAliases = map[string]Metric{
	"connection requests sent":     MetricInvitations,
	"invitations sent":             MetricInvitations,
	"invitations":                  MetricInvitations,
	"convites enviados":            MetricInvitations,
	"convites":                     MetricInvitations,
	"connection requests accepted": MetricConnections,
	"connections accepted":         MetricConnections,
	"connections made":             MetricConnections,
	"connections":                  MetricConnections,
	"conexões realizadas":          MetricConnections,
	"conexoes realizadas":          MetricConnections,
	"conexões":                     MetricConnections,
	"messages sent":                MetricMessages,
	"messages":                     MetricMessages,
	"mensagens enviadas":           MetricMessages,
	"mensagens":                    MetricMessages,
	"profile visits":               MetricVisits,
	"visits":                       MetricVisits,
	"visitas":                      MetricVisits,
	"visitas ao perfil":            MetricVisits,
	"post likes":                   MetricLikes,
	"likes":                        MetricLikes,
	"curtidas":                     MetricLikes,
	"comments":                     MetricComments,
	"comentários":                  MetricComments,
	"comentarios":                  MetricComments,
	"positive replies":             MetricPositiveResponses,
	"positive responses":           MetricPositiveResponses,
	"respostas positivas":          MetricPositiveResponses,
}

// ClassifyEventType maps an event type label to its metric, case-insensitively.
func ClassifyEventType(eventType string) (Metric, bool) {
	m, ok := eventTypeAliases[strings.ToLower(strings.TrimSpace(eventType))]
	return m, ok
}
