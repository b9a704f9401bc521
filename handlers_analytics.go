package main

import (
	"net/http"
	"strings"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/middlewares"
	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/models/reports"
	"github.com/gin-gonic/gin"
)

type dashboardResponse struct {
	*reports.Dashboard
	Details map[string]*models.Campaign `json:"details"`
}

// dashboard returns every view of the caller's data. Campaign rows are
// attached through the request loader so each name is fetched once.
func (s *server) dashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var campaign *string
		if v := strings.TrimSpace(c.Query("campaign")); v != "" {
			campaign = &v
		}
		dash, err := reports.GetDashboard(ctx, s.db(), campaign)
		if err != nil {
			s.writeError(c, "dashboard", err)
			return
		}

		names := make([]string, 0, len(dash.Campaigns))
		for _, m := range dash.Campaigns {
			names = append(names, m.Campaign)
		}
		details := map[string]*models.Campaign{}
		if len(names) > 0 {
			rows, errs := middlewares.GetCampaigns(ctx, names)
			for i, name := range names {
				if i < len(errs) && errs[i] != nil {
					config.LogError(s.logger, "server.go", "dashboard", "load campaign", name, errs[i])
					continue
				}
				if i < len(rows) && rows[i] != nil {
					details[name] = rows[i]
				}
			}
		}
		c.JSON(http.StatusOK, dashboardResponse{Dashboard: dash, Details: details})
	}
}

func (s *server) compareCampaigns() gin.HandlerFunc {
	return func(c *gin.Context) {
		comparison, err := reports.GetCampaignComparison(c.Request.Context(), s.db(), c.Query("first"), c.Query("second"))
		if err != nil {
			s.writeError(c, "compareCampaigns", err)
			return
		}
		c.JSON(http.StatusOK, comparison)
	}
}

func (s *server) leadAnalysis() gin.HandlerFunc {
	return func(c *gin.Context) {
		analysis, err := reports.GetLeadAnalysis(c.Request.Context(), s.db())
		if err != nil {
			s.writeError(c, "leadAnalysis", err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}
