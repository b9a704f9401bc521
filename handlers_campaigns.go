package main

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/models/reports"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/gin-gonic/gin"
)

var errUnknownSchema = errors.New("unrecognized file layout: expected campaign metrics or a lead list")

type importFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func (s *server) listCampaigns() gin.HandlerFunc {
	return func(c *gin.Context) {
		campaigns, err := models.ListCampaigns(c.Request.Context(), s.db())
		if err != nil {
			s.writeError(c, "listCampaigns", err)
			return
		}
		c.JSON(http.StatusOK, campaigns)
	}
}

func (s *server) getCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		campaign, err := models.GetCampaign(c.Request.Context(), s.db(), id)
		if err != nil {
			s.writeError(c, "getCampaign", err)
			return
		}
		c.JSON(http.StatusOK, campaign)
	}
}

func (s *server) createCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCampaign
		if err := c.ShouldBindJSON(&input); err != nil {
			s.writeError(c, "createCampaign", err)
			return
		}
		campaign, err := models.CreateCampaign(c.Request.Context(), s.db(), &input)
		if err != nil {
			s.writeError(c, "createCampaign", err)
			return
		}
		reports.InvalidateOwnerReports(currentUserId(c))
		c.JSON(http.StatusCreated, campaign)
	}
}

func (s *server) updateCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewCampaign
		if err := c.ShouldBindJSON(&input); err != nil {
			s.writeError(c, "updateCampaign", err)
			return
		}
		campaign, err := models.UpdateCampaign(c.Request.Context(), s.db(), id, &input)
		if err != nil {
			s.writeError(c, "updateCampaign", err)
			return
		}
		reports.InvalidateOwnerReports(currentUserId(c))
		c.JSON(http.StatusOK, campaign)
	}
}

// deleteCampaign removes the campaign with its metrics and leads.
func (s *server) deleteCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		campaign, err := models.DeleteCampaign(c.Request.Context(), s.db(), id)
		if err != nil {
			s.writeError(c, "deleteCampaign", err)
			return
		}
		reports.InvalidateOwnerReports(currentUserId(c))
		c.JSON(http.StatusOK, campaign)
	}
}

func (s *server) saveCampaignDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		var details models.CampaignDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			s.writeError(c, "saveCampaignDetails", err)
			return
		}
		campaign, err := models.SaveCampaignDetails(c.Request.Context(), s.db(), c.Param("name"), &details)
		if err != nil {
			s.writeError(c, "saveCampaignDetails", err)
			return
		}
		reports.InvalidateOwnerReports(currentUserId(c))
		c.JSON(http.StatusOK, campaign)
	}
}

// importCampaignFiles detects the schema of every uploaded file and stores its
// rows. The optional campaign field files everything under that campaign.
func (s *server) importCampaignFiles() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form with files is required"})
			return
		}
		headers := append(form.File["files"], form.File["file"]...)
		if len(headers) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
			return
		}
		target := strings.TrimSpace(c.PostForm("campaign"))

		ctx := c.Request.Context()
		userId := currentUserId(c)
		release, err := utils.OwnerLock(ctx, userId, "CampaignImport", "server.go", "importCampaignFiles")
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		defer release()

		summaries := []*models.ImportSummary{}
		failures := []importFailure{}
		campaigns := []string{}
		records := 0
		for _, fh := range headers {
			data, err := readUpload(fh)
			if err != nil {
				failures = append(failures, importFailure{File: fh.Filename, Error: err.Error()})
				continue
			}
			_, parsed, err := models.ParseCampaignFile(fh.Filename, bytes.NewReader(data))
			if err == nil && parsed.Kind == models.SchemaUnknown {
				err = errUnknownSchema
			}
			if err != nil {
				config.LogError(s.logger, "server.go", "importCampaignFiles", "parse import", fh.Filename, err)
				failures = append(failures, importFailure{File: fh.Filename, Error: err.Error()})
				continue
			}
			summary, err := models.ImportCampaignData(ctx, s.db(), parsed, target)
			if summary != nil {
				summaries = append(summaries, summary)
				campaigns = append(campaigns, summary.Campaigns...)
				records += summary.Metrics + summary.Leads
			}
			if err != nil {
				config.LogError(s.logger, "server.go", "importCampaignFiles", "store import", fh.Filename, err)
				failures = append(failures, importFailure{File: fh.Filename, Error: err.Error()})
			}
		}

		if records > 0 || len(summaries) > 0 {
			s.dataChanged(c, config.NotificationActionImport, "import", utils.UniqueSlice(campaigns), records, "")
		}
		status := http.StatusOK
		if len(summaries) == 0 {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"imported": summaries, "failures": failures})
	}
}

func (s *server) listLeads() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := &models.LeadFilter{}
		if campaign := strings.TrimSpace(c.Query("campaign")); campaign != "" {
			filter.Campaign = &campaign
		}
		if status := models.LeadStatus(c.Query("status")); status != "" {
			if !status.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "status must be positive or negative"})
				return
			}
			filter.Status = &status
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		var after *string
		if v := c.Query("after"); v != "" {
			after = &v
		}
		edges, pageInfo, err := models.PaginateLeads(c.Request.Context(), s.db(), filter, limit, after)
		if err != nil {
			s.writeError(c, "listLeads", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"edges": edges, "pageInfo": pageInfo})
	}
}

func (s *server) listMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var campaign *string
		if v := strings.TrimSpace(c.Query("campaign")); v != "" {
			campaign = &v
		}
		metrics, err := models.ListCampaignMetrics(c.Request.Context(), s.db(), campaign)
		if err != nil {
			s.writeError(c, "listMetrics", err)
			return
		}
		if c.Query("grouped") == "true" {
			c.JSON(http.StatusOK, models.GroupMetricsByCampaign(metrics))
			return
		}
		c.JSON(http.StatusOK, metrics)
	}
}
