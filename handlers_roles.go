package main

import (
	"net/http"

	"github.com/barrosyan/sistema-pronto/middlewares"
	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/gin-gonic/gin"
)

type pmRoleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type profileRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
}

// saveProfile upserts the caller's own profile. The id comes from the session.
func (s *server) saveProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, "saveProfile", err)
			return
		}
		input := models.NewProfile{ID: currentUserId(c), Email: req.Email, FullName: req.FullName}
		profile, err := models.UpsertProfile(c.Request.Context(), s.db(), &input)
		if err != nil {
			s.writeError(c, "saveProfile", err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func (s *server) listProfiles() gin.HandlerFunc {
	return func(c *gin.Context) {
		profiles, err := models.ListProfiles(c.Request.Context(), s.db())
		if err != nil {
			s.writeError(c, "listProfiles", err)
			return
		}
		c.JSON(http.StatusOK, profiles)
	}
}

func (s *server) myRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, _ := utils.GetIsAdminFromContext(c.Request.Context())
		username, _ := utils.GetUsernameFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id":     currentUserId(c),
			"username":    username,
			"is_pm":       isAdmin,
			"view_owners": utils.ViewOwnerIds(c.Request.Context()),
		})
	}
}

// togglePMRole grants or revokes the PM role of the caller.
func (s *server) togglePMRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pmRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, "togglePMRole", err)
			return
		}
		ctx := c.Request.Context()
		userId := currentUserId(c)
		var err error
		if *req.Enabled {
			err = models.GrantPrivileged(ctx, s.db(), userId)
		} else {
			err = models.RevokePrivileged(ctx, s.db(), userId)
		}
		if err != nil {
			s.writeError(c, "togglePMRole", err)
			return
		}
		middlewares.ForgetPrivileged(userId)
		c.JSON(http.StatusOK, gin.H{"user_id": userId, "is_pm": *req.Enabled})
	}
}
