package main

import (
	"net/http"

	"github.com/barrosyan/sistema-pronto/models"
	"github.com/gin-gonic/gin"
)

func (s *server) listEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := models.ListEvents(c.Request.Context(), s.db())
		if err != nil {
			s.writeError(c, "listEvents", err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func (s *server) getEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		event, err := models.GetEvent(c.Request.Context(), s.db(), id)
		if err != nil {
			s.writeError(c, "getEvent", err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func (s *server) createEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEvent
		if err := c.ShouldBindJSON(&input); err != nil {
			s.writeError(c, "createEvent", err)
			return
		}
		event, err := models.CreateEvent(c.Request.Context(), s.db(), &input)
		if err != nil {
			s.writeError(c, "createEvent", err)
			return
		}
		c.JSON(http.StatusCreated, event)
	}
}

func (s *server) updateEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewEvent
		if err := c.ShouldBindJSON(&input); err != nil {
			s.writeError(c, "updateEvent", err)
			return
		}
		event, err := models.UpdateEvent(c.Request.Context(), s.db(), id, &input)
		if err != nil {
			s.writeError(c, "updateEvent", err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func (s *server) deleteEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		event, err := models.DeleteEvent(c.Request.Context(), s.db(), id)
		if err != nil {
			s.writeError(c, "deleteEvent", err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}
