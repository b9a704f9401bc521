package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/barrosyan/sistema-pronto/utils"
	"gorm.io/gorm"
)

type Event struct {
	ID          int        `gorm:"primary_key" json:"id"`
	UserId      string     `gorm:"size:64;index;not null" json:"user_id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	Location    *string    `gorm:"size:255" json:"location"`
	EventType   *string    `gorm:"size:100" json:"event_type"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEvent struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Location    *string `json:"location"`
	EventType   *string `json:"event_type"`
}

// parseEventDate accepts YYYY-MM-DD or an RFC 3339 timestamp; blank is nil.
func parseEventDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(*s)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New("invalid date " + raw)
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

func (input *NewEvent) validate() (start *time.Time, end *time.Time, err error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, nil, errors.New("event name is required")
	}
	if start, err = parseEventDate(input.StartDate); err != nil {
		return nil, nil, err
	}
	if end, err = parseEventDate(input.EndDate); err != nil {
		return nil, nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, errors.New("end date is before start date")
	}
	return start, end, nil
}

func CreateEvent(ctx context.Context, db *gorm.DB, input *NewEvent) (*Event, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	start, end, err := input.validate()
	if err != nil {
		return nil, err
	}
	event := Event{
		UserId:      userId,
		Name:        input.Name,
		Description: nilIfBlank(input.Description),
		StartDate:   start,
		EndDate:     end,
		Location:    nilIfBlank(input.Location),
		EventType:   nilIfBlank(input.EventType),
	}
	if err := db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return &event, nil
}

func UpdateEvent(ctx context.Context, db *gorm.DB, id int, input *NewEvent) (*Event, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	event, err := utils.FetchModel[Event](ctx, db, userId, id)
	if err != nil {
		return nil, err
	}
	start, end, err := input.validate()
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(event).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": nilIfBlank(input.Description),
		"StartDate":   start,
		"EndDate":     end,
		"Location":    nilIfBlank(input.Location),
		"EventType":   nilIfBlank(input.EventType),
	}).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return event, nil
}

func DeleteEvent(ctx context.Context, db *gorm.DB, id int) (*Event, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	event, err := utils.FetchModel[Event](ctx, db, userId, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(event).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return event, nil
}

func GetEvent(ctx context.Context, db *gorm.DB, id int) (*Event, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	return utils.FetchModel[Event](ctx, db, userId, id)
}

// ListEvents orders by start date, newest first, undated events last.
func ListEvents(ctx context.Context, db *gorm.DB) ([]*Event, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return nil, errors.New("user id is required")
	}
	return utils.FetchAllModels[Event](ctx, db, []string{userId}, "CASE WHEN start_date IS NULL THEN 1 ELSE 0 END, start_date DESC, id DESC")
}
