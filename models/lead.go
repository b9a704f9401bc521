package models

import (
	"context"
	"errors"
	"time"

	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LeadStatus string

const (
	LeadStatusPositive LeadStatus = "positive"
	LeadStatusNegative LeadStatus = "negative"
)

func (s LeadStatus) IsValid() bool {
	return s == LeadStatusPositive || s == LeadStatusNegative
}

type Lead struct {
	ID       int        `gorm:"primary_key" json:"id"`
	UserId   string     `gorm:"size:64;index;not null" json:"user_id"`
	SourceId string     `gorm:"size:32" json:"source_id"`
	Campaign string     `gorm:"size:255;index" json:"campaign"`
	LinkedIn string     `gorm:"size:512" json:"linkedin"`
	Name     string     `gorm:"size:255" json:"name"`
	Position string     `gorm:"size:255" json:"position"`
	Company  string     `gorm:"size:255" json:"company"`
	Status   LeadStatus `gorm:"size:16;not null" json:"status"`

	// shared by both clusters
	TransferDate  *string `gorm:"size:32" json:"transfer_date,omitempty"`
	StatusDetails *string `gorm:"size:255" json:"status_details,omitempty"`
	Observations  *string `gorm:"type:text" json:"observations,omitempty"`

	// positive cluster
	PositiveResponseDate *string          `gorm:"size:32" json:"positive_response_date,omitempty"`
	Comments             *string          `gorm:"type:text" json:"comments,omitempty"`
	FollowUp1Date        *string          `gorm:"size:32" json:"follow_up1_date,omitempty"`
	FollowUp1Comments    *string          `gorm:"type:text" json:"follow_up1_comments,omitempty"`
	FollowUp2Date        *string          `gorm:"size:32" json:"follow_up2_date,omitempty"`
	FollowUp2Comments    *string          `gorm:"type:text" json:"follow_up2_comments,omitempty"`
	FollowUp3Date        *string          `gorm:"size:32" json:"follow_up3_date,omitempty"`
	FollowUp3Comments    *string          `gorm:"type:text" json:"follow_up3_comments,omitempty"`
	FollowUp4Date        *string          `gorm:"size:32" json:"follow_up4_date,omitempty"`
	FollowUp4Comments    *string          `gorm:"type:text" json:"follow_up4_comments,omitempty"`
	MeetingScheduleDate  *string          `gorm:"size:32" json:"meeting_schedule_date,omitempty"`
	MeetingDate          *string          `gorm:"size:32" json:"meeting_date,omitempty"`
	ProposalDate         *string          `gorm:"size:32" json:"proposal_date,omitempty"`
	ProposalValue        *decimal.Decimal `gorm:"type:decimal(20,4)" json:"proposal_value,omitempty"`
	SaleDate             *string          `gorm:"size:32" json:"sale_date,omitempty"`
	SaleValue            *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sale_value,omitempty"`
	Profile              *string          `gorm:"size:255" json:"profile,omitempty"`
	Classification       *string          `gorm:"size:255" json:"classification,omitempty"`
	AttendedWebinar      *bool            `json:"attended_webinar,omitempty"`
	WhatsApp             *string          `gorm:"size:64" json:"whatsapp,omitempty"`
	WhatsAppE164         *string          `gorm:"size:20" json:"whatsapp_e164,omitempty"`
	StandDay             *string          `gorm:"size:64" json:"stand_day,omitempty"`
	Pavilion             *string          `gorm:"size:64" json:"pavilion,omitempty"`
	Stand                *string          `gorm:"size:64" json:"stand,omitempty"`

	// negative cluster
	NegativeResponseDate *string `gorm:"size:32" json:"negative_response_date,omitempty"`
	HadFollowUp          *bool   `json:"had_follow_up,omitempty"`
	FollowUpReason       *string `gorm:"type:text" json:"follow_up_reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l Lead) positiveClusterSet() bool {
	return l.PositiveResponseDate != nil || l.Comments != nil ||
		l.FollowUp1Date != nil || l.FollowUp1Comments != nil ||
		l.FollowUp2Date != nil || l.FollowUp2Comments != nil ||
		l.FollowUp3Date != nil || l.FollowUp3Comments != nil ||
		l.FollowUp4Date != nil || l.FollowUp4Comments != nil ||
		l.MeetingScheduleDate != nil || l.MeetingDate != nil ||
		l.ProposalDate != nil || l.ProposalValue != nil ||
		l.SaleDate != nil || l.SaleValue != nil ||
		l.Profile != nil || l.Classification != nil || l.AttendedWebinar != nil ||
		l.WhatsApp != nil || l.WhatsAppE164 != nil ||
		l.StandDay != nil || l.Pavilion != nil || l.Stand != nil
}

func (l Lead) negativeClusterSet() bool {
	return l.NegativeResponseDate != nil || l.HadFollowUp != nil || l.FollowUpReason != nil
}

// Validate checks that only the cluster matching the status is populated.
func (l Lead) Validate() error {
	switch l.Status {
	case LeadStatusPositive:
		if l.negativeClusterSet() {
			return errors.New("positive lead carries negative response fields")
		}
	case LeadStatusNegative:
		if l.positiveClusterSet() {
			return errors.New("negative lead carries positive response fields")
		}
	default:
		return errors.New("invalid lead status")
	}
	return nil
}

// IdentityKey is lower(name) + "_" + lower(company).
func (l Lead) IdentityKey() string {
	return lowerKey(l.Name) + "_" + lowerKey(l.Company)
}

type LeadFilter struct {
	Campaign *string
	Status   *LeadStatus
}

// CreateLeads stores leads for the caller. Rows are written in batches without
// a surrounding transaction, so a failed batch leaves earlier ones in place.
func CreateLeads(ctx context.Context, db *gorm.DB, leads []*Lead) error {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return errors.New("user id is required")
	}
	if len(leads) == 0 {
		return nil
	}
	for _, l := range leads {
		if err := l.Validate(); err != nil {
			return err
		}
		l.UserId = userId
	}
	if err := db.WithContext(ctx).CreateInBatches(leads, 200).Error; err != nil {
		return AsBackendError(err)
	}
	return nil
}

// leadQuery scopes a lead query to the viewable owners and the filter.
func leadQuery(ctx context.Context, db *gorm.DB, filter *LeadFilter) (*gorm.DB, error) {
	ownerIds := utils.ViewOwnerIds(ctx)
	if len(ownerIds) == 0 {
		return nil, errors.New("user id is required")
	}
	query := db.WithContext(ctx).Model(&Lead{}).Where("user_id IN ?", ownerIds)
	if filter != nil {
		if filter.Campaign != nil {
			query = query.Where("campaign = ?", *filter.Campaign)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
	}
	return query, nil
}

// ListLeads returns the leads of every owner the caller may view.
func ListLeads(ctx context.Context, db *gorm.DB, filter *LeadFilter) ([]*Lead, error) {
	query, err := leadQuery(ctx, db, filter)
	if err != nil {
		return nil, err
	}
	var leads []*Lead
	if err := query.Order("id").Find(&leads).Error; err != nil {
		return nil, AsBackendError(err)
	}
	return leads, nil
}

func DeleteLeadsOfCampaign(ctx context.Context, db *gorm.DB, campaign string) (int64, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == "" {
		return 0, errors.New("user id is required")
	}
	result := db.WithContext(ctx).Where("user_id = ? AND campaign = ?", userId, campaign).Delete(&Lead{})
	return result.RowsAffected, AsBackendError(result.Error)
}
