package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsReason describes why a points delta was credited.
type PointsReason string

const (
	PointsReasonReportCreated         PointsReason = "report_created"
	PointsReasonReportVerified        PointsReason = "report_verified"
	PointsReasonVerificationSubmitted PointsReason = "verification_submitted"
)

// Points awarded per event.
const (
	PointsForReportCreated         = 5
	PointsForVerificationSubmitted = 10
	PointsForReportVerified        = 25
)

// PointsHistory represents the points_history table, an append-only audit of
// points balance changes.
type PointsHistory struct {
	ID        string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string       `json:"userId" gorm:"type:varchar(36);not null;index"`
	Delta     int          `json:"delta" gorm:"not null"`
	Reason    PointsReason `json:"reason" gorm:"type:varchar(50);not null"`
	IssueID   *string      `json:"issueId,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt time.Time    `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName specifies the table name for the PointsHistory model.
func (PointsHistory) TableName() string {
	return "points_history"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (p *PointsHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
