package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationSpamLog represents the verification_spam_log table. Rows are
// written when the caller flags spam heuristics on a verification attempt
// (screenshot suspicion, distance mismatch override). Audit only: the core
// workflow never reads it back, and a failed write must not fail the
// verification that triggered it.
type VerificationSpamLog struct {
	ID                  string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	IssueID             string    `json:"issueId" gorm:"type:varchar(36);not null;index"`
	VerificationID      string    `json:"verificationId" gorm:"type:varchar(36);not null"`
	VerifierID          string    `json:"verifierId" gorm:"type:varchar(36);not null"`
	ScreenshotSuspected bool      `json:"screenshotSuspected" gorm:"not null;default:false"`
	DistanceKm          *float64  `json:"distanceKm,omitempty"`
	DistanceOverridden  bool      `json:"distanceOverridden" gorm:"not null;default:false"`
	CreatedAt           time.Time `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName specifies the table name for the VerificationSpamLog model.
func (VerificationSpamLog) TableName() string {
	return "verification_spam_log"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (l *VerificationSpamLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
