package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification represents the verifications table. A row is created once per
// accepted verification attempt and never mutated afterwards. The composite
// unique index on (issue_id, verifier_id) is the authority for the
// one-verification-per-verifier rule; the service's proactive lookup only
// short-circuits the common case.
type Verification struct {
	ID                string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	IssueID           string         `json:"issueId" gorm:"type:varchar(36);not null;uniqueIndex:idx_verifications_issue_verifier"`
	VerifierID        *string        `json:"verifierId,omitempty" gorm:"type:varchar(36);uniqueIndex:idx_verifications_issue_verifier"`
	VerifierSessionID *string        `json:"-" gorm:"type:varchar(64)"`
	PhotoURL          string         `json:"photoUrl" gorm:"type:varchar(512);not null"`
	Note              *string        `json:"note,omitempty" gorm:"type:text"`
	Lat               float64        `json:"lat" gorm:"not null"`
	Lng               float64        `json:"lng" gorm:"not null"`
	IsValid           bool           `json:"isValid" gorm:"not null;default:true;index"`
	CreatedAt         time.Time      `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime"`
	DeletedAt         gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index" swaggertype:"string" format:"date-time"`
}

// TableName specifies the table name for the Verification model.
func (Verification) TableName() string {
	return "verifications"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (v *Verification) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
