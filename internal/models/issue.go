package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueCategory defines the kind of environmental problem being reported.
type IssueCategory string

// IssueSeverity defines the reporter-assessed severity of an issue.
type IssueSeverity string

// IssueStatus defines the lifecycle state of an issue.
type IssueStatus string

const (
	IssueCategoryWaste    IssueCategory = "waste"
	IssueCategoryDrainage IssueCategory = "drainage"

	IssueSeverityLow    IssueSeverity = "low"
	IssueSeverityMedium IssueSeverity = "medium"
	IssueSeverityHigh   IssueSeverity = "high"

	IssueStatusPending    IssueStatus = "pending"
	IssueStatusVerified   IssueStatus = "verified"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
)

// VerificationThreshold is the number of valid verifications at which a
// pending issue is automatically promoted to verified.
const VerificationThreshold = 2

// PhotoURLList stores an ordered list of photo URLs as a JSON text column.
type PhotoURLList []string

// Value implements driver.Valuer.
func (l PhotoURLList) Value() (driver.Value, error) {
	if l == nil {
		l = PhotoURLList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *PhotoURLList) Scan(value interface{}) error {
	if value == nil {
		*l = PhotoURLList{}
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("unsupported type for PhotoURLList: %T", value)
	}
}

// Issue represents the issues table. Ownership is one of user_id or
// session_id, never both; the service layer works with the Ownership value
// and only flattens it to the two nullable columns here.
type Issue struct {
	ID                string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Lat               float64        `json:"lat" gorm:"not null"`
	Lng               float64        `json:"lng" gorm:"not null"`
	Address           *string        `json:"address,omitempty" gorm:"type:varchar(255)"`
	Category          IssueCategory  `json:"category" gorm:"type:varchar(50);not null;index"`
	Severity          IssueSeverity  `json:"severity" gorm:"type:varchar(50);not null"`
	Note              string         `json:"note" gorm:"type:text;not null"`
	PhotoURLs         PhotoURLList   `json:"photoUrls" gorm:"type:text;not null"`
	Status            IssueStatus    `json:"status" gorm:"type:varchar(50);not null;default:'pending';index"`
	VerificationCount int            `json:"verificationCount" gorm:"not null;default:0"`
	IsFlagged         bool           `json:"isFlagged" gorm:"not null;default:false"`
	FlaggedReason     *string        `json:"flaggedReason,omitempty" gorm:"type:varchar(255)"`
	UserID            *string        `json:"userId,omitempty" gorm:"type:varchar(36);index"`
	SessionID         *string        `json:"-" gorm:"type:varchar(64)"`
	CreatedAt         time.Time      `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt         time.Time      `json:"updatedAt" gorm:"column:updated_at;not null;autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index" swaggertype:"string" format:"date-time"`
}

// TableName specifies the table name for the Issue model.
func (Issue) TableName() string {
	return "issues"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (i *Issue) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Ownership returns the issue's owner as a tagged value.
func (i *Issue) Ownership() Ownership {
	if i.UserID != nil && *i.UserID != "" {
		return OwnedByUser(*i.UserID)
	}
	if i.SessionID != nil && *i.SessionID != "" {
		return OwnedBySession(*i.SessionID)
	}
	return Ownership{}
}

// ValidCategory reports whether c is a known issue category.
func ValidCategory(c IssueCategory) bool {
	return c == IssueCategoryWaste || c == IssueCategoryDrainage
}

// ValidSeverity reports whether s is a known issue severity.
func ValidSeverity(s IssueSeverity) bool {
	return s == IssueSeverityLow || s == IssueSeverityMedium || s == IssueSeverityHigh
}
