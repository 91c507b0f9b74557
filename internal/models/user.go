package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole defines the user's role.
type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

// MaxBioLength is the maximum accepted profile bio length, enforced by the
// user service before persistence.
const MaxBioLength = 200

// User represents the users table. Identity and credentials live with the
// hosted auth provider; this row mirrors the profile, points balance and
// notification preferences.
type User struct {
	ID        string  `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     *string `json:"email,omitempty" gorm:"type:varchar(255);index"`
	Username  *string `json:"username,omitempty" gorm:"type:varchar(100);unique"`
	AvatarURL string  `json:"avatarUrl" gorm:"type:varchar(512)"`
	Bio       string  `json:"bio" gorm:"type:varchar(200)"`
	Location  string  `json:"location" gorm:"type:varchar(255)"`
	Points    int     `json:"points" gorm:"not null;default:0"`
	// Default-true preferences are pointers: with a plain bool GORM drops the
	// zero value from the INSERT in favor of the column default, so an
	// explicit false at creation would silently become true.
	ProfileVisible       *bool          `json:"profileVisible" gorm:"not null;default:true"`
	NotifyVerified       *bool          `json:"notifyVerified" gorm:"not null;default:true"`
	NotifyActionCards    *bool          `json:"notifyActionCards" gorm:"not null;default:true"`
	NotifyMonthlySummary bool           `json:"notifyMonthlySummary" gorm:"not null;default:false"`
	Role                 UserRole       `json:"role" gorm:"type:varchar(50);not null;default:'member'"`
	CreatedAt            time.Time      `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt            time.Time      `json:"updatedAt" gorm:"column:updated_at;not null;autoUpdateTime"`
	DeletedAt            gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index" swaggertype:"string" format:"date-time"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ProfileIsVisible reports the visibility preference; an unset value means
// the default, visible.
func (u *User) ProfileIsVisible() bool {
	return u.ProfileVisible == nil || *u.ProfileVisible
}

// WantsVerifiedEmail reports whether the user accepts the report-verified
// notification email; an unset value means the default, opted in.
func (u *User) WantsVerifiedEmail() bool {
	return u.NotifyVerified == nil || *u.NotifyVerified
}

// DisplayName returns the best available human-readable name for the user.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	return ""
}
