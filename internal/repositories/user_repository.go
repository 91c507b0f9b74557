package repositories

import (
	"context"

	"github.com/eco_report/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user database operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	// AddPoints atomically adjusts the user's points balance.
	AddPoints(ctx context.Context, id string, delta int) error
	FindMonthlySummaryRecipients(ctx context.Context) ([]models.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create inserts a new user row.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID looks up a user by primary key.
func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs looks up users by a set of primary keys. Missing ids are simply
// absent from the result.
func (r *gormUserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update saves changed user fields.
func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// AddPoints adjusts the points balance in a single UPDATE so concurrent
// accruals never lose increments.
func (r *gormUserRepository) AddPoints(ctx context.Context, id string, delta int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta)).Error
}

// FindMonthlySummaryRecipients returns users opted into the monthly summary
// email who have an address on file.
func (r *gormUserRepository) FindMonthlySummaryRecipients(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("notify_monthly_summary = ? AND email IS NOT NULL AND email <> ''", true).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
