package repositories

import (
	"context"
	"time"

	"github.com/eco_report/internal/models"
	"gorm.io/gorm"
)

// PointsHistoryRepository defines the interface for the append-only points
// audit table.
type PointsHistoryRepository interface {
	Create(ctx context.Context, entry *models.PointsHistory) error
	FindByUserSince(ctx context.Context, userID string, since time.Time) ([]models.PointsHistory, error)
}

type gormPointsHistoryRepository struct {
	db *gorm.DB
}

// NewGormPointsHistoryRepository creates a new GORM-backed points history
// repository.
func NewGormPointsHistoryRepository(db *gorm.DB) PointsHistoryRepository {
	return &gormPointsHistoryRepository{db: db}
}

// Create inserts a points history entry.
func (r *gormPointsHistoryRepository) Create(ctx context.Context, entry *models.PointsHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByUserSince returns a user's points entries created at or after since,
// oldest first. Used by the monthly summary email.
func (r *gormPointsHistoryRepository) FindByUserSince(ctx context.Context, userID string, since time.Time) ([]models.PointsHistory, error) {
	var entries []models.PointsHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
