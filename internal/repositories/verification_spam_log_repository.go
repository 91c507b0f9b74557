package repositories

import (
	"context"

	"github.com/eco_report/internal/models"
	"gorm.io/gorm"
)

// VerificationSpamLogRepository defines the interface for the write-only spam
// heuristics audit table.
type VerificationSpamLogRepository interface {
	Create(ctx context.Context, entry *models.VerificationSpamLog) error
}

type gormVerificationSpamLogRepository struct {
	db *gorm.DB
}

// NewGormVerificationSpamLogRepository creates a new GORM-backed spam log
// repository.
func NewGormVerificationSpamLogRepository(db *gorm.DB) VerificationSpamLogRepository {
	return &gormVerificationSpamLogRepository{db: db}
}

// Create inserts a spam log entry.
func (r *gormVerificationSpamLogRepository) Create(ctx context.Context, entry *models.VerificationSpamLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
