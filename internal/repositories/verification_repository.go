package repositories

import (
	"context"

	"github.com/eco_report/internal/models"
	"gorm.io/gorm"
)

// VerificationRepository defines the interface for verification database
// operations.
type VerificationRepository interface {
	// Create inserts the verification row. A violation of the
	// (issue_id, verifier_id) unique index surfaces as gorm.ErrDuplicatedKey;
	// callers map it to the "already verified" outcome.
	Create(ctx context.Context, verification *models.Verification) error
	ExistsForVerifier(ctx context.Context, issueID, verifierID string) (bool, error)
	CountValidByIssue(ctx context.Context, issueID string) (int64, error)
	FindByIssue(ctx context.Context, issueID string, limit int) ([]models.Verification, error)
}

type gormVerificationRepository struct {
	db *gorm.DB
}

// NewGormVerificationRepository creates a new GORM-backed verification
// repository.
func NewGormVerificationRepository(db *gorm.DB) VerificationRepository {
	return &gormVerificationRepository{db: db}
}

// Create inserts a new verification row.
func (r *gormVerificationRepository) Create(ctx context.Context, verification *models.Verification) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

// ExistsForVerifier reports whether this verifier already verified the issue.
func (r *gormVerificationRepository) ExistsForVerifier(ctx context.Context, issueID, verifierID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Verification{}).
		Where("issue_id = ? AND verifier_id = ?", issueID, verifierID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountValidByIssue counts valid verification rows for an issue.
func (r *gormVerificationRepository) CountValidByIssue(ctx context.Context, issueID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Verification{}).
		Where("issue_id = ? AND is_valid = ?", issueID, true).
		Count(&count).Error
	return count, err
}

// FindByIssue returns the most recent verifications for an issue.
func (r *gormVerificationRepository) FindByIssue(ctx context.Context, issueID string, limit int) ([]models.Verification, error) {
	var verifications []models.Verification
	query := r.db.WithContext(ctx).Where("issue_id = ?", issueID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&verifications).Error
	if err != nil {
		return nil, err
	}
	return verifications, nil
}
