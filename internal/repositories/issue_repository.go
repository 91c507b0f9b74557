package repositories

import (
	"context"
	"time"

	"github.com/eco_report/internal/models"
	"gorm.io/gorm"
)

// IssueFilter narrows ListIssues results. Zero values mean "no filter".
type IssueFilter struct {
	Status   models.IssueStatus
	Category models.IssueCategory
	// Bounding box for the map surface. Applied only when HasBounds is true.
	HasBounds      bool
	MinLat, MaxLat float64
	MinLng, MaxLng float64
	IncludeFlagged bool
	Limit, Offset  int
}

// IssueRepository defines the interface for issue database operations.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]models.Issue, error)
	// IncrementVerificationCount applies the compare-and-swap counter update:
	// the write only lands if the row's verification_count still equals
	// expectedCount. Returns false (and no error) when the precondition
	// failed, i.e. a concurrent verification won the race.
	IncrementVerificationCount(ctx context.Context, id string, expectedCount int, newStatus models.IssueStatus) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error
	Flag(ctx context.Context, id string, reason string) error
}

type gormIssueRepository struct {
	db *gorm.DB
}

// NewGormIssueRepository creates a new GORM-backed issue repository.
func NewGormIssueRepository(db *gorm.DB) IssueRepository {
	return &gormIssueRepository{db: db}
}

// Create inserts a new issue row.
func (r *gormIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

// FindByID looks up an issue by primary key.
func (r *gormIssueRepository) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&issue).Error
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// List returns issues matching the filter, newest first.
func (r *gormIssueRepository) List(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	query := r.db.WithContext(ctx).Model(&models.Issue{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.HasBounds {
		query = query.Where("lat >= ? AND lat <= ? AND lng >= ? AND lng <= ?",
			filter.MinLat, filter.MaxLat, filter.MinLng, filter.MaxLng)
	}
	if !filter.IncludeFlagged {
		query = query.Where("is_flagged = ?", false)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var issues []models.Issue
	err := query.Order("created_at desc").Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// IncrementVerificationCount performs the conditional counter update. The
// WHERE clause on the read-time count is the only guard held across the
// read-modify-write, so a lost race surfaces as RowsAffected == 0 rather than
// an error.
func (r *gormIssueRepository) IncrementVerificationCount(ctx context.Context, id string, expectedCount int, newStatus models.IssueStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Issue{}).
		Where("id = ? AND verification_count = ?", id, expectedCount).
		Updates(map[string]interface{}{
			"verification_count": expectedCount + 1,
			"status":             newStatus,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatus sets the issue status unconditionally (moderation flows).
func (r *gormIssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	return r.db.WithContext(ctx).Model(&models.Issue{}).Where("id = ?", id).Update("status", status).Error
}

// Flag marks an issue as flagged with a moderation reason.
func (r *gormIssueRepository) Flag(ctx context.Context, id string, reason string) error {
	return r.db.WithContext(ctx).Model(&models.Issue{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_flagged": true, "flagged_reason": reason}).Error
}
