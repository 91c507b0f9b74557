package services

import (
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eco_report/internal/models"
)

// openTestDB opens a named in-memory sqlite database. Each test passes its own
// name so databases never leak state between tests while shared cache keeps
// all connections of one test on the same database.
func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Issue{},
		&models.Verification{},
		&models.PointsHistory{},
		&models.VerificationSpamLog{},
	)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, user *models.User) *models.User {
	t.Helper()
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func createTestIssue(t *testing.T, db *gorm.DB, issue *models.Issue) *models.Issue {
	t.Helper()
	if issue.Category == "" {
		issue.Category = models.IssueCategoryWaste
	}
	if issue.Severity == "" {
		issue.Severity = models.IssueSeverityMedium
	}
	if issue.Note == "" {
		issue.Note = "overflowing bins by the park entrance"
	}
	if issue.PhotoURLs == nil {
		issue.PhotoURLs = models.PhotoURLList{"https://storage.googleapis.com/test-bucket/a.jpg"}
	}
	if issue.Status == "" {
		issue.Status = models.IssueStatusPending
	}
	if err := db.Create(issue).Error; err != nil {
		t.Fatalf("creating test issue: %v", err)
	}
	return issue
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// recordingDispatcher captures enqueued jobs for assertions.
type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []ReportVerifiedJob
}

func (d *recordingDispatcher) EnqueueReportVerified(job ReportVerifiedJob) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

func (d *recordingDispatcher) Jobs() []ReportVerifiedJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ReportVerifiedJob(nil), d.jobs...)
}

func pointsDeltas(t *testing.T, db *gorm.DB, userID string) []int {
	t.Helper()
	var entries []models.PointsHistory
	if err := db.Where("user_id = ?", userID).Order("created_at").Find(&entries).Error; err != nil {
		t.Fatalf("loading points history: %v", err)
	}
	deltas := make([]int, 0, len(entries))
	for _, e := range entries {
		deltas = append(deltas, e.Delta)
	}
	return deltas
}
