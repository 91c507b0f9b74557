package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/eco_report/internal/models"
	"github.com/eco_report/internal/repositories"
)

func newIssueServiceOn(db *gorm.DB) IssueService {
	return NewIssueService(
		repositories.NewGormIssueRepository(db),
		repositories.NewGormPointsHistoryRepository(db),
		repositories.NewGormUserRepository(db),
	)
}

func validCreateInput() CreateIssueInput {
	return CreateIssueInput{
		Lat:       51.5074,
		Lng:       -0.1278,
		Category:  models.IssueCategoryWaste,
		Severity:  models.IssueSeverityHigh,
		Note:      "fly-tipping behind the bus stop",
		PhotoURLs: []string{"https://storage.googleapis.com/test-bucket/a.jpg"},
		ActorID:   "u1",
	}
}

func TestCreateIssueValidation(t *testing.T) {
	db := openTestDB(t, "issue_validation")
	service := newIssueServiceOn(db)

	tests := []struct {
		name   string
		mutate func(*CreateIssueInput)
	}{
		{"unknown category", func(in *CreateIssueInput) { in.Category = "noise" }},
		{"unknown severity", func(in *CreateIssueInput) { in.Severity = "critical" }},
		{"latitude out of range", func(in *CreateIssueInput) { in.Lat = 91 }},
		{"longitude out of range", func(in *CreateIssueInput) { in.Lng = -181 }},
		{"blank note", func(in *CreateIssueInput) { in.Note = "   " }},
		{"no photos", func(in *CreateIssueInput) { in.PhotoURLs = nil }},
		{"too many photos", func(in *CreateIssueInput) {
			in.PhotoURLs = []string{"a", "b", "c", "d", "e", "f"}
		}},
		{"no owner identity", func(in *CreateIssueInput) {
			in.ActorID = ""
			in.SessionToken = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateInput()
			tt.mutate(&input)
			if _, err := service.CreateIssue(context.Background(), input); !errors.Is(err, ErrInvalidIssueInput) {
				t.Fatalf("expected ErrInvalidIssueInput, got %v", err)
			}
		})
	}
}

func TestCreateIssueAuthenticatedOwner(t *testing.T) {
	db := openTestDB(t, "issue_create_auth")
	service := newIssueServiceOn(db)
	createTestUser(t, db, &models.User{ID: "u1"})

	// A signed-in caller that still carries a stale anonymous token: the
	// authenticated identity wins and the token is discarded.
	input := validCreateInput()
	input.SessionToken = "stale-token"

	issue, err := service.CreateIssue(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateIssue failed: %v", err)
	}
	if issue.ID == "" {
		t.Error("expected a generated issue id")
	}
	if issue.Status != models.IssueStatusPending || issue.VerificationCount != 0 {
		t.Errorf("new issue is %s with count %d, want pending with count 0", issue.Status, issue.VerificationCount)
	}
	if issue.UserID == nil || *issue.UserID != "u1" {
		t.Errorf("expected user ownership u1, got %v", issue.UserID)
	}
	if issue.SessionID != nil {
		t.Errorf("expected no session ownership, got %v", *issue.SessionID)
	}

	if deltas := pointsDeltas(t, db, "u1"); len(deltas) != 1 || deltas[0] != models.PointsForReportCreated {
		t.Errorf("expected one +%d points entry, got %v", models.PointsForReportCreated, deltas)
	}
	var user models.User
	if err := db.First(&user, "id = ?", "u1").Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if user.Points != models.PointsForReportCreated {
		t.Errorf("expected points balance %d, got %d", models.PointsForReportCreated, user.Points)
	}
}

func TestCreateIssueAnonymousOwner(t *testing.T) {
	db := openTestDB(t, "issue_create_anon")
	service := newIssueServiceOn(db)

	input := validCreateInput()
	input.ActorID = ""
	input.SessionToken = "s1"

	issue, err := service.CreateIssue(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateIssue failed: %v", err)
	}
	if issue.UserID != nil {
		t.Errorf("expected no user ownership, got %v", *issue.UserID)
	}
	if issue.SessionID == nil || *issue.SessionID != "s1" {
		t.Errorf("expected session ownership s1, got %v", issue.SessionID)
	}

	// Anonymous reports accrue no points.
	var count int64
	if err := db.Model(&models.PointsHistory{}).Count(&count).Error; err != nil {
		t.Fatalf("counting points history: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no points entries for an anonymous report, found %d", count)
	}
}

func TestListIssuesFilters(t *testing.T) {
	db := openTestDB(t, "issue_list")
	service := newIssueServiceOn(db)
	createTestIssue(t, db, &models.Issue{Lat: 51.50, Lng: -0.12, UserID: strPtr("u1")})
	createTestIssue(t, db, &models.Issue{Lat: 51.51, Lng: -0.13, UserID: strPtr("u1"), Category: models.IssueCategoryDrainage})
	createTestIssue(t, db, &models.Issue{Lat: 40.71, Lng: -74.00, UserID: strPtr("u1")})
	flagged := createTestIssue(t, db, &models.Issue{Lat: 51.50, Lng: -0.12, UserID: strPtr("u1"), IsFlagged: true})

	all, err := service.ListIssues(context.Background(), repositories.IssueFilter{})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected flagged issues hidden by default, got %d issues", len(all))
	}
	for _, issue := range all {
		if issue.ID == flagged.ID {
			t.Error("flagged issue leaked into the default listing")
		}
	}

	drainage, err := service.ListIssues(context.Background(), repositories.IssueFilter{Category: models.IssueCategoryDrainage})
	if err != nil {
		t.Fatalf("ListIssues by category failed: %v", err)
	}
	if len(drainage) != 1 || drainage[0].Category != models.IssueCategoryDrainage {
		t.Errorf("expected exactly the drainage issue, got %d issues", len(drainage))
	}

	london, err := service.ListIssues(context.Background(), repositories.IssueFilter{
		HasBounds: true,
		MinLat:    51.0, MaxLat: 52.0,
		MinLng: -1.0, MaxLng: 0.0,
	})
	if err != nil {
		t.Fatalf("ListIssues by bounds failed: %v", err)
	}
	if len(london) != 2 {
		t.Errorf("expected 2 issues inside the bounding box, got %d", len(london))
	}
}

func TestFlagIssueAdminOnly(t *testing.T) {
	db := openTestDB(t, "issue_flag")
	service := newIssueServiceOn(db)
	issue := createTestIssue(t, db, &models.Issue{Lat: 51.5, Lng: -0.12, UserID: strPtr("u1")})

	if err := service.FlagIssue(context.Background(), string(models.UserRoleMember), issue.ID, "spam"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member, got %v", err)
	}
	if err := service.FlagIssue(context.Background(), string(models.UserRoleAdmin), issue.ID, "spam"); err != nil {
		t.Fatalf("FlagIssue as admin failed: %v", err)
	}

	var stored models.Issue
	if err := db.First(&stored, "id = ?", issue.ID).Error; err != nil {
		t.Fatalf("reloading issue: %v", err)
	}
	if !stored.IsFlagged || stored.FlaggedReason == nil || *stored.FlaggedReason != "spam" {
		t.Errorf("expected flagged with reason spam, got %+v", stored)
	}
}

func TestUpdateIssueStatusTransitions(t *testing.T) {
	db := openTestDB(t, "issue_status")
	service := newIssueServiceOn(db)
	admin := string(models.UserRoleAdmin)

	pending := createTestIssue(t, db, &models.Issue{Lat: 51.5, Lng: -0.12, UserID: strPtr("u1")})
	if err := service.UpdateIssueStatus(context.Background(), admin, pending.ID, models.IssueStatusInProgress); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("pending -> in_progress: expected ErrInvalidStatusTransition, got %v", err)
	}
	// Promotion to verified belongs to the verification workflow, never to
	// moderation.
	if err := service.UpdateIssueStatus(context.Background(), admin, pending.ID, models.IssueStatusVerified); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("pending -> verified: expected ErrInvalidStatusTransition, got %v", err)
	}

	verified := createTestIssue(t, db, &models.Issue{Lat: 51.5, Lng: -0.12, UserID: strPtr("u1"), Status: models.IssueStatusVerified})
	if err := service.UpdateIssueStatus(context.Background(), string(models.UserRoleMember), verified.ID, models.IssueStatusInProgress); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for member, got %v", err)
	}
	if err := service.UpdateIssueStatus(context.Background(), admin, verified.ID, models.IssueStatusInProgress); err != nil {
		t.Fatalf("verified -> in_progress failed: %v", err)
	}
	if err := service.UpdateIssueStatus(context.Background(), admin, verified.ID, models.IssueStatusResolved); err != nil {
		t.Fatalf("in_progress -> resolved failed: %v", err)
	}
	// Status never regresses.
	if err := service.UpdateIssueStatus(context.Background(), admin, verified.ID, models.IssueStatusInProgress); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("resolved -> in_progress: expected ErrInvalidStatusTransition, got %v", err)
	}
}
