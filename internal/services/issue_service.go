package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/eco_report/internal/models"
	"github.com/eco_report/internal/repositories"
	"github.com/eco_report/pkg/utils"
)

var (
	ErrInvalidIssueInput       = errors.New("invalid issue input")
	ErrForbidden               = errors.New("insufficient permissions")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// CreateIssueInput carries a new report. Exactly one of ActorID (resolved
// authenticated identity) or SessionToken (anonymous client token) must be
// set; when both arrive, the authenticated identity wins and the token is
// ignored.
type CreateIssueInput struct {
	Lat          float64
	Lng          float64
	Address      *string
	Category     models.IssueCategory
	Severity     models.IssueSeverity
	Note         string
	PhotoURLs    []string
	ActorID      string
	SessionToken string
}

// IssueService manages report creation, lookup and moderation.
type IssueService interface {
	CreateIssue(ctx context.Context, input CreateIssueInput) (*models.Issue, error)
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	ListIssues(ctx context.Context, filter repositories.IssueFilter) ([]models.Issue, error)
	FlagIssue(ctx context.Context, actorRole, id, reason string) error
	UpdateIssueStatus(ctx context.Context, actorRole, id string, status models.IssueStatus) error
}

type issueService struct {
	issueRepo  repositories.IssueRepository
	pointsRepo repositories.PointsHistoryRepository
	userRepo   repositories.UserRepository
}

// NewIssueService wires the issue service.
func NewIssueService(issueRepo repositories.IssueRepository, pointsRepo repositories.PointsHistoryRepository, userRepo repositories.UserRepository) IssueService {
	return &issueService{issueRepo: issueRepo, pointsRepo: pointsRepo, userRepo: userRepo}
}

// CreateIssue validates and persists a new report with status pending and a
// zero verification count.
func (s *issueService) CreateIssue(ctx context.Context, input CreateIssueInput) (*models.Issue, error) {
	if !models.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidIssueInput, input.Category)
	}
	if !models.ValidSeverity(input.Severity) {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrInvalidIssueInput, input.Severity)
	}
	if err := utils.ValidateCoordinates(input.Lat, input.Lng); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIssueInput, err)
	}
	if strings.TrimSpace(input.Note) == "" {
		return nil, fmt.Errorf("%w: a note is required", ErrInvalidIssueInput)
	}
	if len(input.PhotoURLs) == 0 || len(input.PhotoURLs) > 5 {
		return nil, fmt.Errorf("%w: between 1 and 5 photos are required", ErrInvalidIssueInput)
	}

	var ownership models.Ownership
	switch {
	case input.ActorID != "":
		ownership = models.OwnedByUser(input.ActorID)
	case strings.TrimSpace(input.SessionToken) != "":
		ownership = models.OwnedBySession(strings.TrimSpace(input.SessionToken))
	default:
		return nil, fmt.Errorf("%w: an owner identity or session token is required", ErrInvalidIssueInput)
	}

	userID, sessionID := ownership.Columns()
	issue := &models.Issue{
		Lat:               input.Lat,
		Lng:               input.Lng,
		Address:           input.Address,
		Category:          input.Category,
		Severity:          input.Severity,
		Note:              input.Note,
		PhotoURLs:         models.PhotoURLList(input.PhotoURLs),
		Status:            models.IssueStatusPending,
		VerificationCount: 0,
		UserID:            userID,
		SessionID:         sessionID,
	}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, fmt.Errorf("creating issue: %w", err)
	}

	// Points are audit-grade: log and move on when the accrual fails.
	if ownerID, ok := ownership.UserID(); ok {
		entry := &models.PointsHistory{
			UserID:  ownerID,
			Delta:   models.PointsForReportCreated,
			Reason:  models.PointsReasonReportCreated,
			IssueID: &issue.ID,
		}
		if err := s.pointsRepo.Create(ctx, entry); err != nil {
			log.Printf("Failed to record report-created points for user %s: %v", ownerID, err)
		} else if err := s.userRepo.AddPoints(ctx, ownerID, models.PointsForReportCreated); err != nil {
			log.Printf("Failed to update points balance for user %s: %v", ownerID, err)
		}
	}

	return issue, nil
}

// GetIssue looks up one issue.
func (s *issueService) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := s.issueRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("loading issue: %w", err)
	}
	return issue, nil
}

// ListIssues returns issues for the map and list surfaces.
func (s *issueService) ListIssues(ctx context.Context, filter repositories.IssueFilter) ([]models.Issue, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 100
	}
	return s.issueRepo.List(ctx, filter)
}

// FlagIssue marks an issue for moderation review. Admin only.
func (s *issueService) FlagIssue(ctx context.Context, actorRole, id, reason string) error {
	if actorRole != string(models.UserRoleAdmin) {
		return ErrForbidden
	}
	if _, err := s.GetIssue(ctx, id); err != nil {
		return err
	}
	return s.issueRepo.Flag(ctx, id, reason)
}

// UpdateIssueStatus applies a moderation status transition. Only
// verified -> in_progress and in_progress -> resolved are allowed: status
// never regresses, and the pending -> verified promotion belongs exclusively
// to the verification workflow.
func (s *issueService) UpdateIssueStatus(ctx context.Context, actorRole, id string, status models.IssueStatus) error {
	if actorRole != string(models.UserRoleAdmin) {
		return ErrForbidden
	}
	issue, err := s.GetIssue(ctx, id)
	if err != nil {
		return err
	}

	allowed := (issue.Status == models.IssueStatusVerified && status == models.IssueStatusInProgress) ||
		(issue.Status == models.IssueStatusInProgress && status == models.IssueStatusResolved)
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, issue.Status, status)
	}
	return s.issueRepo.UpdateStatus(ctx, id, status)
}
