package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/eco_report/internal/models"
	"github.com/eco_report/internal/repositories"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required to verify a report")
	ErrIssueNotFound          = errors.New("issue not found")
	ErrSelfVerification       = errors.New("you cannot verify your own report")
	ErrNotVerifiable          = errors.New("this report no longer accepts verifications")
	ErrAlreadyVerified        = errors.New("you have already verified this report")
	ErrUnexpected             = errors.New("verification failed unexpectedly")
)

// SubmitVerificationInput is one verification attempt for one issue by one
// actor. VerifierID is the identity resolved by the auth middleware;
// SessionToken is the caller-supplied opaque anonymous token, used only for
// the anonymous-ownership self-verification check.
type SubmitVerificationInput struct {
	IssueID      string
	VerifierID   string
	SessionToken string
	PhotoURL     string
	Note         *string
	Lat          float64
	Lng          float64

	// Spam heuristics flagged by the caller; recorded for audit only.
	ScreenshotSuspected bool
	DistanceKm          *float64
	DistanceOverridden  bool
}

// SubmitVerificationResult reports the outcome of an accepted verification.
type SubmitVerificationResult struct {
	VerificationID    string             `json:"verificationId"`
	Status            models.IssueStatus `json:"status"`
	VerificationCount int                `json:"verificationCount"`
}

// VerificationService applies the verification business rules.
type VerificationService interface {
	SubmitVerification(ctx context.Context, input SubmitVerificationInput) (*SubmitVerificationResult, error)
}

type verificationService struct {
	issueRepo        repositories.IssueRepository
	verificationRepo repositories.VerificationRepository
	spamLogRepo      repositories.VerificationSpamLogRepository
	pointsRepo       repositories.PointsHistoryRepository
	userRepo         repositories.UserRepository
	dispatcher       Dispatcher
}

// NewVerificationService wires the verification workflow.
func NewVerificationService(
	issueRepo repositories.IssueRepository,
	verificationRepo repositories.VerificationRepository,
	spamLogRepo repositories.VerificationSpamLogRepository,
	pointsRepo repositories.PointsHistoryRepository,
	userRepo repositories.UserRepository,
	dispatcher Dispatcher,
) VerificationService {
	return &verificationService{
		issueRepo:        issueRepo,
		verificationRepo: verificationRepo,
		spamLogRepo:      spamLogRepo,
		pointsRepo:       pointsRepo,
		userRepo:         userRepo,
		dispatcher:       dispatcher,
	}
}

// SubmitVerification accepts one verification attempt and applies all
// business rules: authentication, self-verification blocking, pending-only
// status, one verification per verifier, spam-heuristic audit logging,
// threshold-based promotion behind a compare-and-swap counter update, and a
// non-blocking owner notification on promotion.
func (s *verificationService) SubmitVerification(ctx context.Context, input SubmitVerificationInput) (*SubmitVerificationResult, error) {
	// 1. Anonymous users cannot verify.
	if input.VerifierID == "" {
		return nil, ErrAuthenticationRequired
	}

	// 2. Load the target issue.
	issue, err := s.issueRepo.FindByID(ctx, input.IssueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("%w: loading issue: %v", ErrUnexpected, err)
	}

	// 3. Self-verification block. Ownership is exactly one of two fields, so
	// both arms are checked: the authenticated owner against the acting
	// identity, and the stored anonymous token against the supplied one.
	ownership := issue.Ownership()
	if ownerID, ok := ownership.UserID(); ok && ownerID == input.VerifierID {
		return nil, ErrSelfVerification
	}
	if ownerToken, ok := ownership.SessionToken(); ok && input.SessionToken != "" && ownerToken == input.SessionToken {
		return nil, ErrSelfVerification
	}

	// 4. Only pending issues accept verifications.
	if issue.Status != models.IssueStatusPending {
		return nil, ErrNotVerifiable
	}

	// 5. Proactive duplicate check. This only short-circuits the common case
	// cheaply; the unique constraint on insert is the authority.
	exists, err := s.verificationRepo.ExistsForVerifier(ctx, issue.ID, input.VerifierID)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check: %v", ErrUnexpected, err)
	}
	if exists {
		return nil, ErrAlreadyVerified
	}

	// 6. Insert the verification record. Two requests can both pass the
	// proactive check; the loser of that race lands here with a duplicate
	// key error and gets the same "already verified" outcome.
	verifierID := input.VerifierID
	verification := &models.Verification{
		IssueID:    issue.ID,
		VerifierID: &verifierID,
		PhotoURL:   input.PhotoURL,
		Note:       input.Note,
		Lat:        input.Lat,
		Lng:        input.Lng,
		IsValid:    true,
	}
	if input.SessionToken != "" {
		tok := input.SessionToken
		verification.VerifierSessionID = &tok
	}
	if err := s.verificationRepo.Create(ctx, verification); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyVerified
		}
		return nil, fmt.Errorf("%w: inserting verification: %v", ErrUnexpected, err)
	}

	// 7. Record caller-flagged spam heuristics. Audit only: a failure here
	// must not fail the verification.
	if input.ScreenshotSuspected || input.DistanceOverridden || input.DistanceKm != nil {
		entry := &models.VerificationSpamLog{
			IssueID:             issue.ID,
			VerificationID:      verification.ID,
			VerifierID:          input.VerifierID,
			ScreenshotSuspected: input.ScreenshotSuspected,
			DistanceKm:          input.DistanceKm,
			DistanceOverridden:  input.DistanceOverridden,
		}
		if err := s.spamLogRepo.Create(ctx, entry); err != nil {
			log.Printf("Failed to write spam log for verification %s: %v", verification.ID, err)
		}
	}

	s.awardPoints(ctx, input.VerifierID, models.PointsForVerificationSubmitted, models.PointsReasonVerificationSubmitted, issue.ID)

	// 8. Conditional counter update: the write only applies if the count we
	// read is still current. No lock is held between the read and the write,
	// so a concurrent verifier may win the race; the verification row above
	// still exists and the counter skew is bounded by the number of racers.
	newCount := issue.VerificationCount + 1
	newStatus := issue.Status
	if newCount >= models.VerificationThreshold {
		newStatus = models.IssueStatusVerified
	}
	applied, err := s.issueRepo.IncrementVerificationCount(ctx, issue.ID, issue.VerificationCount, newStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: updating verification count: %v", ErrUnexpected, err)
	}
	if !applied {
		// Lost the race. The count might end up slightly under the true
		// number of verification rows; accepted, so just report the current
		// row state.
		log.Printf("Verification count update lost a race on issue %s", issue.ID)
		current, err := s.issueRepo.FindByID(ctx, issue.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: reloading issue: %v", ErrUnexpected, err)
		}
		return &SubmitVerificationResult{
			VerificationID:    verification.ID,
			Status:            current.Status,
			VerificationCount: current.VerificationCount,
		}, nil
	}

	// 9. On promotion, credit and notify the authenticated owner. The
	// dispatcher runs in the background and never affects this response.
	if newStatus == models.IssueStatusVerified && issue.Status == models.IssueStatusPending {
		if ownerID, ok := ownership.UserID(); ok {
			s.awardPoints(ctx, ownerID, models.PointsForReportVerified, models.PointsReasonReportVerified, issue.ID)
			s.dispatcher.EnqueueReportVerified(ReportVerifiedJob{IssueID: issue.ID, OwnerID: ownerID})
		}
	}

	// 10. Success.
	return &SubmitVerificationResult{
		VerificationID:    verification.ID,
		Status:            newStatus,
		VerificationCount: newCount,
	}, nil
}

// awardPoints records a points delta and adjusts the balance. Points are an
// audit-grade side effect like the spam log: failures are logged, never
// surfaced.
func (s *verificationService) awardPoints(ctx context.Context, userID string, delta int, reason models.PointsReason, issueID string) {
	entry := &models.PointsHistory{
		UserID:  userID,
		Delta:   delta,
		Reason:  reason,
		IssueID: &issueID,
	}
	if err := s.pointsRepo.Create(ctx, entry); err != nil {
		log.Printf("Failed to record points history for user %s: %v", userID, err)
		return
	}
	if err := s.userRepo.AddPoints(ctx, userID, delta); err != nil {
		log.Printf("Failed to update points balance for user %s: %v", userID, err)
	}
}
