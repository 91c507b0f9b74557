package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/eco_report/internal/config"
	"github.com/eco_report/internal/models"
	"github.com/eco_report/internal/repositories"
	"github.com/eco_report/pkg/email"
)

// ReportVerifiedJob asks the notifier to email a report owner that their
// report crossed the verification threshold.
type ReportVerifiedJob struct {
	IssueID string
	OwnerID string
}

// Dispatcher is the verification workflow's view of the notifier: a
// fire-and-forget enqueue that never blocks and never reports back.
type Dispatcher interface {
	EnqueueReportVerified(job ReportVerifiedJob)
}

// EmailSender abstracts the transactional email provider.
type EmailSender interface {
	SendReportVerified(toEmail string, msg email.ReportVerifiedMessage) error
	SendMonthlySummary(toEmail string, msg email.MonthlySummaryMessage) error
}

// SMTPSender sends through pkg/email.
type SMTPSender struct{}

func (SMTPSender) SendReportVerified(toEmail string, msg email.ReportVerifiedMessage) error {
	return email.SendReportVerifiedEmail(toEmail, msg)
}

func (SMTPSender) SendMonthlySummary(toEmail string, msg email.MonthlySummaryMessage) error {
	return email.SendMonthlySummaryEmail(toEmail, msg)
}

// maxVerifierNames bounds how many verifier display names an email lists.
const maxVerifierNames = 5

// Notifier is a supervised background executor for best-effort emails. Jobs
// go through a bounded queue into a single worker goroutine, so failures are
// observable in logs but can never block or fail the request that enqueued
// them.
type Notifier struct {
	userRepo         repositories.UserRepository
	issueRepo        repositories.IssueRepository
	verificationRepo repositories.VerificationRepository
	pointsRepo       repositories.PointsHistoryRepository
	sender           EmailSender

	jobs chan ReportVerifiedJob
	quit chan struct{}
	wg   sync.WaitGroup

	maxAttempts int
	backoffBase time.Duration
}

// NewNotifier creates a notifier with the default retry policy: up to 3
// attempts with 2s, 4s backoff between them.
func NewNotifier(
	userRepo repositories.UserRepository,
	issueRepo repositories.IssueRepository,
	verificationRepo repositories.VerificationRepository,
	pointsRepo repositories.PointsHistoryRepository,
	sender EmailSender,
) *Notifier {
	return &Notifier{
		userRepo:         userRepo,
		issueRepo:        issueRepo,
		verificationRepo: verificationRepo,
		pointsRepo:       pointsRepo,
		sender:           sender,
		jobs:             make(chan ReportVerifiedJob, 64),
		quit:             make(chan struct{}),
		maxAttempts:      3,
		backoffBase:      2 * time.Second,
	}
}

// Start launches the worker goroutine.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go n.run()
}

// Stop drains queued jobs and waits for the worker to exit.
func (n *Notifier) Stop() {
	close(n.quit)
	n.wg.Wait()
}

// EnqueueReportVerified hands a job to the worker without blocking. When the
// queue is full the job is dropped with a log line; notifications are
// explicitly non-critical.
func (n *Notifier) EnqueueReportVerified(job ReportVerifiedJob) {
	select {
	case n.jobs <- job:
	default:
		log.Printf("Notification queue full, dropping job for issue %s", job.IssueID)
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case job := <-n.jobs:
			n.process(job)
		case <-n.quit:
			for {
				select {
				case job := <-n.jobs:
					n.process(job)
				default:
					return
				}
			}
		}
	}
}

// process sends one report-verified email with bounded retry. Every failure
// mode ends in a log line, never an error to a caller.
func (n *Notifier) process(job ReportVerifiedJob) {
	ctx := context.Background()

	owner, err := n.userRepo.FindByID(ctx, job.OwnerID)
	if err != nil {
		log.Printf("Notification for issue %s skipped: loading owner %s: %v", job.IssueID, job.OwnerID, err)
		return
	}
	// Silently no-op when the owner opted out or has no address on file.
	if !owner.WantsVerifiedEmail() || owner.Email == nil || *owner.Email == "" {
		return
	}

	issue, err := n.issueRepo.FindByID(ctx, job.IssueID)
	if err != nil {
		log.Printf("Notification for issue %s skipped: loading issue: %v", job.IssueID, err)
		return
	}

	msg := email.ReportVerifiedMessage{
		OwnerName:         owner.DisplayName(),
		Category:          string(issue.Category),
		Location:          issueLocation(issue),
		VerificationCount: issue.VerificationCount,
		VerifierNames:     n.verifierNames(ctx, issue.ID),
		ReportURL:         fmt.Sprintf("%s/issues/%s", config.AppConfig.FrontendBaseURL, issue.ID),
	}

	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		err = n.sender.SendReportVerified(*owner.Email, msg)
		if err == nil {
			return
		}
		if attempt < n.maxAttempts {
			// 2s, 4s between attempts.
			time.Sleep(n.backoffBase << (attempt - 1))
		}
	}
	log.Printf("Giving up on verified-report email for issue %s after %d attempts: %v", job.IssueID, n.maxAttempts, err)
}

// issueLocation renders the issue's place for an email body: the street
// address when the reporter supplied one, raw coordinates otherwise.
func issueLocation(issue *models.Issue) string {
	if issue.Address != nil && *issue.Address != "" {
		return *issue.Address
	}
	return fmt.Sprintf("%.5f, %.5f", issue.Lat, issue.Lng)
}

// verifierNames collects up to maxVerifierNames display names of the issue's
// verifiers. Best effort: lookup failures and nameless users are omitted.
func (n *Notifier) verifierNames(ctx context.Context, issueID string) []string {
	verifications, err := n.verificationRepo.FindByIssue(ctx, issueID, maxVerifierNames)
	if err != nil {
		log.Printf("Could not list verifiers for issue %s: %v", issueID, err)
		return nil
	}
	ids := make([]string, 0, len(verifications))
	for _, v := range verifications {
		if v.VerifierID != nil && *v.VerifierID != "" {
			ids = append(ids, *v.VerifierID)
		}
	}
	users, err := n.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		log.Printf("Could not load verifier profiles for issue %s: %v", issueID, err)
		return nil
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		if name := u.DisplayName(); name != "" {
			names = append(names, name)
		}
		if len(names) == maxVerifierNames {
			break
		}
	}
	return names
}

// SendMonthlySummaries emails every opted-in user a summary of the last
// month's activity. Driven by the cron schedule in main; best effort
// throughout.
func (n *Notifier) SendMonthlySummaries(ctx context.Context) {
	recipients, err := n.userRepo.FindMonthlySummaryRecipients(ctx)
	if err != nil {
		log.Printf("Monthly summary run aborted: %v", err)
		return
	}
	since := time.Now().AddDate(0, -1, 0)

	sent := 0
	for _, user := range recipients {
		entries, err := n.pointsRepo.FindByUserSince(ctx, user.ID, since)
		if err != nil {
			log.Printf("Monthly summary for user %s skipped: %v", user.ID, err)
			continue
		}
		if len(entries) == 0 {
			continue
		}

		msg := email.MonthlySummaryMessage{RecipientName: user.DisplayName()}
		for _, entry := range entries {
			msg.PointsEarned += entry.Delta
			switch entry.Reason {
			case models.PointsReasonReportVerified:
				msg.ReportsVerified++
			case models.PointsReasonVerificationSubmitted:
				msg.VerificationsSubmitted++
			}
		}

		if err := n.sender.SendMonthlySummary(*user.Email, msg); err != nil {
			log.Printf("Monthly summary email to user %s failed: %v", user.ID, err)
			continue
		}
		sent++
	}
	log.Printf("Monthly summary run finished: %d of %d recipients emailed", sent, len(recipients))
}
