// Package dispatch sends finished applications by email, per user or per
// campaign, and keeps the status bookkeeping consistent.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"go-ausbildung-automation/internal/mailer"
	"go-ausbildung-automation/internal/models"
	"go-ausbildung-automation/utils"

	"go.uber.org/zap"
)

// Store is the persistence surface the engine needs.
type Store interface {
	FindJobsReadyToSend(ctx context.Context, userID string) ([]*models.Job, error)
	FindJobsByIDs(ctx context.Context, jobIDs []string, userID string) ([]*models.Job, error)
	FindDocumentsByUser(ctx context.Context, userID string) ([]*models.Document, error)
	FindDocumentsByIDs(ctx context.Context, docIDs []string, userID string) ([]*models.Document, error)
	UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error
	GetCampaign(ctx context.Context, campaignID, userID string) (*models.Campaign, error)
	UpdateCampaignStatus(ctx context.Context, campaignID string, status models.CampaignStatus) error
	UpdateCampaignResults(ctx context.Context, campaignID string, sentCount, errorCount int, status models.CampaignStatus) error
}

// Sender identifies the applicant on outgoing mail.
type Sender struct {
	Name  string
	Email string
}

type SendError struct {
	JobID string `json:"jobId"`
	Email string `json:"email,omitempty"`
	Error string `json:"error"`
}

type SentMessage struct {
	JobID     string `json:"jobId"`
	MessageID string `json:"messageId"`
}

// Result summarizes a per-user send. Partial failure is normal: errors and
// message ids can both be non-empty for the same job.
type Result struct {
	SentCount  int           `json:"sentCount"`
	Errors     []SendError   `json:"errors"`
	MessageIDs []SentMessage `json:"messageIds"`
	Message    string        `json:"message,omitempty"`
}

type Engine struct {
	store  Store
	mailer mailer.Mailer
	log    *zap.SugaredLogger
}

func NewEngine(store Store, m mailer.Mailer, log *zap.SugaredLogger) *Engine {
	return &Engine{store: store, mailer: m, log: log}
}

// SendForUser emails every job of the owner that has a letter and is not
// Done yet. Each recipient is sent to independently; one success per job is
// enough to advance the job to Done. Only loading the job list is fatal.
func (e *Engine) SendForUser(ctx context.Context, userID string, sender Sender) (*Result, error) {
	jobs, err := e.store.FindJobsReadyToSend(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs ready to send: %w", err)
	}
	if len(jobs) == 0 {
		return &Result{Message: "No jobs ready to send. Generate motivation letters first."}, nil
	}
	e.log.Infof("📧 Sending applications for %d jobs...", len(jobs))

	documents, err := e.store.FindDocumentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user documents: %w", err)
	}
	generalAttachments := existingAttachments(documents)

	result := &Result{}
	for _, job := range jobs {
		if !job.HasLetter() || !utils.FileExists(*job.MotivationLetterPath) {
			result.Errors = append(result.Errors, SendError{
				JobID: job.ID,
				Error: "motivation letter file not found",
			})
			continue
		}
		recipients := splitRecipients(job.Emails)
		if len(recipients) == 0 {
			result.Errors = append(result.Errors, SendError{
				JobID: job.ID,
				Error: "no recipient email address",
			})
			continue
		}

		attachments := append([]mailer.Attachment{{
			Filename: fmt.Sprintf("Bewerbung_%s.pdf", utils.CleanFilename(sender.Name)),
			Path:     *job.MotivationLetterPath,
		}}, generalAttachments...)

		succeeded := false
		for _, recipient := range recipients {
			messageID, err := e.mailer.Send(mailer.Message{
				From:        sender.Email,
				FromName:    sender.Name,
				To:          recipient,
				Subject:     subjectFor(job),
				HTML:        bodyFor(job, sender),
				Attachments: attachments,
			})
			if err != nil {
				e.log.Errorw("❌ send failed", "job", job.ID, "to", recipient, "error", err)
				result.Errors = append(result.Errors, SendError{JobID: job.ID, Email: recipient, Error: err.Error()})
				continue
			}
			e.log.Infof("✅ Application sent to %s (%s)", recipient, job.Institution)
			result.MessageIDs = append(result.MessageIDs, SentMessage{JobID: job.ID, MessageID: messageID})
			result.SentCount++
			succeeded = true
		}

		if succeeded && job.Status.CanAdvanceTo(models.StatusDone) {
			if err := e.store.UpdateJobStatus(ctx, job.ID, models.StatusDone); err != nil {
				result.Errors = append(result.Errors, SendError{JobID: job.ID, Error: err.Error()})
			}
		}
	}

	e.log.Infof("📊 Dispatch finished: %d sent, %d errors", result.SentCount, len(result.Errors))
	return result, nil
}

// SendCampaign works through a stored campaign: one email per job to the
// job's first recipient, with the campaign's shared documents attached. Any
// unhandled error marks the campaign failed and is returned.
func (e *Engine) SendCampaign(ctx context.Context, campaignID, userID string, sender Sender) (sent, failed int, err error) {
	campaign, err := e.store.GetCampaign(ctx, campaignID, userID)
	if err != nil {
		return 0, 0, err
	}
	if err := e.store.UpdateCampaignStatus(ctx, campaign.ID, models.CampaignSending); err != nil {
		return 0, 0, err
	}

	sent, failed, err = e.runCampaign(ctx, campaign, userID, sender)
	if err != nil {
		if statusErr := e.store.UpdateCampaignStatus(ctx, campaign.ID, models.CampaignFailed); statusErr != nil {
			e.log.Errorw("failed to mark campaign as failed", "campaign", campaign.ID, "error", statusErr)
		}
		return sent, failed, err
	}

	status := models.CampaignCompleted
	if failed > 0 {
		status = models.CampaignCompletedWithErrors
	}
	if err := e.store.UpdateCampaignResults(ctx, campaign.ID, sent, failed, status); err != nil {
		return sent, failed, err
	}
	e.log.Infof("📊 Campaign %s finished: %d sent, %d failed", campaign.Name, sent, failed)
	return sent, failed, nil
}

func (e *Engine) runCampaign(ctx context.Context, campaign *models.Campaign, userID string, sender Sender) (sent, failed int, err error) {
	jobs, err := e.store.FindJobsByIDs(ctx, campaign.JobIDs, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load campaign jobs: %w", err)
	}
	documents, err := e.store.FindDocumentsByIDs(ctx, campaign.DocumentIDs, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load campaign documents: %w", err)
	}
	sharedAttachments := existingAttachments(documents)

	for _, job := range jobs {
		recipients := splitRecipients(job.Emails)
		if len(recipients) == 0 {
			e.log.Warnf("⚠️ %s has no recipient email, skipping", job.Institution)
			failed++
			continue
		}

		attachments := sharedAttachments
		if job.HasLetter() && utils.FileExists(*job.MotivationLetterPath) {
			attachments = append([]mailer.Attachment{{
				Filename: fmt.Sprintf("Anschreiben - %s.pdf", job.Title),
				Path:     *job.MotivationLetterPath,
			}}, sharedAttachments...)
		}

		_, sendErr := e.mailer.Send(mailer.Message{
			From:        sender.Email,
			FromName:    sender.Name,
			To:          recipients[0],
			Subject:     subjectFor(job),
			HTML:        bodyFor(job, sender),
			Attachments: attachments,
		})
		if sendErr != nil {
			e.log.Errorw("❌ campaign send failed", "job", job.ID, "error", sendErr)
			failed++
			continue
		}
		sent++
	}
	return sent, failed, nil
}

// splitRecipients turns the comma-separated email field into a clean list.
func splitRecipients(emails string) []string {
	var recipients []string
	for _, part := range strings.Split(emails, ",") {
		if addr := strings.TrimSpace(part); addr != "" && utils.IsValidEmail(addr) {
			recipients = append(recipients, addr)
		}
	}
	return recipients
}

// existingAttachments maps documents to attachments, skipping files that
// were deleted from disk since upload.
func existingAttachments(documents []*models.Document) []mailer.Attachment {
	var attachments []mailer.Attachment
	for _, doc := range documents {
		if utils.FileExists(doc.FilePath) {
			attachments = append(attachments, mailer.Attachment{
				Filename: doc.OriginalName,
				Path:     doc.FilePath,
			})
		}
	}
	return attachments
}

func subjectFor(job *models.Job) string {
	return fmt.Sprintf("Bewerbung um einen Ausbildungsplatz: %s", job.Title)
}

func bodyFor(job *models.Job, sender Sender) string {
	return fmt.Sprintf(
		"<p>Sehr geehrte Damen und Herren,</p>"+
			"<p>anbei erhalten Sie meine Bewerbungsunterlagen für die Ausbildung als %s bei %s. "+
			"Mein Bewerbungsschreiben und weitere Unterlagen finden Sie im Anhang.</p>"+
			"<p>Über eine Einladung zu einem persönlichen Gespräch freue ich mich sehr.</p>"+
			"<p>Mit freundlichen Grüßen<br>%s</p>",
		job.Title, job.Institution, sender.Name)
}
