package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go-ausbildung-automation/internal/mailer"
	"go-ausbildung-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDispatchStore struct {
	readyJobs     []*models.Job
	jobsByID      map[string]*models.Job
	jobsByIDErr   error
	documents     []*models.Document
	campaigns     map[string]*models.Campaign
	statusUpdates map[string]models.JobStatus

	campaignStatuses []models.CampaignStatus
	resultSent       int
	resultFailed     int
	resultStatus     models.CampaignStatus
}

func (f *fakeDispatchStore) FindJobsReadyToSend(ctx context.Context, userID string) ([]*models.Job, error) {
	return f.readyJobs, nil
}

func (f *fakeDispatchStore) FindJobsByIDs(ctx context.Context, jobIDs []string, userID string) ([]*models.Job, error) {
	if f.jobsByIDErr != nil {
		return nil, f.jobsByIDErr
	}
	var jobs []*models.Job
	for _, id := range jobIDs {
		if job, ok := f.jobsByID[id]; ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (f *fakeDispatchStore) FindDocumentsByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	return f.documents, nil
}

func (f *fakeDispatchStore) FindDocumentsByIDs(ctx context.Context, docIDs []string, userID string) ([]*models.Document, error) {
	return f.documents, nil
}

func (f *fakeDispatchStore) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	if f.statusUpdates == nil {
		f.statusUpdates = make(map[string]models.JobStatus)
	}
	f.statusUpdates[jobID] = status
	return nil
}

func (f *fakeDispatchStore) GetCampaign(ctx context.Context, campaignID, userID string) (*models.Campaign, error) {
	c, ok := f.campaigns[campaignID]
	if !ok {
		return nil, fmt.Errorf("campaign not found")
	}
	return c, nil
}

func (f *fakeDispatchStore) UpdateCampaignStatus(ctx context.Context, campaignID string, status models.CampaignStatus) error {
	f.campaignStatuses = append(f.campaignStatuses, status)
	return nil
}

func (f *fakeDispatchStore) UpdateCampaignResults(ctx context.Context, campaignID string, sentCount, errorCount int, status models.CampaignStatus) error {
	f.resultSent = sentCount
	f.resultFailed = errorCount
	f.resultStatus = status
	f.campaignStatuses = append(f.campaignStatuses, status)
	return nil
}

type fakeMailer struct {
	sent    []mailer.Message
	failFor map[string]error
	nextID  int
}

func (f *fakeMailer) Send(msg mailer.Message) (string, error) {
	if err, ok := f.failFor[msg.To]; ok {
		return "", err
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return fmt.Sprintf("<msg-%d@test>", f.nextID), nil
}

func writeLetterFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Bewerbung_Test.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))
	return path
}

func readyJob(id, emails, letterPath string) *models.Job {
	return &models.Job{
		ID:                   id,
		Title:                "Ausbildung zum Fachinformatiker",
		Institution:          "Musterfirma GmbH",
		Emails:               emails,
		MotivationLetterPath: &letterPath,
		Status:               models.StatusReadyToSend,
		UserID:               "user-1",
	}
}

func testSender() Sender {
	return Sender{Name: "Max Mustermann", Email: "max@example.de"}
}

func TestSendForUserAdvancesOnPartialRecipientFailure(t *testing.T) {
	letter := writeLetterFile(t)
	store := &fakeDispatchStore{
		readyJobs: []*models.Job{readyJob("job-1", "hr@firma.de, chef@firma.de", letter)},
	}
	m := &fakeMailer{failFor: map[string]error{"chef@firma.de": errors.New("mailbox full")}}

	engine := NewEngine(store, m, zap.NewNop().Sugar())
	result, err := engine.SendForUser(context.Background(), "user-1", testSender())

	require.NoError(t, err)
	assert.Equal(t, 1, result.SentCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "chef@firma.de", result.Errors[0].Email)
	require.Len(t, result.MessageIDs, 1)
	assert.Equal(t, "job-1", result.MessageIDs[0].JobID)
	assert.Equal(t, models.StatusDone, store.statusUpdates["job-1"])
}

func TestSendForUserSkipsJobWithMissingLetterFile(t *testing.T) {
	store := &fakeDispatchStore{
		readyJobs: []*models.Job{readyJob("job-1", "hr@firma.de", "/nonexistent/letter.pdf")},
	}
	m := &fakeMailer{}

	engine := NewEngine(store, m, zap.NewNop().Sugar())
	result, err := engine.SendForUser(context.Background(), "user-1", testSender())

	require.NoError(t, err)
	assert.Equal(t, 0, result.SentCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "not found")
	assert.Empty(t, m.sent)
	assert.Empty(t, store.statusUpdates)
}

func TestSendForUserNoEligibleJobsReturnsMessage(t *testing.T) {
	engine := NewEngine(&fakeDispatchStore{}, &fakeMailer{}, zap.NewNop().Sugar())
	result, err := engine.SendForUser(context.Background(), "user-1", testSender())

	require.NoError(t, err)
	assert.Equal(t, 0, result.SentCount)
	assert.NotEmpty(t, result.Message)
}

func TestSendForUserAttachesLetterAndExistingDocuments(t *testing.T) {
	letter := writeLetterFile(t)
	docPath := filepath.Join(t.TempDir(), "zeugnis.pdf")
	require.NoError(t, os.WriteFile(docPath, []byte("%PDF"), 0644))

	store := &fakeDispatchStore{
		readyJobs: []*models.Job{readyJob("job-1", "hr@firma.de", letter)},
		documents: []*models.Document{
			{ID: "doc-1", OriginalName: "Zeugnis.pdf", FilePath: docPath},
			{ID: "doc-2", OriginalName: "Geloescht.pdf", FilePath: "/nonexistent/doc.pdf"},
		},
	}
	m := &fakeMailer{}

	engine := NewEngine(store, m, zap.NewNop().Sugar())
	_, err := engine.SendForUser(context.Background(), "user-1", testSender())

	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	attachments := m.sent[0].Attachments
	require.Len(t, attachments, 2)
	assert.Equal(t, "Bewerbung_Max_Mustermann.pdf", attachments[0].Filename)
	assert.Equal(t, "Zeugnis.pdf", attachments[1].Filename)
}

func TestSendCampaignMarksCompleted(t *testing.T) {
	letter := writeLetterFile(t)
	store := &fakeDispatchStore{
		jobsByID: map[string]*models.Job{
			"job-1": readyJob("job-1", "hr@firma.de", letter),
			"job-2": readyJob("job-2", "info@klinik.de", letter),
		},
		campaigns: map[string]*models.Campaign{
			"camp-1": {ID: "camp-1", Name: "Herbst 2026", JobIDs: []string{"job-1", "job-2"}, Status: models.CampaignCreated},
		},
	}
	m := &fakeMailer{}

	engine := NewEngine(store, m, zap.NewNop().Sugar())
	sent, failed, err := engine.SendCampaign(context.Background(), "camp-1", "user-1", testSender())

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []models.CampaignStatus{models.CampaignSending, models.CampaignCompleted}, store.campaignStatuses)
	assert.Equal(t, models.CampaignCompleted, store.resultStatus)
}

func TestSendCampaignCountsJobsWithoutRecipients(t *testing.T) {
	letter := writeLetterFile(t)
	store := &fakeDispatchStore{
		jobsByID: map[string]*models.Job{
			"job-1": readyJob("job-1", "hr@firma.de", letter),
			"job-2": readyJob("job-2", "", letter),
		},
		campaigns: map[string]*models.Campaign{
			"camp-1": {ID: "camp-1", Name: "Herbst 2026", JobIDs: []string{"job-1", "job-2"}, Status: models.CampaignCreated},
		},
	}
	m := &fakeMailer{}

	engine := NewEngine(store, m, zap.NewNop().Sugar())
	sent, failed, err := engine.SendCampaign(context.Background(), "camp-1", "user-1", testSender())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
	assert.Equal(t, models.CampaignCompletedWithErrors, store.resultStatus)
}

func TestSendCampaignOnlyFirstRecipientIsUsed(t *testing.T) {
	letter := writeLetterFile(t)
	store := &fakeDispatchStore{
		jobsByID: map[string]*models.Job{
			"job-1": readyJob("job-1", "erste@firma.de, zweite@firma.de", letter),
		},
		campaigns: map[string]*models.Campaign{
			"camp-1": {ID: "camp-1", Name: "Test", JobIDs: []string{"job-1"}, Status: models.CampaignCreated},
		},
	}
	m := &fakeMailer{}

	engine := NewEngine(store, m, zap.NewNop().Sugar())
	sent, _, err := engine.SendCampaign(context.Background(), "camp-1", "user-1", testSender())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "erste@firma.de", m.sent[0].To)
}

func TestSendCampaignCriticalErrorMarksFailed(t *testing.T) {
	store := &fakeDispatchStore{
		jobsByIDErr: errors.New("connection reset by peer"),
		campaigns: map[string]*models.Campaign{
			"camp-1": {ID: "camp-1", Name: "Herbst 2026", JobIDs: []string{"job-1"}, Status: models.CampaignCreated},
		},
	}
	m := &fakeMailer{}

	engine := NewEngine(store, m, zap.NewNop().Sugar())
	sent, failed, err := engine.SendCampaign(context.Background(), "camp-1", "user-1", testSender())

	require.Error(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
	assert.Empty(t, m.sent)
	assert.Equal(t, []models.CampaignStatus{models.CampaignSending, models.CampaignFailed}, store.campaignStatuses)
}

func TestSplitRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@b.de", "c@d.de"}, splitRecipients("a@b.de, c@d.de"))
	assert.Equal(t, []string{"a@b.de"}, splitRecipients("a@b.de,,not-an-email"))
	assert.Nil(t, splitRecipients(""))
}
