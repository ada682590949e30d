package letters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/models"
	"go-ausbildung-automation/internal/pdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLetterStore struct {
	jobs          []*models.Job
	letterPaths   map[string]string
	statusUpdates map[string]models.JobStatus
	pathErr       error
}

func (f *fakeLetterStore) FindJobsNeedingLetter(ctx context.Context, userID string) ([]*models.Job, error) {
	return f.jobs, nil
}

func (f *fakeLetterStore) UpdateJobLetterPath(ctx context.Context, jobID, path string) error {
	if f.pathErr != nil {
		return f.pathErr
	}
	if f.letterPaths == nil {
		f.letterPaths = make(map[string]string)
	}
	f.letterPaths[jobID] = path
	return nil
}

func (f *fakeLetterStore) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	if f.statusUpdates == nil {
		f.statusUpdates = make(map[string]models.JobStatus)
	}
	f.statusUpdates[jobID] = status
	return nil
}

type fakeTextGen struct {
	failFor  map[string]error
	prompts  []string
	response string
}

func (f *fakeTextGen) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	for needle, err := range f.failFor {
		if needle != "" && strings.Contains(prompt, needle) {
			return "", err
		}
	}
	return f.response, nil
}

type fakeRenderer struct {
	rendered []pdf.Letter
	err      error
}

func (f *fakeRenderer) Generate(letter pdf.Letter) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rendered = append(f.rendered, letter)
	return []byte("%PDF-1.4 fake"), nil
}

type fakeCVReader struct {
	text string
	err  error
}

func (f *fakeCVReader) ExtractText(path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testLettersConfig() *config.LettersConfig {
	return &config.LettersConfig{
		GeminiModel:             "gemini-2.5-flash",
		MaxRetries:              2,
		RetryInitialDelayMs:     1,
		DelayBetweenGenerations: 0,
	}
}

func newTestGenerator(t *testing.T, store *fakeLetterStore, textgen *fakeTextGen, renderer *fakeRenderer, cv *fakeCVReader) (*Generator, string) {
	t.Helper()
	outputDir := t.TempDir()
	g := NewGenerator(testLettersConfig(), outputDir, store, textgen, renderer, cv, zap.NewNop().Sugar())
	g.sleep = func(time.Duration) {}
	return g, outputDir
}

func testJob(id, institution string) *models.Job {
	return &models.Job{
		ID:          id,
		Title:       "Ausbildung zur Pflegefachkraft",
		Institution: institution,
		Location:    "Berlin",
		StartDate:   "01.08.2026",
		Description: "Pflege und Betreuung",
		Emails:      "bewerbung@example.de",
		Status:      models.StatusPending,
		UserID:      "user-1",
	}
}

func TestGenerateAllProducesLetterPerEligibleJob(t *testing.T) {
	store := &fakeLetterStore{jobs: []*models.Job{
		testJob("job-1", "Klinikum Nord"),
		testJob("job-2", "St. Marien Hospital"),
		testJob("job-3", "Caritas Altenheim"),
	}}
	textgen := &fakeTextGen{response: "Sehr geehrte Damen und Herren,\n\nhiermit bewerbe ich mich.\n\nMit freundlichen Grüßen"}
	renderer := &fakeRenderer{}
	cv := &fakeCVReader{text: "Max Mustermann, Realschulabschluss 2024"}

	g, outputDir := newTestGenerator(t, store, textgen, renderer, cv)
	count, err := g.GenerateAll(context.Background(), "cv.pdf", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, renderer.rendered, 3)
	assert.Len(t, store.letterPaths, 3)

	wantPath := filepath.Join(outputDir, "Bewerbung_Klinikum_Nord_job-1.pdf")
	assert.Equal(t, wantPath, store.letterPaths["job-1"])
	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)

	for _, id := range []string{"job-1", "job-2", "job-3"} {
		assert.Equal(t, models.StatusReadyToSend, store.statusUpdates[id])
	}
}

func TestGenerateAllEmbedsJobContextAndCVInPrompt(t *testing.T) {
	store := &fakeLetterStore{jobs: []*models.Job{testJob("job-1", "Klinikum Nord")}}
	textgen := &fakeTextGen{response: "Bewerbungstext"}
	cv := &fakeCVReader{text: "Max Mustermann, Realschulabschluss 2024"}

	g, _ := newTestGenerator(t, store, textgen, &fakeRenderer{}, cv)
	_, err := g.GenerateAll(context.Background(), "cv.pdf", "user-1")

	require.NoError(t, err)
	require.Len(t, textgen.prompts, 1)
	prompt := textgen.prompts[0]
	assert.Contains(t, prompt, "Klinikum Nord")
	assert.Contains(t, prompt, "Ausbildung zur Pflegefachkraft")
	assert.Contains(t, prompt, "Max Mustermann")
	assert.Contains(t, prompt, "01.08.2026")
}

func TestGenerateAllCVFailureIsFatal(t *testing.T) {
	store := &fakeLetterStore{jobs: []*models.Job{testJob("job-1", "Klinikum Nord")}}
	cvErr := &ExtractionError{Path: "cv.pdf", Err: errors.New("no text content found in PDF")}

	g, _ := newTestGenerator(t, store, &fakeTextGen{}, &fakeRenderer{}, &fakeCVReader{err: cvErr})
	count, err := g.GenerateAll(context.Background(), "cv.pdf", "")

	assert.Equal(t, 0, count)
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Empty(t, store.letterPaths)
}

func TestGenerateAllContinuesAfterPerJobFailure(t *testing.T) {
	store := &fakeLetterStore{jobs: []*models.Job{
		testJob("job-1", "Klinikum Nord"),
		testJob("job-2", "St. Marien Hospital"),
	}}
	textgen := &fakeTextGen{
		response: "Bewerbungstext",
		failFor:  map[string]error{"Klinikum Nord": fmt.Errorf("model overloaded")},
	}

	g, _ := newTestGenerator(t, store, textgen, &fakeRenderer{}, &fakeCVReader{text: "CV"})
	count, err := g.GenerateAll(context.Background(), "cv.pdf", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotContains(t, store.letterPaths, "job-1")
	assert.Contains(t, store.letterPaths, "job-2")
	assert.Equal(t, models.StatusReadyToSend, store.statusUpdates["job-2"])
}

func TestGenerateAllDoesNotDowngradeStatus(t *testing.T) {
	done := testJob("job-1", "Klinikum Nord")
	done.Status = models.StatusDone
	store := &fakeLetterStore{jobs: []*models.Job{done}}

	g, _ := newTestGenerator(t, store, &fakeTextGen{response: "Text"}, &fakeRenderer{}, &fakeCVReader{text: "CV"})
	count, err := g.GenerateAll(context.Background(), "cv.pdf", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotContains(t, store.statusUpdates, "job-1")
}
