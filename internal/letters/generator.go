// Package letters implements the generation pipeline: pull jobs lacking a
// letter, generate tailored text per job, render it to PDF and advance the
// job's status.
package letters

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go-ausbildung-automation/internal/ai"
	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/models"
	"go-ausbildung-automation/internal/pdf"
	"go-ausbildung-automation/internal/progress"
	"go-ausbildung-automation/internal/retry"
	"go-ausbildung-automation/utils"

	"go.uber.org/zap"
)

// Store is the persistence surface the generator needs.
type Store interface {
	FindJobsNeedingLetter(ctx context.Context, userID string) ([]*models.Job, error)
	UpdateJobLetterPath(ctx context.Context, jobID, path string) error
	UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error
}

// Renderer produces PDF bytes from a letter.
type Renderer interface {
	Generate(letter pdf.Letter) ([]byte, error)
}

type Generator struct {
	cfg       *config.LettersConfig
	outputDir string
	store     Store
	textgen   ai.Client
	renderer  Renderer
	cv        CVReader
	retries   *retry.Policy
	log       *zap.SugaredLogger

	sleep func(time.Duration)
}

func NewGenerator(cfg *config.LettersConfig, outputDir string, store Store, textgen ai.Client, renderer Renderer, cv CVReader, log *zap.SugaredLogger) *Generator {
	return &Generator{
		cfg:       cfg,
		outputDir: outputDir,
		store:     store,
		textgen:   textgen,
		renderer:  renderer,
		cv:        cv,
		retries:   retry.New(cfg.MaxRetries, time.Duration(cfg.RetryInitialDelayMs)*time.Millisecond),
		log:       log,
		sleep:     time.Sleep,
	}
}

// GenerateAll creates a motivation letter for every eligible job (≥1 email,
// no letter yet) and returns how many letters were produced and persisted.
// userID scopes the batch to one owner; an empty userID processes all
// owners. An unreadable CV is fatal; per-job failures are logged and
// counted but never abort the batch.
func (g *Generator) GenerateAll(ctx context.Context, cvPath, userID string) (int, error) {
	g.log.Info("📝 Starting motivation letter generation...")

	if err := utils.EnsureDirectory(g.outputDir); err != nil {
		return 0, err
	}

	cvText, err := g.cv.ExtractText(cvPath)
	if err != nil {
		return 0, err
	}
	g.log.Infof("CV parsed successfully. Character count: %d", len(cvText))

	// the eligible queue is pulled once up front; jobs scraped while the
	// batch runs wait for the next invocation
	jobs, err := g.store.FindJobsNeedingLetter(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load eligible jobs: %w", err)
	}
	g.log.Infof("📊 Found %d jobs that need letters.", len(jobs))

	tracker := progress.NewTracker(len(jobs), "Generating motivation letters", g.log)
	successCount := 0
	for _, job := range jobs {
		if err := g.generateOne(ctx, job, cvText); err != nil {
			g.log.Errorw("❌ failed to process a letter", "institution", job.Institution, "error", err)
		} else {
			g.log.Infof("✅ Letter created for %s", job.Institution)
			successCount++
		}
		tracker.Increment()
		g.sleep(time.Duration(g.cfg.DelayBetweenGenerations) * time.Millisecond)
	}
	tracker.Complete()

	return successCount, nil
}

func (g *Generator) generateOne(ctx context.Context, job *models.Job, cvText string) error {
	letterText, err := retry.Do(ctx, g.retries, func() (string, error) {
		return g.textgen.Complete(ctx, buildPrompt(job, cvText))
	})
	if err != nil {
		return fmt.Errorf("text generation failed: %w", err)
	}

	pdfBytes, err := g.renderer.Generate(pdf.NewLetter(job.Title, job.Institution, letterText))
	if err != nil {
		return fmt.Errorf("PDF rendering failed: %w", err)
	}

	filename := fmt.Sprintf("Bewerbung_%s_%s.pdf", utils.CleanFilename(job.Institution), job.ID)
	path := filepath.Join(g.outputDir, filename)
	if err := pdf.SaveToFile(pdfBytes, path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	if err := g.store.UpdateJobLetterPath(ctx, job.ID, path); err != nil {
		return err
	}
	if job.Status.CanAdvanceTo(models.StatusReadyToSend) {
		if err := g.store.UpdateJobStatus(ctx, job.ID, models.StatusReadyToSend); err != nil {
			return err
		}
	}
	return nil
}
