// Package scraper implements the resilient extraction pipeline: paginated
// crawl of ausbildung.de search results, per-listing detail extraction with
// fallback chains, validation, dedupe and upsert persistence.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/models"
	"go-ausbildung-automation/internal/progress"
	"go-ausbildung-automation/internal/retry"
	"go-ausbildung-automation/utils"

	"go.uber.org/zap"
)

const listingLinkSelector = "a[href^='/stellen/']"

// Store is the persistence surface the scraper needs.
type Store interface {
	UpsertJob(ctx context.Context, job *models.Job) (*models.Job, error)
}

// RunError is one accumulated per-item or per-page failure.
type RunError struct {
	URL   string `json:"url,omitempty"`
	Page  int    `json:"page,omitempty"`
	Error string `json:"error"`
}

// Summary is the result of one scrape run.
type Summary struct {
	SavedJobs   int        `json:"savedJobs"`
	VisitedURLs int        `json:"totalProcessedUrls"`
	Errors      []RunError `json:"errors"`
}

// runContext holds the mutable per-run state, owned by a single Run
// invocation rather than the Scraper instance, so concurrent runs with
// separate browsers stay safe.
type runContext struct {
	seen    map[string]bool
	errors  []RunError
	saved   int
	visited int
}

type Scraper struct {
	cfg       *config.ScrapingConfig
	store     Store
	browser   Browser
	extractor *FieldExtractor
	retries   *retry.Policy
	log       *zap.SugaredLogger

	sleep func(time.Duration)
}

func New(cfg *config.ScrapingConfig, store Store, browser Browser, log *zap.SugaredLogger) *Scraper {
	return &Scraper{
		cfg:       cfg,
		store:     store,
		browser:   browser,
		extractor: NewFieldExtractor(log),
		retries:   retry.New(cfg.MaxRetries, time.Duration(cfg.RetryInitialDelayMs)*time.Millisecond),
		log:       log,
		sleep:     time.Sleep,
	}
}

// Run crawls up to numPages result pages for (term, location) and persists
// every validated listing that carries at least one contact email, upserting
// on (url, userID). Individual failures are accumulated, never fatal; only
// the caller-side failure to acquire the browser aborts a run entirely.
func (s *Scraper) Run(ctx context.Context, term, location string, numPages int, userID string) (*Summary, error) {
	s.log.Infof("🕷️ Starting scraping process for %q (%s), %d pages", term, location, numPages)
	run := &runContext{seen: make(map[string]bool)}

	requestTimeout := time.Duration(s.cfg.RequestTimeoutMs) * time.Millisecond
	tracker := progress.NewTracker(numPages, "Scraping pages", s.log)

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		s.log.Infof("📄 Processing page %d/%d", pageNum, numPages)
		searchURL := fmt.Sprintf("%s?search=%s%%7C%s&page=%d",
			s.cfg.BaseURL, url.QueryEscape(term), url.QueryEscape(location), pageNum)

		jobURLs, err := s.collectListingURLs(ctx, searchURL, requestTimeout)
		if err != nil {
			s.log.Errorw("error processing page", "page", pageNum, "error", err)
			run.errors = append(run.errors, RunError{Page: pageNum, Error: err.Error()})
			tracker.Increment()
			continue
		}
		s.log.Infof("Found %d job listings on page %d", len(jobURLs), pageNum)
		if len(jobURLs) == 0 {
			// the site signals exhausted results with an empty page
			break
		}

		pageResults := 0
		for _, jobURL := range jobURLs {
			if run.seen[jobURL] {
				continue
			}
			run.seen[jobURL] = true
			run.visited++

			if s.processListing(ctx, run, jobURL, userID) {
				pageResults++
			}
			s.sleep(time.Duration(s.cfg.DelayBetweenRequests) * time.Millisecond)
		}
		s.log.Infof("📈 Page %d results: %d jobs saved with emails", pageNum, pageResults)

		tracker.Increment()
		if pageNum < numPages {
			s.sleep(time.Duration(s.cfg.DelayBetweenPages) * time.Millisecond)
		}
	}
	tracker.Complete()

	summary := &Summary{SavedJobs: run.saved, VisitedURLs: run.visited, Errors: run.errors}
	s.logSummary(summary)
	return summary, nil
}

func (s *Scraper) collectListingURLs(ctx context.Context, searchURL string, timeout time.Duration) ([]string, error) {
	page, err := s.browser.Open(ctx, searchURL, timeout)
	if err != nil {
		return nil, err
	}
	if err := page.WaitFor(listingLinkSelector, timeout); err != nil {
		// no listing links within the timeout usually means an empty result
		// page; let the Links call below decide
		s.log.Debugw("wait for listing links expired", "url", searchURL, "error", err)
	}
	return page.Links(listingLinkSelector)
}

// processListing scrapes, validates and persists one listing URL. Returns
// true when a job was saved.
func (s *Scraper) processListing(ctx context.Context, run *runContext, jobURL, userID string) bool {
	job, err := retry.Do(ctx, s.retries, func() (*models.Job, error) {
		return s.scrapeJobDetails(ctx, jobURL, userID)
	})
	if err != nil {
		s.log.Errorw("failed to process job", "url", jobURL, "error", err)
		run.errors = append(run.errors, RunError{URL: jobURL, Error: err.Error()})
		return false
	}
	if job == nil {
		// invalid record, already logged; discarded without counting as error
		return false
	}
	if job.Emails == "" {
		s.log.Warnf("⏭️ Skipping job (no email found): %s", job.Title)
		return false
	}

	if _, err := s.store.UpsertJob(ctx, job); err != nil {
		s.log.Errorw("failed to save job", "url", jobURL, "error", err)
		run.errors = append(run.errors, RunError{URL: jobURL, Error: err.Error()})
		return false
	}
	s.log.Infof("💾 Saved job: %s @ %s", job.Title, job.Institution)
	run.saved++
	return true
}

// scrapeJobDetails fetches one detail page and extracts the listing fields
// through the fallback chains. Returns (nil, nil) for records that fail
// validation; those are discarded, not retried.
func (s *Scraper) scrapeJobDetails(ctx context.Context, jobURL, userID string) (*models.Job, error) {
	s.log.Infof("Processing: %s", jobURL)
	page, err := s.browser.Open(ctx, jobURL, time.Duration(s.cfg.RequestTimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, err
	}

	title := s.extractor.Extract(page, []string{"h1"}, nil)
	institution := s.extractor.ExtractInstitution(page, jobURL)
	location := s.extractor.Extract(page, locationSelectors, locationLabels)
	startDate := s.extractor.ExtractStartDate(page)
	vacancies := s.extractor.ExtractVacancies(page)

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("could not read page content: %w", err)
	}
	description := utils.Truncate(utils.CleanHTML(html), s.cfg.DescriptionLimit)

	var emails []string
	for _, e := range utils.ExtractEmails(html) {
		if utils.IsValidEmail(e) {
			emails = append(emails, e)
		}
	}
	phones := utils.ExtractPhoneNumbers(html)

	job := &models.Job{
		Title:       title,
		Institution: institution,
		Location:    location,
		StartDate:   startDate,
		Vacancies:   vacancies,
		Description: description,
		Emails:      strings.Join(emails, ", "),
		Phones:      strings.Join(phones, ", "),
		URL:         jobURL,
		Status:      models.StatusPending,
		UserID:      userID,
	}

	if err := ValidateJob(job); err != nil {
		s.log.Warnw("invalid job data, skipping", "url", jobURL, "error", err)
		return nil, nil
	}

	s.log.Infof("Scraped: [Titel: %s] [Firma: %s] [Start: %s] [Plätze: %s]",
		job.Title, job.Institution, job.StartDate, job.Vacancies)
	return job, nil
}

func (s *Scraper) logSummary(summary *Summary) {
	s.log.Infof("📊 Final Results:\n   • Total jobs saved with email: %d\n   • Total URLs processed: %d\n   • Total errors encountered: %d",
		summary.SavedJobs, summary.VisitedURLs, len(summary.Errors))
	if len(summary.Errors) == 0 {
		return
	}
	s.log.Warn("❗ Errors summary:")
	shown := summary.Errors
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for i, e := range shown {
		where := e.URL
		if where == "" {
			where = fmt.Sprintf("Page %d", e.Page)
		}
		s.log.Warnf("   %d. %s: %s", i+1, where, e.Error)
	}
	if rest := len(summary.Errors) - len(shown); rest > 0 {
		s.log.Warnf("   ... and %d more errors", rest)
	}
}
