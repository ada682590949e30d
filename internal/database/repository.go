package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-ausbildung-automation/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode do not support prepared
	// statements; disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

const jobColumns = `id, title, institution, location, start_date, vacancies, description,
	emails, phones, url, motivation_letter_path, status, user_id, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(&job.ID, &job.Title, &job.Institution, &job.Location, &job.StartDate,
		&job.Vacancies, &job.Description, &job.Emails, &job.Phones, &job.URL,
		&job.MotivationLetterPath, &job.Status, &job.UserID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func collectJobs(rows pgx.Rows) ([]*models.Job, error) {
	defer rows.Close()
	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ---------------- JOB OPERATIONS ----------------

// UpsertJob inserts a new listing or refreshes the existing one. The
// compound unique key (url, user_id) guarantees re-scraping updates in
// place and never duplicates rows.
func (r *Repository) UpsertJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	query := `
		INSERT INTO ausbildungen (id, title, institution, location, start_date, vacancies,
			description, emails, phones, url, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (url, user_id)
		DO UPDATE SET title = EXCLUDED.title, institution = EXCLUDED.institution,
			location = EXCLUDED.location, start_date = EXCLUDED.start_date,
			vacancies = EXCLUDED.vacancies, description = EXCLUDED.description,
			emails = EXCLUDED.emails, phones = EXCLUDED.phones, updated_at = now()
		RETURNING ` + jobColumns

	saved, err := scanJob(r.db.QueryRow(ctx, query,
		uuid.NewString(), job.Title, job.Institution, job.Location, job.StartDate,
		job.Vacancies, job.Description, job.Emails, job.Phones, job.URL,
		models.StatusPending, job.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return saved, nil
}

func (r *Repository) GetJobByID(ctx context.Context, jobID, userID string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ausbildungen WHERE id = $1 AND user_id = $2`
	job, err := scanJob(r.db.QueryRow(ctx, query, jobID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("job not found")
		}
		return nil, fmt.Errorf("failed to get job by ID: %w", err)
	}
	return job, nil
}

func (r *Repository) FindJobsByUser(ctx context.Context, userID string) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ausbildungen WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return collectJobs(rows)
}

// FindJobsNeedingLetter returns jobs with at least one email and no
// generated letter yet. An empty userID selects eligible jobs across all
// owners (global batch).
func (r *Repository) FindJobsNeedingLetter(ctx context.Context, userID string) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ausbildungen
		WHERE emails <> '' AND motivation_letter_path IS NULL`
	args := []any{}
	if userID != "" {
		query += ` AND user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs needing letters: %w", err)
	}
	return collectJobs(rows)
}

// FindJobsReadyToSend returns the owner's jobs that have a letter and are
// not Done yet.
func (r *Repository) FindJobsReadyToSend(ctx context.Context, userID string) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ausbildungen
		WHERE user_id = $1 AND motivation_letter_path IS NOT NULL AND status <> $2
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID, models.StatusDone)
	if err != nil {
		return nil, fmt.Errorf("failed to find ready-to-send jobs: %w", err)
	}
	return collectJobs(rows)
}

func (r *Repository) FindJobsByIDs(ctx context.Context, jobIDs []string, userID string) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ausbildungen
		WHERE id = ANY($1) AND user_id = $2 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, jobIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs by ids: %w", err)
	}
	return collectJobs(rows)
}

func (r *Repository) UpdateJobLetterPath(ctx context.Context, jobID, path string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE ausbildungen SET motivation_letter_path = $1, updated_at = now() WHERE id = $2`,
		path, jobID)
	if err != nil {
		return fmt.Errorf("failed to update motivation letter path: %w", err)
	}
	return nil
}

func (r *Repository) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	_, err := r.db.Exec(ctx,
		`UPDATE ausbildungen SET status = $1, updated_at = now() WHERE id = $2`,
		status, jobID)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

func (r *Repository) DeleteJob(ctx context.Context, jobID, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ausbildungen WHERE id = $1 AND user_id = $2`, jobID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job not found")
	}
	return nil
}

// ---------------- DOCUMENT OPERATIONS ----------------

const documentColumns = `id, user_id, filename, original_name, file_path, mime_type, file_size, created_at`

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.OriginalName,
		&doc.FilePath, &doc.MimeType, &doc.FileSize, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) SaveDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query := `
		INSERT INTO documents (id, user_id, filename, original_name, file_path, mime_type, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + documentColumns
	saved, err := scanDocument(r.db.QueryRow(ctx, query,
		uuid.NewString(), doc.UserID, doc.Filename, doc.OriginalName,
		doc.FilePath, doc.MimeType, doc.FileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return saved, nil
}

func (r *Repository) GetDocument(ctx context.Context, docID, userID string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, docID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (r *Repository) FindDocumentsByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()
	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *Repository) FindDocumentsByIDs(ctx context.Context, docIDs []string, userID string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ANY($1) AND user_id = $2`
	rows, err := r.db.Query(ctx, query, docIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents by ids: %w", err)
	}
	defer rows.Close()
	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes the row and returns the deleted record so the
// caller can remove the file together with it.
func (r *Repository) DeleteDocument(ctx context.Context, docID, userID string) (*models.Document, error) {
	query := `DELETE FROM documents WHERE id = $1 AND user_id = $2 RETURNING ` + documentColumns
	doc, err := scanDocument(r.db.QueryRow(ctx, query, docID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("document not found")
		}
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}
	return doc, nil
}

// ---------------- CAMPAIGN OPERATIONS ----------------

const campaignColumns = `id, user_id, name, send_type, job_ids, document_ids, total_emails,
	sent_count, error_count, status, completed_at, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var (
		c                  models.Campaign
		jobIDs, documentIDs string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.SendType, &jobIDs, &documentIDs,
		&c.TotalEmails, &c.SentCount, &c.ErrorCount, &c.Status, &c.CompletedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(jobIDs), &c.JobIDs); err != nil {
		return nil, fmt.Errorf("failed to decode campaign job ids: %w", err)
	}
	if err := json.Unmarshal([]byte(documentIDs), &c.DocumentIDs); err != nil {
		return nil, fmt.Errorf("failed to decode campaign document ids: %w", err)
	}
	return &c, nil
}

func (r *Repository) CreateCampaign(ctx context.Context, c *models.Campaign) (*models.Campaign, error) {
	jobIDs, err := json.Marshal(c.JobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode campaign job ids: %w", err)
	}
	docIDs := c.DocumentIDs
	if docIDs == nil {
		docIDs = []string{}
	}
	documentIDs, err := json.Marshal(docIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode campaign document ids: %w", err)
	}

	query := `
		INSERT INTO email_campaigns (id, user_id, name, send_type, job_ids, document_ids, total_emails, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + campaignColumns
	saved, err := scanCampaign(r.db.QueryRow(ctx, query,
		uuid.NewString(), c.UserID, c.Name, c.SendType, string(jobIDs), string(documentIDs),
		c.TotalEmails, models.CampaignCreated))
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return saved, nil
}

func (r *Repository) GetCampaign(ctx context.Context, campaignID, userID string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM email_campaigns WHERE id = $1 AND user_id = $2`
	c, err := scanCampaign(r.db.QueryRow(ctx, query, campaignID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("campaign not found")
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

func (r *Repository) FindCampaignsByUser(ctx context.Context, userID string) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM email_campaigns WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()
	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *Repository) UpdateCampaignStatus(ctx context.Context, campaignID string, status models.CampaignStatus) error {
	_, err := r.db.Exec(ctx,
		`UPDATE email_campaigns SET status = $1, updated_at = now() WHERE id = $2`,
		status, campaignID)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	return nil
}

// UpdateCampaignResults records the final counts and completion time.
func (r *Repository) UpdateCampaignResults(ctx context.Context, campaignID string, sentCount, errorCount int, status models.CampaignStatus) error {
	_, err := r.db.Exec(ctx,
		`UPDATE email_campaigns SET sent_count = $1, error_count = $2, status = $3,
			completed_at = now(), updated_at = now() WHERE id = $4`,
		sentCount, errorCount, status, campaignID)
	if err != nil {
		return fmt.Errorf("failed to update campaign results: %w", err)
	}
	return nil
}

// ---------------- USER / STATS OPERATIONS ----------------

func (r *Repository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, created_at, updated_at FROM users WHERE id = $1`,
		userID).
		Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *Repository) GetStats(ctx context.Context, userID string) (*models.Stats, error) {
	var stats models.Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE motivation_letter_path IS NULL AND status <> $2),
			count(*) FILTER (WHERE motivation_letter_path IS NOT NULL AND status <> $2),
			count(*) FILTER (WHERE status = $2),
			count(*) FILTER (WHERE motivation_letter_path IS NOT NULL)
		FROM ausbildungen WHERE user_id = $1`,
		userID, models.StatusDone).
		Scan(&stats.TotalJobs, &stats.PendingJobs, &stats.ReadyToSend, &stats.DoneJobs, &stats.JobsWithLetters)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return &stats, nil
}
