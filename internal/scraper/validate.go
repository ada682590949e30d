package scraper

import (
	"fmt"
	"strings"

	"go-ausbildung-automation/internal/models"
	"go-ausbildung-automation/utils"
)

// ValidationError marks a scraped record with missing required fields. Such
// records are discarded and logged, never persisted or retried.
type ValidationError struct {
	URL    string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job data for %s: %s", e.URL, strings.Join(e.Fields, "; "))
}

// ValidateJob checks the required listing fields.
func ValidateJob(job *models.Job) error {
	var fields []string
	if strings.TrimSpace(job.Title) == "" {
		fields = append(fields, "title is required")
	}
	if strings.TrimSpace(job.Institution) == "" {
		fields = append(fields, "institution is required")
	}
	if !utils.IsValidURL(job.URL) {
		fields = append(fields, "valid URL is required")
	}
	if len(fields) > 0 {
		return &ValidationError{URL: job.URL, Fields: fields}
	}
	return nil
}
