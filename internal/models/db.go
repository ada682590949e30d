package models

import (
	"time"
)

type JobStatus string

const (
	StatusPending     JobStatus = "Pending"
	StatusReadyToSend JobStatus = "Ready to Send"
	StatusDone        JobStatus = "Done"
)

func (s JobStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusReadyToSend:
		return 1
	case StatusDone:
		return 2
	}
	return -1
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
// Statuses never move backward except through an explicit reset.
func (s JobStatus) CanAdvanceTo(next JobStatus) bool {
	return s.rank() >= 0 && next.rank() > s.rank()
}

type CampaignStatus string

const (
	CampaignCreated             CampaignStatus = "created"
	CampaignSending             CampaignStatus = "sending"
	CampaignCompleted           CampaignStatus = "completed"
	CampaignCompletedWithErrors CampaignStatus = "completed_with_errors"
	CampaignFailed              CampaignStatus = "failed"
)

// Job is a discovered Ausbildung listing. Emails and phones are stored as
// comma-separated strings; (URL, UserID) is unique per owner.
type Job struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Institution          string    `json:"institution"`
	Location             string    `json:"location"`
	StartDate            string    `json:"startDate"`
	Vacancies            string    `json:"vacancies"`
	Description          string    `json:"description"`
	Emails               string    `json:"emails"`
	Phones               string    `json:"phones"`
	URL                  string    `json:"url"`
	MotivationLetterPath *string   `json:"motivationLetterPath,omitempty"`
	Status               JobStatus `json:"status"`
	UserID               string    `json:"userId"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// HasLetter reports whether a motivation letter has been generated for j.
func (j *Job) HasLetter() bool {
	return j.MotivationLetterPath != nil && *j.MotivationLetterPath != ""
}

type Document struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	FilePath     string    `json:"filePath"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Campaign groups job and document ids for a batch send.
type Campaign struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Name        string         `json:"name"`
	SendType    string         `json:"sendType"`
	JobIDs      []string       `json:"jobIds"`
	DocumentIDs []string       `json:"documentIds"`
	TotalEmails int            `json:"totalEmails"`
	SentCount   int            `json:"sentCount"`
	ErrorCount  int            `json:"errorCount"`
	Status      CampaignStatus `json:"status"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats is the dashboard summary for one user.
type Stats struct {
	TotalJobs       int `json:"totalJobs"`
	PendingJobs     int `json:"pendingJobs"`
	ReadyToSend     int `json:"readyToSend"`
	DoneJobs        int `json:"doneJobs"`
	JobsWithLetters int `json:"jobsWithMotivationLetters"`
}
