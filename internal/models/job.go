package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType represents the contract type of a job posting.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-Time"
	JobTypePartTime   JobType = "Part-Time"
	JobTypeInternship JobType = "Internship"
	JobTypeRemote     JobType = "Remote"
)

// ParseJobType validates a job type. Empty input yields Full-Time.
func ParseJobType(s string) (JobType, error) {
	switch JobType(s) {
	case "":
		return JobTypeFullTime, nil
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeRemote:
		return JobType(s), nil
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

// JobStatus represents whether a job still accepts applications.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "Open"
	JobStatusClosed JobStatus = "Closed"
)

// ParseJobStatus validates a job status. Empty input yields Open.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case "":
		return JobStatusOpen, nil
	case JobStatusOpen, JobStatusClosed:
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Job is a posting created by an employer.
// Implements the Ownable interface for ownership-based authorization.
type Job struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Title       string    `gorm:"size:255;not null" json:"title" bson:"title"`
	Company     string    `gorm:"size:255;not null" json:"company" bson:"company"`
	Location    string    `gorm:"size:255" json:"location" bson:"location"`
	Type        JobType   `gorm:"size:20;not null;default:'Full-Time';index" json:"type" bson:"type"`
	Description string    `gorm:"type:text;not null" json:"description" bson:"description"`
	Salary      string    `gorm:"size:255" json:"salary,omitempty" bson:"salary,omitempty"`
	Status      JobStatus `gorm:"size:20;not null;default:'Open'" json:"status" bson:"status"`

	CreatedBy string `gorm:"size:36;not null;index" json:"createdBy" bson:"createdBy"`
	Creator   *User  `gorm:"foreignKey:CreatedBy" json:"-" bson:"-"`

	Applicants []Applicant `gorm:"foreignKey:JobID" json:"applicants" bson:"applicants"`

	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// BeforeCreate assigns an id and defaults before insert.
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	j.Prepare(time.Now().UTC())
	return nil
}

// Prepare fills the fields every store sets on insert.
func (j *Job) Prepare(now time.Time) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Type == "" {
		j.Type = JobTypeFullTime
	}
	if j.Status == "" {
		j.Status = JobStatusOpen
	}
	if j.Applicants == nil {
		j.Applicants = []Applicant{}
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = j.CreatedAt
	}
}

// GetOwnerID implements the Ownable interface for authorization.
func (j *Job) GetOwnerID() string {
	return j.CreatedBy
}

// Summary projects the job to the "my applications" shape.
func (j *Job) Summary() JobSummary {
	return JobSummary{
		ID:        j.ID,
		Title:     j.Title,
		Company:   j.Company,
		Location:  j.Location,
		Type:      j.Type,
		CreatedAt: j.CreatedAt,
	}
}

// Applicant is one entry of a job's applicant list.
// (JobID, UserID) is unique: a user applies to a job at most once.
type Applicant struct {
	ID        uint      `gorm:"primaryKey" json:"-" bson:"-"`
	JobID     string    `gorm:"size:36;not null;uniqueIndex:idx_job_applicant" json:"-" bson:"-"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_job_applicant;index" json:"user" bson:"user"`
	AppliedAt time.Time `gorm:"not null" json:"appliedAt" bson:"appliedAt"`
	User      *User     `gorm:"foreignKey:UserID" json:"-" bson:"-"`
}

// TableName keeps the applicant table name explicit.
func (Applicant) TableName() string { return "job_applicants" }

// SavedJob is one bookmark of a user's saved-job list.
type SavedJob struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  string    `gorm:"size:36;not null;uniqueIndex:idx_saved_user_job"`
	JobID   string    `gorm:"size:36;not null;uniqueIndex:idx_saved_user_job;index"`
	SavedAt time.Time `gorm:"not null"`
	Job     *Job      `gorm:"foreignKey:JobID"`
}

// JobSummary is the projection returned by the "my applications" view.
type JobSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  string    `json:"location"`
	Type      JobType   `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats is the platform-wide snapshot shown on the admin dashboard.
type Stats struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalJobs         int64 `json:"totalJobs"`
	TotalApplications int64 `json:"totalApplications"`
	NewUsersThisMonth int64 `json:"newUsersThisMonth"`
	JobsThisMonth     int64 `json:"jobsThisMonth"`
	Seekers           int64 `json:"seekers"`
	Employers         int64 `json:"employers"`
	Admins            int64 `json:"admins"`
}

// MonthStart returns the first instant of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
