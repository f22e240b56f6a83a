// Package store defines the persistence contract of the job board.
// gormstore implements it on PostgreSQL/SQLite, mongostore on MongoDB.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/jobboard/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrAlreadyApplied = errors.New("already applied")
)

// Sort orders job listings by creation time.
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

// ParseSort maps the query value to a Sort; anything but "oldest" is newest.
func ParseSort(s string) Sort {
	if strings.EqualFold(strings.TrimSpace(s), string(SortOldest)) {
		return SortOldest
	}
	return SortNewest
}

// JobFilter is the public listing query. Zero fields add no constraint.
type JobFilter struct {
	Keyword  string         // title OR description OR company, case-insensitive substring
	Location string         // case-insensitive substring
	Type     models.JobType // exact match
	Sort     Sort
}

// UserStore persists users and their saved-job lists.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile writes the profile and media fields of u.
	UpdateProfile(ctx context.Context, u *models.User) error
	SetRole(ctx context.Context, id string, role models.Role) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error

	// ToggleSavedJob removes jobID from the user's saved list when present
	// and appends it otherwise. Each direction is a single atomic write.
	ToggleSavedJob(ctx context.Context, userID, jobID string) (saved bool, err error)
	// SavedJobs resolves the saved list to jobs in saved order, dropping
	// references to jobs that no longer exist.
	SavedJobs(ctx context.Context, userID string) ([]models.Job, error)
}

// JobStore persists jobs and their applicant lists.
type JobStore interface {
	CreateJob(ctx context.Context, j *models.Job) error
	JobByID(ctx context.Context, id string) (*models.Job, error)
	// JobWithApplicants loads the job with every Applicant.User resolved.
	JobWithApplicants(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, f JobFilter) ([]models.Job, error)
	// JobsByOwner returns the owner's jobs, newest first, applicants resolved.
	JobsByOwner(ctx context.Context, ownerID string) ([]models.Job, error)
	// JobsByApplicant returns the jobs userID applied to, newest first.
	JobsByApplicant(ctx context.Context, userID string) ([]models.JobSummary, error)
	// AllJobs returns every job with Creator resolved, newest first.
	AllJobs(ctx context.Context) ([]models.Job, error)
	// UpdateJob writes the editable fields of j.
	UpdateJob(ctx context.Context, j *models.Job) error
	DeleteJob(ctx context.Context, id string) error

	// AddApplicant appends (userID, at) to the job's applicant list unless
	// userID is already there, in one atomic conditional write.
	// Returns ErrNotFound or ErrAlreadyApplied.
	AddApplicant(ctx context.Context, jobID, userID string, at time.Time) error
}

// StatsStore computes the admin dashboard counters.
type StatsStore interface {
	Stats(ctx context.Context, since time.Time) (models.Stats, error)
}

// Store is everything the services need.
type Store interface {
	UserStore
	JobStore
	StatsStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
