package services

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"github.com/diewo77/jobboard/validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

// Page is a 1-based window over a list.
type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page and limit query values. Missing, unparsable or
// non-positive values fall back to the defaults; limit is capped.
func ParsePage(page, limit string) Page {
	p := Page{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n >= 1 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

// SavedJobs is one page of a saved list.
type SavedJobs struct {
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
	Jobs       []models.Job `json:"jobs"`
}

// ToggleResult tells which way a toggle went.
type ToggleResult struct {
	Message string `json:"message"`
	Saved   bool   `json:"saved"`
}

type SavedService struct {
	users store.UserStore
	jobs  store.JobStore
}

func NewSavedService(users store.UserStore, jobs store.JobStore) *SavedService {
	return &SavedService{users: users, jobs: jobs}
}

// Toggle saves jobID for userID, or unsaves it when already saved.
// Saving a job that does not exist is a 404; unsaving a stale id is not.
func (s *SavedService) Toggle(ctx context.Context, userID, jobID string) (*ToggleResult, error) {
	if !validation.ValidID(jobID) {
		return nil, apperr.InvalidID("job id")
	}
	if _, err := s.jobs.JobByID(ctx, jobID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Internal("load job", err)
		}
		u, err := s.users.UserByID(ctx, userID)
		if err != nil {
			return nil, storeErr(err, "User not found")
		}
		if !slices.Contains(u.SavedJobs, jobID) {
			return nil, apperr.NotFound("Job not found")
		}
	}

	saved, err := s.users.ToggleSavedJob(ctx, userID, jobID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if saved {
		return &ToggleResult{Message: "Job saved", Saved: true}, nil
	}
	return &ToggleResult{Message: "Job removed from saved list", Saved: false}, nil
}

// List resolves the whole saved list, then slices the requested page.
func (s *SavedService) List(ctx context.Context, userID string, p Page) (*SavedJobs, error) {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	all, err := s.users.SavedJobs(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	total := len(all)
	start := min((p.Page-1)*p.Limit, total)
	end := min(start+p.Limit, total)
	jobs := all[start:end]
	if jobs == nil {
		jobs = []models.Job{}
	}
	return &SavedJobs{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (total + p.Limit - 1) / p.Limit,
		Jobs:       jobs,
	}, nil
}
