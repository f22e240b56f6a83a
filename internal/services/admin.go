package services

import (
	"context"
	"time"

	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"github.com/diewo77/jobboard/validation"
)

// AdminJob is a job with its creator resolved. CreatedBy is null when the
// creator was deleted.
type AdminJob struct {
	*models.Job
	CreatedBy *models.UserRef `json:"createdBy"`
}

type AdminService struct {
	store store.Store
	cache Invalidator
	now   Clock
}

func NewAdminService(st store.Store, cache Invalidator) *AdminService {
	if cache == nil {
		cache = noInvalidation{}
	}
	return &AdminService{store: st, cache: cache, now: localClock}
}

// Month boundaries follow the server's local calendar.
func localClock() time.Time { return time.Now() }

func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if !validation.ValidID(id) {
		return apperr.InvalidID("user id")
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return storeErr(err, "User not found")
	}
	s.cache.InvalidateUser(id)
	return nil
}

func (s *AdminService) Jobs(ctx context.Context) ([]AdminJob, error) {
	jobs, err := s.store.AllJobs(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch jobs", err)
	}
	out := make([]AdminJob, 0, len(jobs))
	for i := range jobs {
		aj := AdminJob{Job: &jobs[i]}
		if c := jobs[i].Creator; c != nil {
			ref := c.Ref()
			aj.CreatedBy = &ref
		}
		out = append(out, aj)
	}
	return out, nil
}

func (s *AdminService) DeleteJob(ctx context.Context, id string) error {
	if !validation.ValidID(id) {
		return apperr.InvalidID("job id")
	}
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return storeErr(err, "Job not found")
	}
	return nil
}

// Stats recomputes the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (models.Stats, error) {
	st, err := s.store.Stats(ctx, models.MonthStart(s.now()))
	if err != nil {
		return models.Stats{}, apperr.Internal("Failed to fetch stats", err)
	}
	return st, nil
}
