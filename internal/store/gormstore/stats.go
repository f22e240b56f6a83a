package gormstore

import (
	"context"
	"time"

	"github.com/diewo77/jobboard/internal/models"
)

func (s *Store) Stats(ctx context.Context, since time.Time) (models.Stats, error) {
	var st models.Stats
	db := s.db.WithContext(ctx)
	since = since.UTC()

	counts := []struct {
		dst   *int64
		model any
		where string
	}{
		{&st.TotalUsers, &models.User{}, ""},
		{&st.TotalJobs, &models.Job{}, ""},
		{&st.TotalApplications, &models.Applicant{}, ""},
		{&st.NewUsersThisMonth, &models.User{}, "created_at >= ?"},
		{&st.JobsThisMonth, &models.Job{}, "created_at >= ?"},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, since)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return models.Stats{}, mapErr("stats", err)
		}
	}

	var byRole []struct {
		Role string
		N    int64
	}
	if err := db.Model(&models.User{}).Select("role, COUNT(*) AS n").Group("role").Scan(&byRole).Error; err != nil {
		return models.Stats{}, mapErr("stats by role", err)
	}
	for _, r := range byRole {
		switch models.Role(r.Role) {
		case models.RoleSeeker:
			st.Seekers = r.N
		case models.RoleEmployer:
			st.Employers = r.N
		case models.RoleAdmin:
			st.Admins = r.N
		}
	}
	return st, nil
}
