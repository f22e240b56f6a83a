package gormstore

import (
	"context"
	"time"

	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var jobColumns = []string{
	"title", "company", "location", "type", "description", "salary", "status", "updated_at",
}

func applicantOrder(db *gorm.DB) *gorm.DB {
	return db.Order("applied_at ASC, id ASC")
}

func (s *Store) CreateJob(ctx context.Context, j *models.Job) error {
	return mapErr("create job", s.db.WithContext(ctx).Omit(clause.Associations).Create(j).Error)
}

func (s *Store) JobByID(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	err := s.db.WithContext(ctx).Preload("Applicants", applicantOrder).First(&j, "id = ?", id).Error
	if err != nil {
		return nil, mapErr("job by id", err)
	}
	return &j, nil
}

func (s *Store) JobWithApplicants(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	err := s.db.WithContext(ctx).
		Preload("Applicants", applicantOrder).
		Preload("Applicants.User").
		Preload("Creator").
		First(&j, "id = ?", id).Error
	if err != nil {
		return nil, mapErr("job with applicants", err)
	}
	return &j, nil
}

func (s *Store) ListJobs(ctx context.Context, f store.JobFilter) ([]models.Job, error) {
	q := s.db.WithContext(ctx).Model(&models.Job{})
	if f.Keyword != "" {
		p := likePattern(f.Keyword)
		q = q.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\')`,
			p, p, p,
		)
	}
	if f.Location != "" {
		q = q.Where(`LOWER(location) LIKE ? ESCAPE '\'`, likePattern(f.Location))
	}
	if f.Type != "" {
		q = q.Where("type = ?", string(f.Type))
	}
	if f.Sort == store.SortOldest {
		q = q.Order("created_at ASC, id ASC")
	} else {
		q = q.Order("created_at DESC, id DESC")
	}

	var jobs []models.Job
	if err := q.Preload("Applicants", applicantOrder).Find(&jobs).Error; err != nil {
		return nil, mapErr("list jobs", err)
	}
	return jobs, nil
}

func (s *Store) JobsByOwner(ctx context.Context, ownerID string) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("created_at DESC, id DESC").
		Preload("Applicants", applicantOrder).
		Preload("Applicants.User").
		Find(&jobs).Error
	if err != nil {
		return nil, mapErr("jobs by owner", err)
	}
	return jobs, nil
}

func (s *Store) JobsByApplicant(ctx context.Context, userID string) ([]models.JobSummary, error) {
	var out []models.JobSummary
	err := s.db.WithContext(ctx).
		Table("jobs").
		Select("jobs.id, jobs.title, jobs.company, jobs.location, jobs.type, jobs.created_at").
		Joins("JOIN job_applicants ON job_applicants.job_id = jobs.id").
		Where("job_applicants.user_id = ?", userID).
		Order("jobs.created_at DESC, jobs.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, mapErr("jobs by applicant", err)
	}
	if out == nil {
		out = []models.JobSummary{}
	}
	return out, nil
}

func (s *Store) AllJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Preload("Creator").
		Preload("Applicants", applicantOrder).
		Find(&jobs).Error
	if err != nil {
		return nil, mapErr("all jobs", err)
	}
	return jobs, nil
}

func (s *Store) UpdateJob(ctx context.Context, j *models.Job) error {
	j.UpdatedAt = now()
	res := s.db.WithContext(ctx).Model(&models.Job{ID: j.ID}).Select(jobColumns).Updates(j)
	if res.Error != nil {
		return mapErr("update job", res.Error)
	}
	if res.RowsAffected == 0 {
		return mapErr("update job", gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteJob removes the job, its applicants and every bookmark of it.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.Applicant{}).Error; err != nil {
			return mapErr("delete job applicants", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.SavedJob{}).Error; err != nil {
			return mapErr("delete job bookmarks", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Job{})
		if res.Error != nil {
			return mapErr("delete job", res.Error)
		}
		if res.RowsAffected == 0 {
			return mapErr("delete job", gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// AddApplicant relies on idx_job_applicant: a concurrent duplicate insert
// is dropped by ON CONFLICT DO NOTHING and reported as ErrAlreadyApplied.
func (s *Store) AddApplicant(ctx context.Context, jobID, userID string, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Job{}).Where("id = ?", jobID).Count(&n).Error; err != nil {
			return mapErr("add applicant", err)
		}
		if n == 0 {
			return mapErr("add applicant", gorm.ErrRecordNotFound)
		}
		row := models.Applicant{JobID: jobID, UserID: userID, AppliedAt: at.UTC()}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return mapErr("add applicant", res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrAlreadyApplied
		}
		return nil
	})
}
