package gormstore

import (
	"context"

	"github.com/diewo77/jobboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var profileColumns = []string{
	"name", "bio", "location", "skills", "education",
	"company_name", "website", "profile_pic", "resume", "updated_at",
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return mapErr("create user", s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapErr("user by id", err)
	}
	if err := s.fillSaved(ctx, []*models.User{&u}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, mapErr("user by email", err)
	}
	if err := s.fillSaved(ctx, []*models.User{&u}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, u *models.User) error {
	u.UpdatedAt = now()
	if u.Skills == nil {
		u.Skills = []string{}
	}
	res := s.db.WithContext(ctx).Model(&models.User{ID: u.ID}).Select(profileColumns).Updates(u)
	if res.Error != nil {
		return mapErr("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return mapErr("update profile", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) SetRole(ctx context.Context, id string, role models.Role) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"role": string(role), "updated_at": now()})
	if res.Error != nil {
		return mapErr("set role", res.Error)
	}
	if res.RowsAffected == 0 {
		return mapErr("set role", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC, id").Find(&users).Error; err != nil {
		return nil, mapErr("list users", err)
	}
	ptrs := make([]*models.User, len(users))
	for i := range users {
		ptrs[i] = &users[i]
	}
	if err := s.fillSaved(ctx, ptrs); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user with their bookmarks and applications.
// Jobs they created are kept.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.SavedJob{}).Error; err != nil {
			return mapErr("delete user saved jobs", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Applicant{}).Error; err != nil {
			return mapErr("delete user applications", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return mapErr("delete user", res.Error)
		}
		if res.RowsAffected == 0 {
			return mapErr("delete user", gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// ToggleSavedJob deletes the bookmark if present, otherwise inserts it.
// Both statements are single writes guarded by the unique index.
func (s *Store) ToggleSavedJob(ctx context.Context, userID, jobID string) (bool, error) {
	saved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND job_id = ?", userID, jobID).Delete(&models.SavedJob{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		row := models.SavedJob{UserID: userID, JobID: jobID, SavedAt: now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, mapErr("toggle saved job", err)
	}
	return saved, nil
}

// SavedJobs returns the user's saved jobs in saved order, applicants
// included. Rows whose job is gone are skipped.
func (s *Store) SavedJobs(ctx context.Context, userID string) ([]models.Job, error) {
	var rows []models.SavedJob
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("saved_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, mapErr("saved jobs", err)
	}
	if len(rows) == 0 {
		return []models.Job{}, nil
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.JobID
	}
	var found []models.Job
	err = s.db.WithContext(ctx).
		Preload("Applicants", applicantOrder).
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, mapErr("saved jobs", err)
	}
	byID := make(map[string]models.Job, len(found))
	for _, j := range found {
		if j.Applicants == nil {
			j.Applicants = []models.Applicant{}
		}
		byID[j.ID] = j
	}
	jobs := make([]models.Job, 0, len(rows))
	for _, id := range ids {
		if j, ok := byID[id]; ok {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

// fillSaved loads the saved-job id lists of users in one query.
func (s *Store) fillSaved(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]string, len(users))
	byID := make(map[string]*models.User, len(users))
	for i, u := range users {
		ids[i] = u.ID
		byID[u.ID] = u
		u.SavedJobs = []string{}
	}
	var rows []models.SavedJob
	err := s.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("saved_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return mapErr("load saved jobs", err)
	}
	for _, r := range rows {
		if u := byID[r.UserID]; u != nil {
			u.SavedJobs = append(u.SavedJobs, r.JobID)
		}
	}
	return nil
}
