package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/diewo77/jobboard/gate"
	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/events"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/policy"
	"github.com/diewo77/jobboard/internal/store"
	"github.com/diewo77/jobboard/validation"
)

// JobQuery is the raw public listing query.
type JobQuery struct {
	Keyword  string
	Location string
	Type     string
	Sort     string
}

// JobInput is the body of a job creation.
type JobInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Salary      string `json:"salary"`
	Status      string `json:"status"`
}

// JobPatch carries the fields present in an update body.
type JobPatch struct {
	Title       *string `json:"title"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Salary      *string `json:"salary"`
	Status      *string `json:"status"`
}

// ApplicantView is an applicant with the user resolved.
type ApplicantView struct {
	User      models.UserRef `json:"user"`
	AppliedAt time.Time      `json:"appliedAt"`
}

// OwnedJob is a job as its owner sees it.
type OwnedJob struct {
	*models.Job
	Applicants []ApplicantView `json:"applicants"`
}

// Applicants is the employer's view of who applied.
type Applicants struct {
	JobTitle        string          `json:"jobTitle"`
	TotalApplicants int             `json:"totalApplicants"`
	Applicants      []ApplicantView `json:"applicants"`
}

type JobService struct {
	store  store.Store
	authz  Authorizer
	events Events
	now    Clock
}

func NewJobService(st store.Store, authz Authorizer, ev Events) *JobService {
	if ev == nil {
		ev = noEvents{}
	}
	return &JobService{store: st, authz: authz, events: ev, now: systemClock}
}

// List runs the public listing query.
func (s *JobService) List(ctx context.Context, q JobQuery) ([]models.Job, error) {
	f := store.JobFilter{
		Keyword:  strings.TrimSpace(q.Keyword),
		Location: strings.TrimSpace(q.Location),
		Sort:     store.ParseSort(q.Sort),
	}
	if t := strings.TrimSpace(q.Type); t != "" {
		typ, err := models.ParseJobType(t)
		if err != nil {
			return nil, apperr.Validation("", "Invalid job type", validation.Violations{"type": "not_allowed"})
		}
		f.Type = typ
	}
	jobs, err := s.store.ListJobs(ctx, f)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch jobs", err)
	}
	return jobs, nil
}

// Get returns one job.
func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	if !validation.ValidID(id) {
		return nil, apperr.InvalidID("job id")
	}
	j, err := s.store.JobByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Job not found")
	}
	return j, nil
}

// Create posts a job owned by userID and queues the confirmation email.
func (s *JobService) Create(ctx context.Context, userID string, in JobInput) (*models.Job, error) {
	j := &models.Job{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		Salary:      strings.TrimSpace(in.Salary),
		CreatedBy:   userID,
	}
	v := validation.Violations{}
	validation.Required("title", j.Title, v)
	validation.MaxLength("title", j.Title, 255, v)
	validation.Required("company", j.Company, v)
	validation.MaxLength("company", j.Company, 255, v)
	validation.Required("description", j.Description, v)
	var err error
	if j.Type, err = models.ParseJobType(strings.TrimSpace(in.Type)); err != nil {
		v["type"] = "not_allowed"
	}
	if j.Status, err = models.ParseJobStatus(strings.TrimSpace(in.Status)); err != nil {
		v["status"] = "not_allowed"
	}
	if !v.Empty() {
		return nil, apperr.Validation("", "Invalid job data", v)
	}

	employer, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Employer not found")
	}
	j.Prepare(s.now())
	if err := s.store.CreateJob(ctx, j); err != nil {
		return nil, apperr.Internal("Job creation failed", err)
	}

	s.events.Enqueue(events.RKJobCreated, events.JobCreated{
		JobID:         j.ID,
		Title:         j.Title,
		Company:       j.Company,
		Location:      j.Location,
		Type:          string(j.Type),
		Description:   j.Description,
		EmployerName:  employer.Name,
		EmployerEmail: employer.Email,
	})
	return j, nil
}

// Update applies the fields present in p. Only the owner (or an admin)
// may update.
func (s *JobService) Update(ctx context.Context, id string, p JobPatch) (*models.Job, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authzErr(s.authz.Authorize(ctx, gate.ActionUpdate, policy.ResourceJob, j)); err != nil {
		return nil, err
	}

	v := validation.Violations{}
	set := func(field string, dst *string, src *string, required bool) {
		if src == nil {
			return
		}
		val := strings.TrimSpace(*src)
		if required {
			validation.Required(field, val, v)
		}
		*dst = val
	}
	set("title", &j.Title, p.Title, true)
	set("company", &j.Company, p.Company, true)
	set("location", &j.Location, p.Location, false)
	set("description", &j.Description, p.Description, true)
	set("salary", &j.Salary, p.Salary, false)
	if p.Type != nil {
		if j.Type, err = models.ParseJobType(strings.TrimSpace(*p.Type)); err != nil {
			v["type"] = "not_allowed"
		}
	}
	if p.Status != nil {
		if j.Status, err = models.ParseJobStatus(strings.TrimSpace(*p.Status)); err != nil {
			v["status"] = "not_allowed"
		}
	}
	if !v.Empty() {
		return nil, apperr.Validation("", "Invalid job data", v)
	}

	j.UpdatedAt = s.now()
	if err := s.store.UpdateJob(ctx, j); err != nil {
		return nil, storeErr(err, "Job not found")
	}
	return j, nil
}

// Delete removes a job. Only the owner (or an admin) may delete.
func (s *JobService) Delete(ctx context.Context, id string) error {
	j, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authzErr(s.authz.Authorize(ctx, gate.ActionDelete, policy.ResourceJob, j)); err != nil {
		return err
	}
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return storeErr(err, "Job not found")
	}
	return nil
}

// Apply records userID as an applicant of jobID.
//
// Checks run in this order: id format, job exists, caller has a résumé,
// then the conditional insert. Nothing is written before the résumé check.
func (s *JobService) Apply(ctx context.Context, userID, jobID string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthenticated("Invalid token")
		}
		return apperr.Internal("load user", err)
	}
	if !u.HasResume() {
		return apperr.Validation("resume_required", "Please upload your resume before applying", nil)
	}

	at := s.now()
	if err := s.store.AddApplicant(ctx, job.ID, u.ID, at); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyApplied):
			return apperr.Conflict("You have already applied to this job")
		case errors.Is(err, store.ErrNotFound):
			return apperr.NotFound("Job not found")
		}
		return apperr.Internal("Failed to apply", err)
	}

	ev := events.ApplicationSubmitted{
		JobID:          job.ID,
		JobTitle:       job.Title,
		Company:        job.Company,
		ApplicantName:  u.Name,
		ApplicantEmail: u.Email,
		AppliedAt:      at,
	}
	if owner, err := s.store.UserByID(ctx, job.CreatedBy); err == nil {
		ev.EmployerName = owner.Name
		ev.EmployerEmail = owner.Email
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[notify] load employer of job %s: %v", job.ID, err)
	}
	s.events.Enqueue(events.RKApplicationSubmitted, ev)
	return nil
}

// Applicants lists who applied to jobID. 404 comes before 403.
func (s *JobService) Applicants(ctx context.Context, jobID string) (*Applicants, error) {
	if !validation.ValidID(jobID) {
		return nil, apperr.InvalidID("job id")
	}
	j, err := s.store.JobWithApplicants(ctx, jobID)
	if err != nil {
		return nil, storeErr(err, "Job not found")
	}
	if err := authzErr(s.authz.Authorize(ctx, policy.ActionApplicants, policy.ResourceJob, j)); err != nil {
		return nil, err
	}
	list := applicantViews(j.Applicants, false)
	return &Applicants{JobTitle: j.Title, TotalApplicants: len(list), Applicants: list}, nil
}

// MyApplications lists the jobs userID applied to.
func (s *JobService) MyApplications(ctx context.Context, userID string) ([]models.JobSummary, error) {
	jobs, err := s.store.JobsByApplicant(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch applied jobs", err)
	}
	if jobs == nil {
		jobs = []models.JobSummary{}
	}
	return jobs, nil
}

// OwnerJobs lists the caller's postings with applicants resolved.
func (s *JobService) OwnerJobs(ctx context.Context, userID string) ([]OwnedJob, error) {
	jobs, err := s.store.JobsByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Error getting jobs", err)
	}
	out := make([]OwnedJob, 0, len(jobs))
	for i := range jobs {
		out = append(out, OwnedJob{Job: &jobs[i], Applicants: applicantViews(jobs[i].Applicants, true)})
	}
	return out, nil
}

// applicantViews drops entries whose user no longer resolves.
func applicantViews(list []models.Applicant, withResume bool) []ApplicantView {
	out := make([]ApplicantView, 0, len(list))
	for _, a := range list {
		if a.User == nil {
			continue
		}
		ref := a.User.Ref()
		if withResume {
			ref.Resume = a.User.Resume
		}
		out = append(out, ApplicantView{User: ref, AppliedAt: a.AppliedAt})
	}
	return out
}
