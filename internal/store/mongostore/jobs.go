package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var errContention = errors.New("too many concurrent updates")

func (s *Store) CreateJob(ctx context.Context, j *models.Job) error {
	j.Prepare(now())
	_, err := s.jobs.InsertOne(ctx, j)
	return mapErr("create job", err)
}

func (s *Store) JobByID(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	if err := s.jobs.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&j); err != nil {
		return nil, mapErr("job by id", err)
	}
	normalizeJob(&j)
	return &j, nil
}

func (s *Store) JobWithApplicants(ctx context.Context, id string) (*models.Job, error) {
	j, err := s.JobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs := []models.Job{*j}
	if err := s.resolve(ctx, jobs, true, true); err != nil {
		return nil, mapErr("job with applicants", err)
	}
	return &jobs[0], nil
}

func (s *Store) ListJobs(ctx context.Context, f store.JobFilter) ([]models.Job, error) {
	return s.findJobs(ctx, "list jobs", jobFilter(f), jobSort(f.Sort))
}

func (s *Store) JobsByOwner(ctx context.Context, ownerID string) ([]models.Job, error) {
	jobs, err := s.findJobs(ctx, "jobs by owner", bson.D{{Key: "createdBy", Value: ownerID}}, jobSort(store.SortNewest))
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, jobs, true, false); err != nil {
		return nil, mapErr("jobs by owner", err)
	}
	return jobs, nil
}

func (s *Store) JobsByApplicant(ctx context.Context, userID string) ([]models.JobSummary, error) {
	jobs, err := s.findJobs(ctx, "jobs by applicant",
		bson.D{{Key: "applicants.user", Value: userID}}, jobSort(store.SortNewest))
	if err != nil {
		return nil, err
	}
	out := make([]models.JobSummary, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].Summary()
	}
	return out, nil
}

func (s *Store) AllJobs(ctx context.Context) ([]models.Job, error) {
	jobs, err := s.findJobs(ctx, "all jobs", bson.D{}, jobSort(store.SortNewest))
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, jobs, false, true); err != nil {
		return nil, mapErr("all jobs", err)
	}
	return jobs, nil
}

func (s *Store) UpdateJob(ctx context.Context, j *models.Job) error {
	j.UpdatedAt = now()
	res, err := s.jobs.UpdateByID(ctx, j.ID, jobSet(j))
	if err != nil {
		return mapErr("update job", err)
	}
	if res.MatchedCount == 0 {
		return notFound("update job")
	}
	return nil
}

// DeleteJob removes the job and pulls it from every saved list.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	res, err := s.jobs.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return mapErr("delete job", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete job")
	}
	_, err = s.users.UpdateMany(ctx,
		bson.D{{Key: "savedJobs", Value: id}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "savedJobs", Value: id}}}},
	)
	return mapErr("delete job bookmarks", err)
}

// AddApplicant is a single conditional $push; a miss is then classified
// as a missing job or a duplicate application.
func (s *Store) AddApplicant(ctx context.Context, jobID, userID string, at time.Time) error {
	res, err := s.jobs.UpdateOne(ctx, notApplied(jobID, userID), applicantPush(userID, at.UTC()))
	if err != nil {
		return mapErr("add applicant", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.jobs.CountDocuments(ctx, bson.D{{Key: "_id", Value: jobID}})
	if err != nil {
		return mapErr("add applicant", err)
	}
	if n == 0 {
		return notFound("add applicant")
	}
	return store.ErrAlreadyApplied
}

func (s *Store) findJobs(ctx context.Context, op string, filter, sort bson.D) ([]models.Job, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := s.jobs.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(op, err)
	}
	jobs := []models.Job{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, mapErr(op, err)
	}
	for i := range jobs {
		normalizeJob(&jobs[i])
	}
	return jobs, nil
}

func (s *Store) jobsByIDs(ctx context.Context, ids []string) (map[string]models.Job, error) {
	jobs, err := s.findJobs(ctx, "jobs by ids", bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Job, len(jobs))
	for _, j := range jobs {
		out[j.ID] = j
	}
	return out, nil
}

// resolve attaches applicant users and/or creators with one users query.
func (s *Store) resolve(ctx context.Context, jobs []models.Job, applicants, creators bool) error {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, j := range jobs {
		if creators {
			add(j.CreatedBy)
		}
		if applicants {
			for _, a := range j.Applicants {
				add(a.UserID)
			}
		}
	}
	users, err := s.usersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range jobs {
		j := &jobs[i]
		if creators {
			j.Creator = users[j.CreatedBy]
		}
		if applicants {
			for k := range j.Applicants {
				j.Applicants[k].JobID = j.ID
				j.Applicants[k].User = users[j.Applicants[k].UserID]
			}
		}
	}
	return nil
}

func normalizeJob(j *models.Job) {
	if j.Applicants == nil {
		j.Applicants = []models.Applicant{}
	}
}
