package mongostore

import (
	"context"
	"time"

	"github.com/diewo77/jobboard/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// applicationsPipeline sums the lengths of every applicant list.
var applicationsPipeline = bson.A{
	bson.D{{Key: "$project", Value: bson.D{{Key: "n", Value: bson.D{{Key: "$size", Value: bson.D{
		{Key: "$ifNull", Value: bson.A{"$applicants", bson.A{}}},
	}}}}}}},
	bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: bson.D{{Key: "$sum", Value: "$n"}}}}}},
}

var rolesPipeline = bson.A{
	bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$role"}, {Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
}

func (s *Store) Stats(ctx context.Context, since time.Time) (models.Stats, error) {
	var st models.Stats
	var err error
	since = since.UTC()
	sinceFilter := bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}}}

	if st.TotalUsers, err = s.users.CountDocuments(ctx, bson.D{}); err != nil {
		return st, mapErr("stats users", err)
	}
	if st.TotalJobs, err = s.jobs.CountDocuments(ctx, bson.D{}); err != nil {
		return st, mapErr("stats jobs", err)
	}
	if st.NewUsersThisMonth, err = s.users.CountDocuments(ctx, sinceFilter); err != nil {
		return st, mapErr("stats new users", err)
	}
	if st.JobsThisMonth, err = s.jobs.CountDocuments(ctx, sinceFilter); err != nil {
		return st, mapErr("stats new jobs", err)
	}

	cur, err := s.jobs.Aggregate(ctx, applicationsPipeline)
	if err != nil {
		return st, mapErr("stats applications", err)
	}
	var totals []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &totals); err != nil {
		return st, mapErr("stats applications", err)
	}
	if len(totals) > 0 {
		st.TotalApplications = totals[0].Total
	}

	cur, err = s.users.Aggregate(ctx, rolesPipeline)
	if err != nil {
		return st, mapErr("stats roles", err)
	}
	var byRole []struct {
		Role string `bson:"_id"`
		N    int64  `bson:"n"`
	}
	if err := cur.All(ctx, &byRole); err != nil {
		return st, mapErr("stats roles", err)
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
