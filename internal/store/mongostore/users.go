package mongostore

import (
	"context"

	"github.com/diewo77/jobboard/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Prepare(now())
	_, err := s.users.InsertOne(ctx, u)
	return mapErr("create user", err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "user by id", bson.D{{Key: "_id", Value: id}})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "user by email", bson.D{{Key: "email", Value: models.NormalizeEmail(email)}})
}

func (s *Store) findUser(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapErr(op, err)
	}
	normalizeUser(&u)
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, u *models.User) error {
	u.UpdatedAt = now()
	res, err := s.users.UpdateByID(ctx, u.ID, profileSet(u))
	if err != nil {
		return mapErr("update profile", err)
	}
	if res.MatchedCount == 0 {
		return notFound("update profile")
	}
	return nil
}

func (s *Store) SetRole(ctx context.Context, id string, role models.Role) error {
	res, err := s.users.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "role", Value: string(role)},
		{Key: "updatedAt", Value: now()},
	}}})
	if err != nil {
		return mapErr("set role", err)
	}
	if res.MatchedCount == 0 {
		return notFound("set role")
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapErr("list users", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, mapErr("list users", err)
	}
	for i := range users {
		normalizeUser(&users[i])
	}
	return users, nil
}

// DeleteUser removes the user and pulls them from every applicant list.
// Jobs they created are kept.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return mapErr("delete user", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete user")
	}
	_, err = s.jobs.UpdateMany(ctx,
		bson.D{{Key: "applicants.user", Value: id}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "applicants", Value: bson.D{{Key: "user", Value: id}}}}}},
	)
	return mapErr("delete user applications", err)
}

// ToggleSavedJob issues a conditional $pull, then a conditional $push. A
// concurrent toggle can make both miss; the loop then re-reads membership.
func (s *Store) ToggleSavedJob(ctx context.Context, userID, jobID string) (bool, error) {
	for range 3 {
		res, err := s.users.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: userID}, {Key: "savedJobs", Value: jobID}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "savedJobs", Value: jobID}}}},
		)
		if err != nil {
			return false, mapErr("unsave job", err)
		}
		if res.MatchedCount > 0 {
			return false, nil
		}
		res, err = s.users.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: userID}, {Key: "savedJobs", Value: bson.D{{Key: "$ne", Value: jobID}}}},
			bson.D{{Key: "$push", Value: bson.D{{Key: "savedJobs", Value: jobID}}}},
		)
		if err != nil {
			return false, mapErr("save job", err)
		}
		if res.MatchedCount > 0 {
			return true, nil
		}
		n, err := s.users.CountDocuments(ctx, bson.D{{Key: "_id", Value: userID}})
		if err != nil {
			return false, mapErr("toggle saved job", err)
		}
		if n == 0 {
			return false, notFound("toggle saved job")
		}
	}
	return false, mapErr("toggle saved job", errContention)
}

func (s *Store) SavedJobs(ctx context.Context, userID string) ([]models.Job, error) {
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.SavedJobs) == 0 {
		return []models.Job{}, nil
	}
	byID, err := s.jobsByIDs(ctx, u.SavedJobs)
	if err != nil {
		return nil, mapErr("saved jobs", err)
	}
	jobs := make([]models.Job, 0, len(u.SavedJobs))
	for _, id := range u.SavedJobs {
		if j, ok := byID[id]; ok {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

// usersByIDs resolves ids in one query.
func (s *Store) usersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		normalizeUser(&users[i])
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func normalizeUser(u *models.User) {
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.SavedJobs == nil {
		u.SavedJobs = []string{}
	}
}
