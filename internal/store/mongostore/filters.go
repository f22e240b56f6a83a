package mongostore

import (
	"regexp"

	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// containsCI matches s as a literal, case-insensitive substring.
func containsCI(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// jobFilter builds the listing query. Conditions are ANDed; the keyword
// matches title, description or company.
func jobFilter(f store.JobFilter) bson.D {
	filter := bson.D{}
	if f.Keyword != "" {
		re := containsCI(f.Keyword)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "company", Value: re}},
		}})
	}
	if f.Location != "" {
		filter = append(filter, bson.E{Key: "location", Value: containsCI(f.Location)})
	}
	if f.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: string(f.Type)})
	}
	return filter
}

// jobSort orders by creation time with the id as tie-breaker.
func jobSort(s store.Sort) bson.D {
	dir := -1
	if s == store.SortOldest {
		dir = 1
	}
	return bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: dir}}
}

// notApplied selects the job only while userID is absent from its
// applicant list, which makes the $push of AddApplicant conditional.
func notApplied(jobID, userID string) bson.D {
	return bson.D{
		{Key: "_id", Value: jobID},
		{Key: "applicants.user", Value: bson.D{{Key: "$ne", Value: userID}}},
	}
}

func applicantPush(userID string, at any) bson.D {
	return bson.D{{Key: "$push", Value: bson.D{{Key: "applicants", Value: bson.D{
		{Key: "user", Value: userID},
		{Key: "appliedAt", Value: at},
	}}}}}
}

func profileSet(u *models.User) bson.D {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: u.Name},
		{Key: "bio", Value: u.Bio},
		{Key: "location", Value: u.Location},
		{Key: "skills", Value: skills},
		{Key: "education", Value: u.Education},
		{Key: "companyName", Value: u.CompanyName},
		{Key: "website", Value: u.Website},
		{Key: "profilePic", Value: u.ProfilePic},
		{Key: "resume", Value: u.Resume},
		{Key: "updatedAt", Value: u.UpdatedAt},
	}}}
}

func jobSet(j *models.Job) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: j.Title},
		{Key: "company", Value: j.Company},
		{Key: "location", Value: j.Location},
		{Key: "type", Value: string(j.Type)},
		{Key: "description", Value: j.Description},
		{Key: "salary", Value: j.Salary},
		{Key: "status", Value: string(j.Status)},
		{Key: "updatedAt", Value: j.UpdatedAt},
	}}}
}
