package mongostore

import (
	"regexp"
	"testing"
	"time"

	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestJobFilter(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if f := jobFilter(store.JobFilter{}); len(f) != 0 {
			t.Errorf("expected empty filter, got %v", f)
		}
	})

	t.Run("all fields", func(t *testing.T) {
		f := jobFilter(store.JobFilter{Keyword: "go", Location: "paris", Type: models.JobTypeRemote})
		if len(f) != 3 {
			t.Fatalf("expected 3 conditions, got %d", len(f))
		}
		if f[0].Key != "$or" {
			t.Errorf("first key = %q, want $or", f[0].Key)
		}
		or, ok := f[0].Value.(bson.A)
		if !ok || len(or) != 3 {
			t.Fatalf("$or should list title, description and company: %v", f[0].Value)
		}
		for i, field := range []string{"title", "description", "company"} {
			d := or[i].(bson.D)
			if d[0].Key != field {
				t.Errorf("$or[%d] = %q, want %q", i, d[0].Key, field)
			}
		}
		if f[1].Key != "location" || f[2].Key != "type" || f[2].Value != "Remote" {
			t.Errorf("unexpected filter %v", f)
		}
	})
}

func TestContainsCI_EscapesMeta(t *testing.T) {
	re := containsCI("c++ (senior).*")
	if re.Options != "i" {
		t.Errorf("options = %q", re.Options)
	}
	compiled := regexp.MustCompile("(?i)" + re.Pattern)
	if !compiled.MatchString("Senior C++ (Senior).* developer") {
		t.Error("literal text should match")
	}
	if compiled.MatchString("c++ (senior) anything") {
		t.Error("metacharacters must not be interpreted")
	}
}

func TestJobSort(t *testing.T) {
	if got := jobSort(store.SortOldest); got[0].Value != 1 {
		t.Errorf("oldest sort = %v", got)
	}
	if got := jobSort(store.SortNewest); got[0].Key != "createdAt" || got[0].Value != -1 {
		t.Errorf("newest sort = %v", got)
	}
}

func TestNotApplied(t *testing.T) {
	f := notApplied("job-1", "user-1")
	if f[0].Key != "_id" || f[0].Value != "job-1" {
		t.Errorf("filter should target the job: %v", f)
	}
	cond, ok := f[1].Value.(bson.D)
	if f[1].Key != "applicants.user" || !ok || cond[0].Key != "$ne" || cond[0].Value != "user-1" {
		t.Errorf("filter should exclude existing applicant: %v", f)
	}

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	push := applicantPush("user-1", at)
	entry := push[0].Value.(bson.D)[0].Value.(bson.D)
	if entry[0].Value != "user-1" || entry[1].Value != at {
		t.Errorf("push entry = %v", entry)
	}
}

func TestProfileSet_NilSkills(t *testing.T) {
	set := profileSet(&models.User{Name: "A"})[0].Value.(bson.D)
	for _, e := range set {
		if e.Key == "skills" {
			if s, ok := e.Value.([]string); !ok || s == nil {
				t.Errorf("skills should be an empty list, got %#v", e.Value)
			}
			return
		}
	}
	t.Error("skills not set")
}
