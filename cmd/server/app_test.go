package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/jobboard/internal/config"
	"github.com/diewo77/jobboard/internal/db"
	"github.com/diewo77/jobboard/internal/events"
	"github.com/diewo77/jobboard/internal/media"
	"github.com/diewo77/jobboard/internal/testutil"
)

type memEvents struct {
	mu   sync.Mutex
	keys []string
}

func (m *memEvents) Enqueue(key string, _ any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return true
}

func (m *memEvents) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.keys {
		if k == key {
			n++
		}
	}
	return n
}

type memUploader struct{}

func (memUploader) Upload(_ context.Context, kind media.Kind, filename string, r io.Reader) (string, error) {
	if _, _, err := media.Sniff(r); err != nil {
		return "", err
	}
	return "https://cdn.example/" + kind.Folder() + "/" + filename, nil
}

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	events *memEvents
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := testutil.NewStore(t)
	if err := db.SeedAdmin(context.Background(), st, "admin@example.com", "adminpass"); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Server:  config.ServerConfig{AuthRateLimit: 100, CORSOrigins: []string{"http://localhost:5173"}},
		Auth:    config.AuthConfig{JWTSecret: "test-secret-with-enough-length", TokenTTL: time.Hour, RoleCacheTTL: time.Minute},
		Media:   config.MediaConfig{MaxUploadBytes: 1 << 20},
		Tracing: config.TracingConfig{ServiceName: "jobboard-test"},
	}
	ev := &memEvents{}
	srv := httptest.NewServer(NewApp(NewRouterConfig(cfg, st, ev, memUploader{})))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, events: ev}
}

func (ts *testServer) do(method, path, token string, body any) (int, map[string]any) {
	ts.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, ts.srv.URL+path, rdr)
	req.Header.Set("Content-Type", "application/json")
	return ts.send(req, token)
}

func (ts *testServer) send(req *http.Request, token string) (int, map[string]any) {
	ts.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			ts.t.Fatalf("decode %s: %v", raw, err)
		}
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []any
		_ = json.Unmarshal(raw, &list)
		out["items"] = list
	}
	return resp.StatusCode, out
}

func (ts *testServer) register(name, role string) (string, string) {
	ts.t.Helper()
	code, body := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": strings.ToLower(name) + "@example.com", "password": "secret1", "role": role,
	})
	if code != http.StatusCreated {
		ts.t.Fatalf("register %s: %d %v", name, code, body)
	}
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func (ts *testServer) uploadResume(token string) {
	ts.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("skills", "go, sql")
	fw, _ := mw.CreateFormFile("resume", "cv.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"))
	_ = mw.Close()
	req, _ := http.NewRequest(http.MethodPut, ts.srv.URL+"/api/profile/me", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, body := ts.send(req, token)
	if code != http.StatusOK {
		ts.t.Fatalf("upload resume: %d %v", code, body)
	}
	user := body["user"].(map[string]any)
	if user["resume"] != "https://cdn.example/resumes/cv.pdf" {
		ts.t.Fatalf("resume = %v", user["resume"])
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/health", "/healthz"} {
		code, body := ts.do(http.MethodGet, path, "", nil)
		if code != http.StatusOK || body["status"] != "ok" {
			t.Errorf("%s: %d %v", path, code, body)
		}
	}
}

func TestApplicationFlow(t *testing.T) {
	ts := newTestServer(t)
	empTok, _ := ts.register("Erin", "employer")
	otherTok, _ := ts.register("Oscar", "employer")
	seekTok, _ := ts.register("Sam", "")

	// Access control
	if code, body := ts.do(http.MethodPost, "/api/jobs", "", map[string]string{}); code != http.StatusUnauthorized || body["error"] != "unauthorized" {
		t.Fatalf("anonymous create: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodPost, "/api/jobs", "garbage", map[string]string{}); code != http.StatusUnauthorized {
		t.Fatalf("bad token create: %d", code)
	}
	if code, body := ts.do(http.MethodPost, "/api/jobs", seekTok, map[string]string{}); code != http.StatusForbidden || body["error"] != "forbidden" {
		t.Fatalf("seeker create: %d %v", code, body)
	}

	code, body := ts.do(http.MethodPost, "/api/jobs", empTok, map[string]string{
		"title": "Go developer", "company": "Acme", "location": "Lyon", "type": "Remote", "description": "Write Go",
	})
	if code != http.StatusCreated {
		t.Fatalf("create job: %d %v", code, body)
	}
	jobID := body["id"].(string)
	if ts.events.count(events.RKJobCreated) != 1 {
		t.Error("job.created not queued")
	}

	// Public listing and lookup
	if code, body := ts.do(http.MethodGet, "/api/jobs?type=Remote&keyword=go", "", nil); code != http.StatusOK || len(body["items"].([]any)) != 1 {
		t.Fatalf("list: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodGet, "/api/jobs?type=Gig", "", nil); code != http.StatusBadRequest {
		t.Fatalf("unknown type: %d", code)
	}
	if code, body := ts.do(http.MethodGet, "/api/jobs/not-a-uuid", "", nil); code != http.StatusBadRequest || body["error"] != "invalid_id" {
		t.Fatalf("bad id: %d %v", code, body)
	}

	// Résumé precondition
	code, body = ts.do(http.MethodPost, "/api/jobs/apply/"+jobID, seekTok, nil)
	if code != http.StatusBadRequest || body["error"] != "resume_required" {
		t.Fatalf("apply without resume: %d %v", code, body)
	}
	if ts.events.count(events.RKApplicationSubmitted) != 0 {
		t.Fatal("no event expected before a successful apply")
	}

	ts.uploadResume(seekTok)
	code, body = ts.do(http.MethodPost, "/api/jobs/apply/"+jobID, seekTok, nil)
	if code != http.StatusOK || body["message"] != "Job application submitted successfully" {
		t.Fatalf("apply: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodPost, "/api/jobs/apply/"+jobID, seekTok, nil); code != http.StatusConflict {
		t.Fatalf("duplicate apply: %d", code)
	}
	if n := ts.events.count(events.RKApplicationSubmitted); n != 1 {
		t.Errorf("application events = %d", n)
	}

	// Applicants
	code, body = ts.do(http.MethodGet, "/api/jobs/"+jobID+"/applicants", empTok, nil)
	if code != http.StatusOK || body["totalApplicants"].(float64) != 1 || body["jobTitle"] != "Go developer" {
		t.Fatalf("applicants: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodGet, "/api/jobs/"+jobID+"/applicants", otherTok, nil); code != http.StatusForbidden {
		t.Fatalf("non-owner applicants: %d", code)
	}
	if code, _ := ts.do(http.MethodGet, "/api/jobs/"+jobID+"/applicants", seekTok, nil); code != http.StatusForbidden {
		t.Fatalf("seeker applicants: %d", code)
	}

	// My applications and owner jobs
	code, body = ts.do(http.MethodGet, "/api/jobs/myApplications", seekTok, nil)
	if items := body["items"].([]any); code != http.StatusOK || len(items) != 1 || items[0].(map[string]any)["title"] != "Go developer" {
		t.Fatalf("my applications: %d %v", code, body)
	}
	code, body = ts.do(http.MethodGet, "/api/jobs/user", empTok, nil)
	if items := body["items"].([]any); code != http.StatusOK || len(items) != 1 {
		t.Fatalf("owner jobs: %d %v", code, body)
	} else {
		apps := items[0].(map[string]any)["applicants"].([]any)
		u := apps[0].(map[string]any)["user"].(map[string]any)
		if u["email"] != "sam@example.com" || u["resume"] == nil {
			t.Errorf("resolved applicant = %v", u)
		}
	}

	// Update and delete are owner-only
	if code, _ := ts.do(http.MethodPut, "/api/jobs/"+jobID, otherTok, map[string]string{"title": "Hijacked"}); code != http.StatusForbidden {
		t.Fatalf("non-owner update: %d", code)
	}
	code, body = ts.do(http.MethodPut, "/api/jobs/"+jobID, empTok, map[string]string{"status": "Closed"})
	if code != http.StatusOK || body["status"] != "Closed" || body["title"] != "Go developer" {
		t.Fatalf("update: %d %v", code, body)
	}
	if code, body := ts.do(http.MethodDelete, "/api/jobs/"+jobID, empTok, nil); code != http.StatusOK || body["message"] != "Job deleted successfully" {
		t.Fatalf("delete: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodGet, "/api/jobs/"+jobID, "", nil); code != http.StatusNotFound {
		t.Fatalf("deleted job: %d", code)
	}
}

func TestSavedJobsFlow(t *testing.T) {
	ts := newTestServer(t)
	empTok, _ := ts.register("Erin", "employer")
	seekTok, _ := ts.register("Sam", "seeker")

	var ids []string
	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"} {
		_, body := ts.do(http.MethodPost, "/api/jobs", empTok, map[string]string{
			"title": title, "company": "Acme", "description": "x",
		})
		ids = append(ids, body["id"].(string))
	}
	for _, id := range ids {
		code, body := ts.do(http.MethodPost, "/api/user/save-job/"+id, seekTok, nil)
		if code != http.StatusOK || body["saved"] != true {
			t.Fatalf("save: %d %v", code, body)
		}
	}

	code, body := ts.do(http.MethodGet, "/api/user/saved-jobs?page=2", seekTok, nil)
	if code != http.StatusOK {
		t.Fatalf("saved list: %d %v", code, body)
	}
	if body["total"].(float64) != 7 || body["totalPages"].(float64) != 2 || len(body["jobs"].([]any)) != 2 {
		t.Fatalf("page 2 = %v", body)
	}

	code, body = ts.do(http.MethodPost, "/api/user/save-job/"+ids[0], seekTok, nil)
	if code != http.StatusOK || body["saved"] != false || body["message"] != "Job removed from saved list" {
		t.Fatalf("unsave: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodPost, "/api/user/save-job/"+ids[0], empTok, nil); code != http.StatusForbidden {
		t.Fatalf("employer save: %d", code)
	}
}

func TestAdminFlow(t *testing.T) {
	ts := newTestServer(t)
	code, body := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ADMIN@example.com", "password": "adminpass"})
	if code != http.StatusOK {
		t.Fatalf("admin login: %d %v", code, body)
	}
	adminTok := body["token"].(string)
	empTok, empID := ts.register("Erin", "employer")

	if code, _ := ts.do(http.MethodGet, "/api/admin/stats", empTok, nil); code != http.StatusForbidden {
		t.Fatalf("employer stats: %d", code)
	}
	code, body = ts.do(http.MethodGet, "/api/admin/stats", adminTok, nil)
	if code != http.StatusOK || body["totalUsers"].(float64) != 2 || body["admins"].(float64) != 1 || body["employers"].(float64) != 1 {
		t.Fatalf("stats: %d %v", code, body)
	}

	code, body = ts.do(http.MethodGet, "/api/admin/users", adminTok, nil)
	if code != http.StatusOK || len(body["items"].([]any)) != 2 {
		t.Fatalf("users: %d %v", code, body)
	}
	for _, u := range body["items"].([]any) {
		if _, leaked := u.(map[string]any)["password"]; leaked {
			t.Fatal("password hash leaked")
		}
	}

	if code, body := ts.do(http.MethodDelete, "/api/admin/users/"+empID, adminTok, nil); code != http.StatusOK || body["message"] != "User deleted" {
		t.Fatalf("delete user: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodDelete, "/api/admin/users/"+empID, adminTok, nil); code != http.StatusNotFound {
		t.Fatalf("delete missing user: %d", code)
	}
	// The deleted user's token no longer authenticates.
	if code, _ := ts.do(http.MethodGet, "/api/profile/me", empTok, nil); code != http.StatusUnauthorized {
		t.Fatalf("deleted user profile: %d", code)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	tok, id := ts.register("Sam", "seeker")

	if code, _ := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "password": "secret1",
	}); code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", code)
	}
	if code, body := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "sam@example.com", "password": "nope"}); code != http.StatusUnauthorized || body["message"] != "Invalid credentials" {
		t.Fatalf("bad login: %d %v", code, body)
	}

	code, body := ts.do(http.MethodPatch, "/api/auth/update-role", tok, map[string]string{"role": "employer"})
	if code != http.StatusOK {
		t.Fatalf("update role: %d %v", code, body)
	}
	newTok := body["token"].(string)
	if code, _ := ts.do(http.MethodPost, "/api/jobs", newTok, map[string]string{
		"title": "Go developer", "company": "Acme", "description": "x",
	}); code != http.StatusCreated {
		t.Fatalf("create after role change: %d", code)
	}
	if code, _ := ts.do(http.MethodPatch, "/api/auth/update-role", tok, map[string]string{"role": "admin"}); code != http.StatusBadRequest {
		t.Fatalf("self-assign admin: %d", code)
	}

	code, body = ts.do(http.MethodGet, "/api/profile/"+id, newTok, nil)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("public profile: %d %v", code, body)
	}
	if code, _ := ts.do(http.MethodGet, "/api/profile/"+id, "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous public profile: %d", code)
	}
	if code, body := ts.do(http.MethodPost, "/api/auth/login", "", "not an object"); code != http.StatusBadRequest || body["error"] != "invalid_json" {
		t.Fatalf("bad body: %d %v", code, body)
	}
}
