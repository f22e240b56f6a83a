package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/jobboard/httpx"
	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/media"
	"github.com/diewo77/jobboard/validation"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) httpx.ErrorResponse {
	t.Helper()
	var body httpx.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperr.NotFound("Job not found"), http.StatusNotFound, "not_found"},
		{"forbidden", apperr.Forbidden("Access denied"), http.StatusForbidden, "forbidden"},
		{"conflict", apperr.Conflict("You have already applied to this job"), http.StatusConflict, "conflict"},
		{"invalid id", apperr.InvalidID("job id"), http.StatusBadRequest, "invalid_id"},
		{"resume", apperr.Validation("resume_required", "Please upload your resume before applying", nil), http.StatusBadRequest, "resume_required"},
		{"unavailable", apperr.Unavailable("uploads_disabled", "off"), http.StatusServiceUnavailable, "uploads_disabled"},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, httptest.NewRequest(http.MethodGet, "/api/jobs", nil), tt.err)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			body := decodeBody(t, rr)
			if body.Error != tt.code {
				t.Errorf("code = %q, want %q", body.Error, tt.code)
			}
			if tt.status == http.StatusInternalServerError && strings.Contains(body.Message, "connection") {
				t.Error("internal details leaked")
			}
		})
	}
}

func TestWriteError_ValidationDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	err := apperr.Validation("", "Invalid job data", validation.Violations{"title": "required"})
	writeError(rr, httptest.NewRequest(http.MethodPost, "/api/jobs", nil), err)
	body := decodeBody(t, rr)
	details, ok := body.Details.(map[string]any)
	if body.Error != "validation_failed" || !ok || details["title"] != "required" {
		t.Errorf("body = %+v", body)
	}
}

func TestDecode(t *testing.T) {
	var v struct{ Name string }
	for _, raw := range []string{"", "{", "[1,2]"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		if decode(rr, req, &v) {
			t.Errorf("%q: decode should fail", raw)
			continue
		}
		if body := decodeBody(t, rr); rr.Code != http.StatusBadRequest || body.Error != "invalid_json" {
			t.Errorf("%q: %d %+v", raw, rr.Code, body)
		}
	}
}

func TestProfileForm(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("bio", "Gopher")
	_ = mw.WriteField("skills", "go, sql")
	_ = mw.WriteField("removeProfilePic", "TRUE")
	fw, _ := mw.CreateFormFile("resume", "cv.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/api/profile/me", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	h := NewProfileHandler(nil, 1<<20)
	p, err := h.fromForm(req.MultipartForm)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFiles(p.Files)

	if p.Bio == nil || *p.Bio != "Gopher" || p.Name != nil {
		t.Errorf("fields = %+v", p)
	}
	if p.Skills == nil || len(*p.Skills) != 2 {
		t.Errorf("skills = %v", p.Skills)
	}
	if !p.RemoveProfilePic || p.RemoveResume {
		t.Errorf("flags = %v %v", p.RemoveProfilePic, p.RemoveResume)
	}
	if len(p.Files) != 1 || p.Files[0].Kind != media.KindResume || p.Files[0].Filename != "cv.pdf" {
		t.Errorf("files = %+v", p.Files)
	}

	small := NewProfileHandler(nil, 4)
	if _, err := small.fromForm(req.MultipartForm); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("oversized file: %v", err)
	}
}
