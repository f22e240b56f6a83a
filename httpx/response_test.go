package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON_WritesStatusAndBody(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]int{"total": 3})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"total":3}` {
		t.Errorf("body = %s", body)
	}
}

func TestJSON_NilPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, nil)
	if rr.Body.String() != "null" {
		t.Errorf("body = %q, want null", rr.Body.String())
	}
}

func TestFail_Shape(t *testing.T) {
	rr := httptest.NewRecorder()
	Fail(rr, http.StatusConflict, "conflict", "You have already applied to this job", nil)

	var got ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Error != "conflict" || got.Message != "You have already applied to this job" {
		t.Errorf("unexpected body %+v", got)
	}
	if strings.Contains(rr.Body.String(), "details") {
		t.Error("details should be omitted when nil")
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
		var v struct{ Email string }
		if err := DecodeJSON(httptest.NewRecorder(), req, &v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Email != "a@b.co" {
			t.Errorf("email = %q", v.Email)
		}
	})
	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var v struct{}
		if err := DecodeJSON(httptest.NewRecorder(), req, &v); !errors.Is(err, ErrEmptyBody) {
			t.Errorf("expected ErrEmptyBody, got %v", err)
		}
	})
	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		var v struct{}
		if err := DecodeJSON(httptest.NewRecorder(), req, &v); err == nil {
			t.Error("expected decode error")
		}
	})
}
