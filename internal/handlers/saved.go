package handlers

import (
	"net/http"

	"github.com/diewo77/jobboard/auth"
	"github.com/diewo77/jobboard/httpx"
	"github.com/diewo77/jobboard/internal/services"
)

type SavedHandler struct {
	svc *services.SavedService
}

func NewSavedHandler(svc *services.SavedService) *SavedHandler {
	return &SavedHandler{svc: svc}
}

// Toggle serves POST /api/user/save-job/{jobId}.
func (h *SavedHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	res, err := h.svc.Toggle(r.Context(), userID, r.PathValue("jobId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// List serves GET /api/user/saved-jobs?page=&limit=.
func (h *SavedHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), userID, services.ParsePage(q.Get("page"), q.Get("limit")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}
