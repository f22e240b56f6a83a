package handlers

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/diewo77/jobboard/auth"
	"github.com/diewo77/jobboard/httpx"
	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/media"
	"github.com/diewo77/jobboard/internal/services"
)

// formSlack covers the non-file parts of a multipart body.
const formSlack = 1 << 20

var errFileTooLarge = apperr.Validation("file_too_large", "Uploads are limited to 10 MB", nil)

type ProfileHandler struct {
	svc       *services.ProfileService
	maxUpload int64
}

func NewProfileHandler(svc *services.ProfileService, maxUpload int64) *ProfileHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &ProfileHandler{svc: svc, maxUpload: maxUpload}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	u, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Update serves PUT /api/profile/me as multipart/form-data or JSON.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var p services.ProfileUpdate
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formSlack)
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpx.Fail(w, http.StatusRequestEntityTooLarge, "file_too_large", "Uploads are limited to 10 MB", nil)
				return
			}
			httpx.Fail(w, http.StatusBadRequest, "invalid_form", "Malformed multipart body", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		var err error
		if p, err = h.fromForm(r.MultipartForm); err != nil {
			writeError(w, r, err)
			return
		}
		defer closeFiles(p.Files)
	} else if !decode(w, r, &p) {
		return
	}

	u, err := h.svc.Update(r.Context(), userID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		User    any    `json:"user"`
	}{"Profile updated", u})
}

func (h *ProfileHandler) fromForm(form *multipart.Form) (services.ProfileUpdate, error) {
	var p services.ProfileUpdate
	field := func(name string) *string {
		if vals, ok := form.Value[name]; ok && len(vals) > 0 {
			return &vals[0]
		}
		return nil
	}
	p.Name = field("name")
	p.Bio = field("bio")
	p.Location = field("location")
	p.Education = field("education")
	p.CompanyName = field("companyName")
	p.Website = field("website")
	if raw := field("skills"); raw != nil {
		skills := services.ParseSkills(*raw)
		p.Skills = &skills
	}
	p.RemoveProfilePic = isTrue(field("removeProfilePic"))
	p.RemoveResume = isTrue(field("removeResume"))

	for _, kind := range []media.Kind{media.KindProfilePic, media.KindResume} {
		headers := form.File[string(kind)]
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		if fh.Size > h.maxUpload {
			closeFiles(p.Files)
			return p, errFileTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			closeFiles(p.Files)
			return p, apperr.Internal("open upload", err)
		}
		p.Files = append(p.Files, services.Upload{Kind: kind, Filename: fh.Filename, Body: f})
	}
	return p, nil
}

func closeFiles(files []services.Upload) {
	for _, f := range files {
		if c, ok := f.Body.(multipart.File); ok {
			c.Close()
		}
	}
}

func isTrue(s *string) bool {
	return s != nil && strings.EqualFold(strings.TrimSpace(*s), "true")
}

// Public serves GET /api/profile/{id}.
func (h *ProfileHandler) Public(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Public(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, struct {
		Success bool                    `json:"success"`
		Data    *services.PublicProfile `json:"data"`
	}{true, p})
}
