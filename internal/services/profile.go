package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/media"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"github.com/diewo77/jobboard/validation"
)

// SkillList accepts either a JSON array or a comma separated string.
type SkillList []string

func (s *SkillList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = SkillList(cleanSkills(list))
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParseSkills(raw)
	return nil
}

// ParseSkills splits a comma separated skill list.
func ParseSkills(raw string) SkillList {
	return SkillList(cleanSkills(strings.Split(raw, ",")))
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Upload is a file attached to a profile update.
type Upload struct {
	Kind     media.Kind
	Filename string
	Body     io.Reader
}

// ProfileUpdate carries the fields present in the request. Nil pointers
// leave the stored value untouched.
type ProfileUpdate struct {
	Name        *string    `json:"name"`
	Bio         *string    `json:"bio"`
	Location    *string    `json:"location"`
	Skills      *SkillList `json:"skills"`
	Education   *string    `json:"education"`
	CompanyName *string    `json:"companyName"`
	Website     *string    `json:"website"`

	RemoveProfilePic bool `json:"removeProfilePic"`
	RemoveResume     bool `json:"removeResume"`

	Files []Upload `json:"-"`
}

// PublicProfile is what other users see of a profile.
type PublicProfile struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Bio         string      `json:"bio"`
	Location    string      `json:"location"`
	Skills      []string    `json:"skills"`
	Education   string      `json:"education"`
	CompanyName string      `json:"companyName"`
	Website     string      `json:"website"`
	ProfilePic  *string     `json:"profilePic"`
	Resume      *string     `json:"resume"`
	Role        models.Role `json:"role"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type ProfileService struct {
	users    store.UserStore
	uploader media.Uploader
	now      Clock
}

func NewProfileService(users store.UserStore, uploader media.Uploader) *ProfileService {
	if uploader == nil {
		uploader = media.Disabled{}
	}
	return &ProfileService{users: users, uploader: uploader, now: systemClock}
}

// Me returns the caller's own document.
func (s *ProfileService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

// Update applies p to the caller's profile. Removals run before uploads,
// so a request may replace a file in one go.
func (s *ProfileService) Update(ctx context.Context, userID string, p ProfileUpdate) (*models.User, error) {
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}

	v := validation.Violations{}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
		validation.Required("name", u.Name, v)
		validation.MaxLength("name", u.Name, 255, v)
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&u.Bio, p.Bio)
	assign(&u.Location, p.Location)
	assign(&u.Education, p.Education)
	assign(&u.CompanyName, p.CompanyName)
	assign(&u.Website, p.Website)
	validation.MaxLength("website", u.Website, 500, v)
	validation.MaxLength("education", u.Education, 500, v)
	if p.Skills != nil {
		u.Skills = []string(*p.Skills)
	}
	if !v.Empty() {
		return nil, apperr.Validation("", "Invalid profile data", v)
	}

	if p.RemoveProfilePic {
		u.ProfilePic = ""
	}
	if p.RemoveResume {
		u.Resume = ""
	}
	for _, f := range p.Files {
		url, err := s.uploader.Upload(ctx, f.Kind, f.Filename, f.Body)
		if err != nil {
			return nil, uploadErr(err)
		}
		switch f.Kind {
		case media.KindProfilePic:
			u.ProfilePic = url
		case media.KindResume:
			u.Resume = url
		}
	}

	u.UpdatedAt = s.now()
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

// Public returns another user's profile.
func (s *ProfileService) Public(ctx context.Context, id string) (*PublicProfile, error) {
	if !validation.ValidID(id) {
		return nil, apperr.InvalidID("user id")
	}
	u, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return &PublicProfile{
		Name:        u.Name,
		Email:       u.Email,
		Bio:         u.Bio,
		Location:    u.Location,
		Skills:      skills,
		Education:   u.Education,
		CompanyName: u.CompanyName,
		Website:     u.Website,
		ProfilePic:  optional(u.ProfilePic),
		Resume:      optional(u.Resume),
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func uploadErr(err error) error {
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return apperr.Validation("unsupported_file", "Only PDF, JPEG or PNG files are allowed", nil)
	case errors.Is(err, media.ErrDisabled):
		return apperr.Unavailable("uploads_disabled", "File uploads are not configured")
	}
	return apperr.Internal("Upload failed", err)
}
