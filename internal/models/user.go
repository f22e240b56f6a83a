package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Seekers apply to and save jobs, employers
// post them, admins moderate the platform.
type User struct {
	ID       string `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name     string `gorm:"size:255;not null" json:"name" bson:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email" bson:"email"`
	Password string `gorm:"size:255;not null" json:"-" bson:"password"` // bcrypt hash
	Role     Role   `gorm:"size:20;not null;default:'seeker';index" json:"role" bson:"role"`

	Bio         string   `gorm:"type:text" json:"bio,omitempty" bson:"bio,omitempty"`
	Location    string   `gorm:"size:255" json:"location,omitempty" bson:"location,omitempty"`
	Skills      []string `gorm:"serializer:json" json:"skills" bson:"skills"`
	Education   string   `gorm:"size:500" json:"education,omitempty" bson:"education,omitempty"`
	CompanyName string   `gorm:"size:255" json:"companyName,omitempty" bson:"companyName,omitempty"`
	Website     string   `gorm:"size:500" json:"website,omitempty" bson:"website,omitempty"`

	ProfilePic string `gorm:"size:1024" json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	Resume     string `gorm:"size:1024" json:"resume,omitempty" bson:"resume,omitempty"`

	// SavedJobs is kept in the saved_jobs table by the SQL store and
	// filled on read; the document store embeds it.
	SavedJobs []string `gorm:"-" json:"savedJobs" bson:"savedJobs"`

	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// BeforeCreate assigns an id and normalises the email before insert.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.Prepare(time.Now().UTC())
	return nil
}

// Prepare fills the fields every store sets on insert.
func (u *User) Prepare(now time.Time) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleSeeker
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.SavedJobs == nil {
		u.SavedJobs = []string{}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
}

// HasResume reports whether a résumé has been uploaded.
func (u *User) HasResume() bool {
	return strings.TrimSpace(u.Resume) != ""
}

// Ref is the short form used when a user is embedded in another response.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRef is a resolved user reference.
type UserRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Resume string `json:"resume,omitempty"`
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
