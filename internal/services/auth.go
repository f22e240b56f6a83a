package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/jobboard/auth"
	"github.com/diewo77/jobboard/internal/apperr"
	"github.com/diewo77/jobboard/internal/models"
	"github.com/diewo77/jobboard/internal/store"
	"github.com/diewo77/jobboard/validation"
)

const minPasswordLen = 6

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Session is returned by register, login and role updates.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  store.UserStore
	issuer *auth.Issuer
	cache  Invalidator
}

func NewAuthService(users store.UserStore, issuer *auth.Issuer, cache Invalidator) *AuthService {
	if cache == nil {
		cache = noInvalidation{}
	}
	return &AuthService{users: users, issuer: issuer, cache: cache}
}

// Register creates a seeker or employer account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)

	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLength("name", in.Name, 255, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.MinLength("password", in.Password, minPasswordLen, v)
	role, err := models.ParseRole(strings.TrimSpace(in.Role))
	if err != nil || !role.SelfAssignable() {
		v["role"] = "not_allowed"
	}
	if !v.Empty() {
		return nil, apperr.Validation("", "Invalid registration data", v)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u := &models.User{Name: in.Name, Email: in.Email, Password: hash, Role: role}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Internal("create user", err)
	}
	return s.session(u)
}

// Login checks credentials. Unknown email and wrong password look the same.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.UserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthenticated("Invalid credentials")
		}
		return nil, apperr.Internal("load user", err)
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	return s.session(u)
}

// UpdateRole switches the caller between seeker and employer and issues a
// token carrying the new role.
func (s *AuthService) UpdateRole(ctx context.Context, userID, role string) (*Session, error) {
	r, err := models.ParseRole(strings.TrimSpace(role))
	if err != nil || strings.TrimSpace(role) == "" || !r.SelfAssignable() {
		return nil, apperr.Validation("", "Invalid role", validation.Violations{"role": "not_allowed"})
	}
	if err := s.users.SetRole(ctx, userID, r); err != nil {
		return nil, storeErr(err, "User not found")
	}
	s.cache.InvalidateUser(userID)

	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return s.session(u)
}

func (s *AuthService) session(u *models.User) (*Session, error) {
	tok, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &Session{Token: tok, User: u}, nil
}
