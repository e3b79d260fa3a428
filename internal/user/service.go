package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
)

const minPasswordLen = 6

// TokenIssuer signs session tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID, role string) (string, error)
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
	admins map[string]struct{}
	log    *logger.Logger
}

// NewService builds the account service. Accounts registering with one of
// adminEmails get the admin role.
func NewService(repo Repository, tokens TokenIssuer, adminEmails []string, log *logger.Logger) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	return &Service{repo: repo, tokens: tokens, admins: admins, log: log.With("service", "UserService")}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func validEmail(e string) bool {
	addr, err := mail.ParseAddress(e)
	return err == nil && addr.Address == e
}

func (s *Service) Register(ctx context.Context, in RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, apperr.Validation("name is required")
	case !validEmail(email):
		return nil, apperr.Validation("a valid email is required")
	case len(in.Password) < minPasswordLen:
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := RoleUser
	if _, ok := s.admins[email]; ok {
		role = RoleAdmin
	}
	u := &User{ID: uuid.NewString(), Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			return nil, apperr.Wrap(apperr.KindConflict, err, "user already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", "user_id", u.ID, "role", u.Role)
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return s.session(u)
}

func (s *Service) session(u *User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: u}, nil
}

func (s *Service) Profile(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileRequest) (*User, error) {
	u := &User{ID: id, Name: strings.TrimSpace(in.Name)}
	if in.Email != "" {
		u.Email = normalizeEmail(in.Email)
		if !validEmail(u.Email) {
			return nil, apperr.Validation("a valid email is required")
		}
	}
	updatePassword := false
	if in.Password != "" {
		if len(in.Password) < minPasswordLen {
			return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
		}
		h, err := HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = h
		updatePassword = true
	}

	switch err := s.repo.Update(ctx, u, updatePassword); {
	case errors.Is(err, ErrNotFound):
		return nil, apperr.Wrap(apperr.KindNotFound, err, "user not found")
	case errors.Is(err, ErrAlreadyExist):
		return nil, apperr.Wrap(apperr.KindConflict, err, "email already in use")
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.Profile(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return apperr.NotFound("user not found")
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
