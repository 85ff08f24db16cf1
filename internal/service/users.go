package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tenderlink/db"
	"tenderlink/internal/apperr"
	"tenderlink/models"
)

const minPasswordLength = 6

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

type LoginInput struct {
	Role     models.Role
	Email    string
	Password string
}

// AdminSeed describes the administrator created on first start.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a Buyer, Bidder or Evaluator. Administrators are only
// created through EnsureAdmin.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		fields["name"] = "is required"
	}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = "must be at least 6 characters"
	}
	switch in.Role {
	case models.RoleBuyer, models.RoleBidder, models.RoleEvaluator:
	case models.RoleAdmin:
		return nil, apperr.Forbidden("administrator accounts cannot be self-registered")
	default:
		fields["role"] = "must be one of Buyer, Bidder, Evaluator"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid signup data", fields)
	}

	user, err := s.createUser(ctx, name, email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Int("userID", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *Service) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, apperr.ValidationFields("invalid signup data", map[string]string{"email": "is already registered"})
		}
		return nil, s.fail("create user", err, "")
	}
	return user, nil
}

// Login checks credentials for the requested role. Any mismatch, including a
// role the account does not hold, is reported the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, apperr.ValidationFields("invalid login data", map[string]string{"role": "must be one of Buyer, Bidder, Evaluator, Admin"})
	}
	invalid := apperr.Unauthenticated("invalid credentials")

	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, invalid
		}
		return nil, s.fail("get user by email", err, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, invalid
	}
	if user.Role != in.Role {
		return nil, invalid
	}
	return user, nil
}

// GetUser returns the account behind a session.
func (s *Service) GetUser(ctx context.Context, caller models.Session) (*models.User, error) {
	if err := requireRole(caller, models.RoleBuyer, models.RoleBidder, models.RoleEvaluator, models.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, s.fail("get user", err, "user not found")
	}
	return user, nil
}

// EnsureAdmin creates the seed administrator unless an Admin already exists.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	count, err := s.store.CountUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, s.fail("count admins", err, "")
	}
	if count > 0 {
		return false, nil
	}
	email := normalizeEmail(seed.Email)
	if email == "" || len(seed.Password) < minPasswordLength {
		return false, apperr.Validation("admin seed needs an email and a password of at least 6 characters")
	}
	user, err := s.createUser(ctx, seed.Name, email, seed.Password, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	s.log.Info("seeded administrator", zap.Int("userID", user.ID), zap.String("email", user.Email))
	return true, nil
}
