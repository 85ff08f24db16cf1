package db

import (
	"context"

	"tenderlink/models"
)

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING user_id, created_at`
	err := s.db.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role).
		Scan(&u.ID, &u.CreatedAt)
	return translate(err)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	query := `
        SELECT user_id, name, email, password_hash, role, created_at
        FROM users WHERE email = $1`
	if err := s.db.GetContext(ctx, u, query, email); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	u := &models.User{}
	query := `
        SELECT user_id, name, email, password_hash, role, created_at
        FROM users WHERE user_id = $1`
	if err := s.db.GetContext(ctx, u, query, id); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// CountUsersByRole is used to decide whether the admin account needs seeding.
func (s *Storage) CountUsersByRole(ctx context.Context, role models.Role) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM users WHERE role = $1`
	err := s.db.GetContext(ctx, &count, query, role)
	return count, err
}
