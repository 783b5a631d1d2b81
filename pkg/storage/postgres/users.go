package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/edgechat/edgechat/pkg/storage"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks
const uniqueViolation = "23505"

// UserStore implements storage.UserStore over PostgreSQL
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a PostgreSQL-backed user store
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (*storage.User, error) {
	user := &storage.User{Email: email, PasswordHash: passwordHash}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2)
		 RETURNING id, created_at`,
		email, passwordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, storage.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*storage.User, error) {
	return s.get(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		email)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*storage.User, error) {
	return s.get(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = $1`,
		id)
}

func (s *UserStore) get(ctx context.Context, query string, arg interface{}) (*storage.User, error) {
	user := &storage.User{}
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}
