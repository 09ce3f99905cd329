package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

// ErrNoAdminSession is returned for unknown or expired session IDs.
var ErrNoAdminSession = errors.New("no valid admin session")

// AdminSessionTTL bounds the life of an organizer session.
const AdminSessionTTL = 7 * 24 * time.Hour

// AdminSession identifies the organizer behind a cookie.
type AdminSession struct {
	AdminID string
	Email   string
}

type adminDoc struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

type adminSessionDoc struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"adminId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminStore keeps organizer accounts and their sessions in SQLite,
// whichever backend holds the game itself.
type AdminStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureAdmin creates the organizer account when no admin exists yet.
func (s *AdminStore) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}
	admin := adminDoc{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
	}
	data, err := json.Marshal(admin)
	if err != nil {
		return false, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, data) VALUES (?, ?, jsonb(?))`,
		admin.ID, admin.Email, string(data),
	)
	if err != nil {
		return false, grandjeu.PersistenceError("creating admin", err)
	}
	return true, nil
}

// Authenticate checks an organizer's credentials.
func (s *AdminStore) Authenticate(ctx context.Context, email, password string) (AdminSession, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM admins WHERE email = ?`, email,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminSession{}, grandjeu.ErrInvalidCredentials
	}
	if err != nil {
		return AdminSession{}, err
	}
	var a adminDoc
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return AdminSession{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return AdminSession{}, grandjeu.ErrInvalidCredentials
	}
	return AdminSession{AdminID: a.ID, Email: a.Email}, nil
}

func (s *AdminStore) CreateSession(ctx context.Context, admin AdminSession) (string, error) {
	sessionID := uuid.NewString()
	data, err := json.Marshal(adminSessionDoc{
		ID:        sessionID,
		AdminID:   admin.AdminID,
		Email:     admin.Email,
		ExpiresAt: s.now().Add(AdminSessionTTL),
	})
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO admin_sessions (id, data) VALUES (?, jsonb(?))`,
		sessionID, string(data),
	)
	if err != nil {
		return "", grandjeu.PersistenceError("creating admin session", err)
	}
	return sessionID, nil
}

func (s *AdminStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE id = ?`, sessionID,
	)
	return err
}

func (s *AdminStore) Session(ctx context.Context, sessionID string) (AdminSession, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM admin_sessions WHERE id = ?`, sessionID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminSession{}, ErrNoAdminSession
	}
	if err != nil {
		return AdminSession{}, err
	}
	var doc adminSessionDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return AdminSession{}, err
	}
	if !doc.ExpiresAt.IsZero() && s.now().After(doc.ExpiresAt) {
		s.DeleteSession(ctx, sessionID)
		return AdminSession{}, ErrNoAdminSession
	}
	return AdminSession{AdminID: doc.AdminID, Email: doc.Email}, nil
}
