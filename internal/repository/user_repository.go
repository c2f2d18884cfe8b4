package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/elearn-api/internal/models"
)

const userColumns = `id, username, email, password_hash, role, phone, is_superuser, active, last_login, created_at, updated_at`

// UserRepository provides database access for accounts, profiles, tokens and audit logs.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByLogin returns a user matching the username or, case-insensitively, the email.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR LOWER(email) = LOWER($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, login); err != nil {
		return nil, lookupError(err, "find user by login")
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, lookupError(err, "find user by id")
	}
	return &user, nil
}

// FindIdentity resolves the user together with its student and instructor records.
func (r *UserRepository) FindIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	const query = `SELECT u.id AS user_id, u.username, u.email, u.role, u.is_superuser, u.active, s.id AS student_id, i.id AS instructor_id
FROM users u
LEFT JOIN students s ON s.user_id = u.id
LEFT JOIN instructors i ON i.user_id = u.id
WHERE u.id = $1`
	var identity models.Identity
	if err := r.db.GetContext(ctx, &identity, query, userID); err != nil {
		return nil, lookupError(err, "resolve identity")
	}
	return &identity, nil
}

// Taken reports which of the username and email are already registered.
func (r *UserRepository) Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1) AS username_taken, EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($2)) AS email_taken`
	var out struct {
		UsernameTaken bool `db:"username_taken"`
		EmailTaken    bool `db:"email_taken"`
	}
	if err := r.db.GetContext(ctx, &out, query, username, email); err != nil {
		return false, false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return out.UsernameTaken, out.EmailTaken, nil
}

// CreateAccount inserts the user, its profile and the role record matching user.Role in one transaction.
func (r *UserRepository) CreateAccount(ctx context.Context, user *models.User, profile *models.Profile) (err error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt, user.UpdatedAt = now, now
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.UserID = user.ID
	profile.CreatedAt, profile.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin account transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const userQuery = `INSERT INTO users (id, username, email, password_hash, role, phone, is_superuser, active, created_at, updated_at) VALUES (:id, :username, :email, :password_hash, :role, :phone, :is_superuser, :active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, userQuery, user); err != nil {
		err = translate(err)
		return fmt.Errorf("create user: %w", err)
	}

	const profileQuery = `INSERT INTO profiles (id, user_id, phone, date_of_birth, address, created_at, updated_at) VALUES (:id, :user_id, :phone, :date_of_birth, :address, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, profileQuery, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	if err = insertRoleRecord(ctx, tx, user.ID, user.Role, now); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit account: %w", err)
	}
	return nil
}

// insertRoleRecord creates the student or instructor row for the role if it is missing.
func insertRoleRecord(ctx context.Context, tx *sqlx.Tx, userID string, role models.UserRole, now time.Time) error {
	var query string
	switch role {
	case models.RoleStudent:
		query = `INSERT INTO students (id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`
	case models.RoleInstructor:
		query = `INSERT INTO instructors (id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`
	default:
		return nil
	}
	if _, err := tx.ExecContext(ctx, query, uuid.NewString(), userID, now); err != nil {
		return fmt.Errorf("create %s record: %w", role, err)
	}
	return nil
}

// ChangeRole updates the user's role and creates the matching role record when needed.
func (r *UserRepository) ChangeRole(ctx context.Context, userID string, role models.UserRole) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin role transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`, userID, role, now)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = sql.ErrNoRows
		return err
	}
	if err = insertRoleRecord(ctx, tx, userID, role, now); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit role change: %w", err)
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// FindProfile returns the profile of a user.
func (r *UserRepository) FindProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const query = `SELECT id, user_id, phone, date_of_birth, address, created_at, updated_at FROM profiles WHERE user_id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, lookupError(err, "find profile")
	}
	return &profile, nil
}

// UpdateProfile stores the profile and, when syncPhone is set, mirrors the phone onto users.
func (r *UserRepository) UpdateProfile(ctx context.Context, profile *models.Profile, syncPhone bool) (err error) {
	profile.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const profileQuery = `UPDATE profiles SET phone = :phone, date_of_birth = :date_of_birth, address = :address, updated_at = :updated_at WHERE user_id = :user_id`
	if _, err = tx.NamedExecContext(ctx, profileQuery, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if syncPhone {
		if _, err = tx.ExecContext(ctx, `UPDATE users SET phone = $2, updated_at = $3 WHERE id = $1`, profile.UserID, profile.Phone, profile.UpdatedAt); err != nil {
			return fmt.Errorf("sync user phone: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent) VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		return nil, lookupError(err, "find refresh token")
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
