package figcms

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

const adminColumns = `id, email, password_hash, name, role, is_active, last_login,
	reset_token, reset_expiry, created_at, updated_at`

// CreateAdmin provisions a new administrator account. Email is stored
// lowercased; a duplicate fails with a ConflictError.
func (s *Store) CreateAdmin(email, passwordHash, name, role string) (AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = RoleAdmin
	}
	exists, err := s.adminEmailExists(email)
	if err != nil {
		return AdminUser{}, err
	}
	if exists {
		return AdminUser{}, &ConflictError{Msg: "Admin user with this email already exists"}
	}

	now := time.Now().UTC()
	u := AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = s.db.Exec(`INSERT INTO admins (id, email, password_hash, name, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, fmtTime(now), fmtTime(now))
	if err != nil {
		return AdminUser{}, err
	}
	return u, nil
}

// GetActiveAdminByEmail returns the active account for email.
func (s *Store) GetActiveAdminByEmail(email string) (AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE email = ? AND is_active = 1`, email)
	return scanAdmin(row)
}

// GetAdminByID returns an account regardless of active state.
func (s *Store) GetAdminByID(id string) (AdminUser, error) {
	row := s.db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	return scanAdmin(row)
}

// TouchLastLogin stamps a successful login.
func (s *Store) TouchLastLogin(id string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`UPDATE admins SET last_login = ?, updated_at = ? WHERE id = ?`,
		fmtTime(now), fmtTime(now), id)
	return err
}

// SetResetToken stores a password-reset token for an account, superseding
// any earlier open request.
func (s *Store) SetResetToken(id, token string, expiry time.Time) error {
	res, err := s.db.Exec(`UPDATE admins SET reset_token = ?, reset_expiry = ?, updated_at = ? WHERE id = ?`,
		token, fmtTime(expiry), fmtTime(time.Now()), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeResetToken replaces the password hash and clears the token in a
// single UPDATE, so a token can only ever be redeemed once. Expired,
// unknown, and already-consumed tokens all report ErrInvalidToken, as do
// tokens on deactivated accounts.
func (s *Store) ConsumeResetToken(token, newHash string, now time.Time) error {
	res, err := s.db.Exec(`UPDATE admins SET password_hash = ?, reset_token = NULL, reset_expiry = NULL, updated_at = ?
		WHERE reset_token = ? AND reset_expiry > ? AND is_active = 1`,
		newHash, fmtTime(now), token, fmtTime(now))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidToken
	}
	return nil
}

func (s *Store) adminEmailExists(email string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM admins WHERE email = ?`, email).Scan(&n)
	return n > 0, err
}

func scanAdmin(row rowScanner) (AdminUser, error) {
	var u AdminUser
	var isActive int
	var lastLogin, resetToken, resetExpiry sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &isActive,
		&lastLogin, &resetToken, &resetExpiry, &createdAt, &updatedAt); err != nil {
		return AdminUser{}, err
	}
	u.IsActive = isActive == 1
	u.LastLogin = parseTimePtr(lastLogin)
	u.ResetToken = resetToken.String
	u.ResetExpiry = parseTimePtr(resetExpiry)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, nil
}
