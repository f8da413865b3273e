package model

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	AuthProvider string    `json:"auth_provider,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) CreateUser(db *sql.DB) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.AuthProvider == "" {
		u.AuthProvider = "local"
	}

	query := `
	INSERT INTO users (username, email, password, auth_provider, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(u.Username, u.Email, u.Password, u.AuthProvider, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var authProvider sql.NullString
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &authProvider,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	user.AuthProvider = authProvider.String
	return &user, nil
}

func GetUserByID(db *sql.DB, id int64) (*User, error) {
	query := `
	SELECT id, username, email, password, auth_provider, created_at, updated_at
	FROM users
	WHERE id = ?`
	return scanUser(db.QueryRow(query, id))
}

func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	query := `
	SELECT id, username, email, password, auth_provider, created_at, updated_at
	FROM users
	WHERE username = ?`
	return scanUser(db.QueryRow(query, username))
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	query := `
	SELECT id, username, email, password, auth_provider, created_at, updated_at
	FROM users
	WHERE email = ?`
	return scanUser(db.QueryRow(query, email))
}

type Session struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Token            string    `json:"-"`
	RefreshToken     string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

func (s *Session) CreateSession(db *sql.DB) error {
	s.CreatedAt = time.Now()
	query := `
	INSERT INTO sessions (user_id, token, refresh_token, expires_at, refresh_expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	res, err := db.Exec(query, s.UserID, s.Token, s.RefreshToken, s.ExpiresAt, s.RefreshExpiresAt, s.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.RefreshToken, &s.ExpiresAt, &s.RefreshExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	query := `
	SELECT id, user_id, token, refresh_token, expires_at, refresh_expires_at, created_at
	FROM sessions
	WHERE token = ? AND expires_at > ?`
	return scanSession(db.QueryRow(query, token, time.Now()))
}

func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	query := `
	SELECT id, user_id, token, refresh_token, expires_at, refresh_expires_at, created_at
	FROM sessions
	WHERE refresh_token = ? AND refresh_expires_at > ?`
	return scanSession(db.QueryRow(query, refreshToken, time.Now()))
}

// UpdateSessionTokens rotates both tokens of an existing session in place.
func (s *Session) UpdateSessionTokens(db *sql.DB) error {
	query := `
	UPDATE sessions SET token = ?, refresh_token = ?, expires_at = ?, refresh_expires_at = ?
	WHERE id = ?`
	_, err := db.Exec(query, s.Token, s.RefreshToken, s.ExpiresAt, s.RefreshExpiresAt, s.ID)
	return err
}

func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func DeleteSessionsForUser(db *sql.DB, userID int64) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions whose refresh window has passed.
func DeleteExpiredSessions(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM sessions WHERE refresh_expires_at <= ?`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
