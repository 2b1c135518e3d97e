package adminusers

import (
	"context"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"fleetcheck/frontend/login"
	"fleetcheck/infrastructure/rbac"
	"fleetcheck/infrastructure/sqlite"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("role must be admin or workshop")
	ErrUsernameExists   = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
)

// LocalRoles are the roles a local account may hold. Operators always sign in
// with their employee number.
var LocalRoles = []string{rbac.RoleAdmin, rbac.RoleWorkshop}

func LoadUsers(ctx context.Context, db *sqlite.DB) ([]UserView, error) {
	users := make([]UserView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT id, username, role, strftime('%d/%m/%Y %H:%M', updated_at) AS updated_at
FROM users
ORDER BY username COLLATE NOCASE ASC`).Scan(ctx, &users)
	})
	return users, err
}

// CreateUser adds a local account. Usernames are unique ignoring case.
func CreateUser(ctx context.Context, db *sqlite.DB, username, password, role string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrUsernameRequired
	}
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	if !validRole(role) {
		return ErrInvalidRole
	}
	if _, found, err := findUsername(ctx, db, username); err != nil {
		return err
	} else if found {
		return ErrUsernameExists
	}
	return login.UpsertUserPasswordHash(ctx, db, username, role, password)
}

// ResetPassword replaces the password of an existing account and returns its
// username.
func ResetPassword(ctx context.Context, db *sqlite.DB, userID int64, password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrPasswordRequired
	}
	var user UserView
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT id, username, role FROM users WHERE id = ?`, userID).Scan(ctx, &user)
	})
	if err != nil || user.ID == 0 {
		return "", ErrUserNotFound
	}
	if err := login.UpsertUserPasswordHash(ctx, db, user.Username, user.Role, password); err != nil {
		return "", err
	}
	return user.Username, nil
}

func findUsername(ctx context.Context, db *sqlite.DB, username string) (string, bool, error) {
	var names []string
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT username FROM users WHERE lower(username) = lower(?)`, username).Scan(ctx, &names)
	})
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}
	return names[0], true, nil
}

func validRole(role string) bool {
	for _, r := range LocalRoles {
		if r == role {
			return true
		}
	}
	return false
}
