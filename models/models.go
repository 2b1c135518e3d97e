package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a local administrator account for the installation.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Session is used by middleware and auth handlers. Employee sessions carry the
// employee number from the directory; local admin sessions carry UserID.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                string         `bun:"id,pk"`
	UserID            int64          `bun:"user_id,nullzero"`
	EmployeeNumber    string         `bun:"employee_number,notnull,default:''"`
	DisplayName       string         `bun:"display_name,notnull"`
	Role              string         `bun:"role,notnull"`
	UserRoles         []string       `bun:"-"`
	ScreenPermissions map[string]int `bun:"-"`
	Language          string         `bun:"-"`
	ExpiresAt         time.Time      `bun:"expires_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Valid reports whether the stored row identifies somebody.
func (s Session) Valid() bool {
	if s.Role == "" {
		return false
	}
	return s.EmployeeNumber != "" || s.UserID > 0
}

// ActorKey identifies the session owner in ledger and audit rows.
func (s Session) ActorKey() string {
	if s.EmployeeNumber != "" {
		return "employee:" + s.EmployeeNumber
	}
	if s.UserID > 0 {
		return "admin:" + s.DisplayName
	}
	return "system"
}

// LedgerEntry is one member of a named acknowledgment set.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:ledger_entries,alias:le"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Key       string    `bun:"ledger_key,notnull"`
	EntryID   string    `bun:"entry_id,notnull"`
	CreatedBy string    `bun:"created_by,notnull,default:''"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Actor      string    `bun:"actor,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// UploadRun records one reference spreadsheet upload attempt.
type UploadRun struct {
	bun.BaseModel `bun:"table:upload_runs,alias:ur"`

	ID        string    `bun:"id,pk"`
	Actor     string    `bun:"actor,notnull"`
	Kind      string    `bun:"kind,notnull"`
	FileName  string    `bun:"file_name,notnull"`
	RowCount  int       `bun:"row_count,notnull,default:0"`
	Status    string    `bun:"status,notnull"`
	Message   string    `bun:"message,notnull,default:''"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
