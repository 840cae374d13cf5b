package types

import "time"

// Role is the account role stored in users.role
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// AuthMode selects between signing in and registering.
type AuthMode string

const (
	AuthModeLogin    AuthMode = "login"
	AuthModeRegister AuthMode = "register"
)

// Account mirrors a row of the users table
type Account struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
}

// MediaRecord mirrors a row of the videos table
type MediaRecord struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerUsername string    `json:"user_name"`
	FileName      string    `json:"file_name"`
	StoragePath   string    `json:"file_path"`
	PublicURL     *string   `json:"file_url"`
}

// URL returns the public URL or an empty string when none was recorded.
func (m MediaRecord) URL() string {
	if m.PublicURL == nil {
		return ""
	}
	return *m.PublicURL
}

// Identity is the authenticated (username, role) pair a session holds.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// CanSee reports whether a record is visible to this identity.
// Doctors see every record, patients only their own.
func (i Identity) CanSee(rec MediaRecord) bool {
	if i.Role == RoleDoctor {
		return true
	}
	return rec.OwnerUsername == i.Username
}

// NotificationKind is the severity of a user-facing notification.
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is an ephemeral user-facing message
type Notification struct {
	ID      uint64           `json:"id"`
	Message string           `json:"message"`
	Kind    NotificationKind `json:"type"`
}
