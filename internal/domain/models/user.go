// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that can sign in to the dashboard.
//
// Auth fields:
//   - LoginID: What the user types to identify themselves (stored lowercase)
//   - LoginIDCI: Case/diacritic-insensitive version for matching (folded)
//   - PasswordHash: bcrypt hash; never serialized
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"fullName"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped

	LoginID      string `bson:"login_id" json:"loginId"`
	LoginIDCI    string `bson:"login_id_ci" json:"-"`
	PasswordHash string `bson:"password_hash" json:"-"`

	Role   string `bson:"role" json:"role"`     // admin, reporter
	Status string `bson:"status" json:"status"` // active, disabled

	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}

// User roles. Admins manage API keys and work the Speak Up queue; reporters
// only file and track their own entries.
const (
	RoleAdmin    = "admin"
	RoleReporter = "reporter"
)

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleReporter
}

// CanSignIn reports whether the account may authenticate.
func (u *User) CanSignIn() bool {
	return u.Status == UserStatusActive
}
