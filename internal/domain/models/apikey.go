// internal/domain/models/apikey.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxClientNameLen is the maximum length of an API key client name.
// The 51st character is rejected at input time on the client; the server
// enforces the same bound on save.
const MaxClientNameLen = 50

// APIKey represents one API key configuration as managed from the dashboard.
//
// Identifier is the opaque apiKeyIdentifier handed to integrators. It is
// empty until the first save, at which point the server generates it; the
// dashboard never edits it.
type APIKey struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Identifier string             `bson:"identifier" json:"apiKeyIdentifier"`

	ClientName   string `bson:"client_name" json:"clientName"`
	ClientNameCI string `bson:"client_name_ci" json:"-"` // folded for case-insensitive search and uniqueness

	// Independent security flags. Each is filtered tri-state from the
	// dashboard (-1 unset / 1 yes / 0 no).
	IsActive     bool `bson:"is_active" json:"isActive"`
	IPCheck      bool `bson:"ip_check" json:"ipCheck"`
	CountryCheck bool `bson:"country_check" json:"countryCheck"`
	RegionCheck  bool `bson:"region_check" json:"regionCheck"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
