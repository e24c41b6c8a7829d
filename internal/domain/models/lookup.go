// internal/domain/models/lookup.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Lookup keys for the getFilters endpoints.
const (
	LookupSpeakUpType   = "speakup_type"
	LookupSpeakUpStatus = "speakup_status"
)

// LookupItem is one selectable option in a filter dropdown.
type LookupItem struct {
	ID    int    `bson:"id" json:"id"`
	Value string `bson:"value" json:"value"`
}

// Lookup is a named list of options (e.g. Speak Up types). Stored one
// document per key so getFilters is a single indexed read per list.
type Lookup struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Key   string             `bson:"key" json:"key"`
	Items []LookupItem       `bson:"items" json:"items"`
}

// Contains reports whether id is a valid selection in the lookup.
func (l *Lookup) Contains(id int) bool {
	for _, item := range l.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}
