// internal/app/features/speakup/types.go
package speakupfeature

import (
	"time"

	speakupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/speakup"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
)

// SearchFilters is the "search" half of a Speak Up list request. TypeID uses
// the -1 unselected sentinel, an empty Status means "all", and IsAnonymous
// is tri-state like every boolean filter.
type SearchFilters struct {
	SearchText  string        `json:"searchText"`
	TypeID      int           `json:"typeId"`
	Status      string        `json:"status"`
	IsAnonymous listquery.Tri `json:"isAnonymous"`
}

func defaultFilters() SearchFilters {
	return SearchFilters{
		TypeID:      models.TypeUnselected,
		IsAnonymous: listquery.TriUnset,
	}
}

func (f SearchFilters) toStore() speakupstore.Filters {
	return speakupstore.Filters{
		SearchText:  f.SearchText,
		TypeID:      f.TypeID,
		Status:      f.Status,
		IsAnonymous: f.IsAnonymous,
	}
}

// AttachmentRef is the wire shape of an attachment: what upload returns and
// what save echoes back. The storage path stays server-side and is derived
// from the id, never taken from the client.
type AttachmentRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Record is one Speak Up entry as the dashboard sees it: the numeric id it
// displays and keys row expansion on, the sealed token it addresses the
// record by, and the capability flags gating which actions the form offers.
type Record struct {
	ID            int64               `json:"id"`
	EncryptedData string              `json:"encryptedData"`
	TypeID        int                 `json:"typeId"`
	Message       string              `json:"message"`
	IsAnonymous   bool                `json:"isAnonymous"`
	Attachment    *AttachmentRef      `json:"attachment,omitempty"`
	Status        string              `json:"status"`
	Capabilities  models.Capabilities `json:"capabilities"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	SubmittedAt   *time.Time          `json:"submittedAt,omitempty"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty"`
}

// SaveRequest is the full draft plus the action discriminator.
// EncryptedData is empty for a never-saved entry.
type SaveRequest struct {
	EncryptedData string         `json:"encryptedData"`
	TypeID        int            `json:"typeId"`
	Message       string         `json:"message"`
	IsAnonymous   bool           `json:"isAnonymous"`
	Attachment    *AttachmentRef `json:"attachment,omitempty"`
	ActionBy      string         `json:"actionBy"`
}

// GetByIDRequest addresses a record by its sealed token.
type GetByIDRequest struct {
	EncryptedData string `json:"encryptedData"`
}

// FiltersResponse is the body of GET getFilters: the type and status
// dropdown options.
type FiltersResponse struct {
	Types    []models.LookupItem `json:"types"`
	Statuses []models.LookupItem `json:"statuses"`
}
