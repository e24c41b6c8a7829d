// internal/app/features/apikeys/types.go
package apikeysfeature

import (
	"time"

	apikeystore "github.com/Sherifrax/speakup-sub001/internal/app/store/apikeys"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
)

// SearchFilters is the "search" half of a list request. Every flag is
// tri-state: -1 no filter, 1 yes, 0 no. The dashboard always sends all five
// fields; defaultFilters covers hand-written requests that omit one so a
// missing flag means "unset", not "false".
type SearchFilters struct {
	ClientName   string        `json:"clientName"`
	IsActive     listquery.Tri `json:"isActive"`
	IPCheck      listquery.Tri `json:"ipCheck"`
	CountryCheck listquery.Tri `json:"countryCheck"`
	RegionCheck  listquery.Tri `json:"regionCheck"`
}

func defaultFilters() SearchFilters {
	return SearchFilters{
		IsActive:     listquery.TriUnset,
		IPCheck:      listquery.TriUnset,
		CountryCheck: listquery.TriUnset,
		RegionCheck:  listquery.TriUnset,
	}
}

func (f SearchFilters) toStore() apikeystore.Filters {
	return apikeystore.Filters{
		SearchText:   f.ClientName,
		IsActive:     f.IsActive,
		IPCheck:      f.IPCheck,
		CountryCheck: f.CountryCheck,
		RegionCheck:  f.RegionCheck,
	}
}

// Record is one API key as the dashboard sees it. The raw identifier never
// leaves the service; rows carry the sealed encryptedData token instead.
type Record struct {
	EncryptedData string    `json:"encryptedData"`
	ClientName    string    `json:"clientName"`
	IsActive      bool      `json:"isActive"`
	IPCheck       bool      `json:"ipCheck"`
	CountryCheck  bool      `json:"countryCheck"`
	RegionCheck   bool      `json:"regionCheck"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SaveRequest is the full draft posted to save. EncryptedData is empty for
// a new key and the row's token for an existing one.
type SaveRequest struct {
	EncryptedData string `json:"encryptedData"`
	ClientName    string `json:"clientName"`
	IsActive      bool   `json:"isActive"`
	IPCheck       bool   `json:"ipCheck"`
	CountryCheck  bool   `json:"countryCheck"`
	RegionCheck   bool   `json:"regionCheck"`
}

// GetByIDRequest addresses a record by its sealed token.
type GetByIDRequest struct {
	EncryptedData string `json:"encryptedData"`
}

// FiltersResponse is the body of GET getFilters: the options for the
// tri-state flag dropdowns.
type FiltersResponse struct {
	FlagOptions []models.LookupItem `json:"flagOptions"`
}
