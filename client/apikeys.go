package client

import (
	"context"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/listquery"
)

// MaxClientNameLen mirrors the server-side bound on API key client names.
const MaxClientNameLen = 50

// APIKeyFilters is the search half of an API key list request. Every flag
// is tri-state; -1 means no filter.
type APIKeyFilters struct {
	ClientName   string        `json:"clientName"`
	IsActive     listquery.Tri `json:"isActive"`
	IPCheck      listquery.Tri `json:"ipCheck"`
	CountryCheck listquery.Tri `json:"countryCheck"`
	RegionCheck  listquery.Tri `json:"regionCheck"`
}

// DefaultAPIKeyFilters returns the unfiltered state.
func DefaultAPIKeyFilters() APIKeyFilters {
	return APIKeyFilters{
		IsActive:     listquery.TriUnset,
		IPCheck:      listquery.TriUnset,
		CountryCheck: listquery.TriUnset,
		RegionCheck:  listquery.TriUnset,
	}
}

// APIKeyRecord is one API key row. The record identifier is carried only as
// the sealed encryptedData token.
type APIKeyRecord struct {
	EncryptedData string    `json:"encryptedData"`
	ClientName    string    `json:"clientName"`
	IsActive      bool      `json:"isActive"`
	IPCheck       bool      `json:"ipCheck"`
	CountryCheck  bool      `json:"countryCheck"`
	RegionCheck   bool      `json:"regionCheck"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// APIKeyDraft is the editable form state for one API key. EncryptedData is
// empty for a new key.
type APIKeyDraft struct {
	EncryptedData string `json:"encryptedData"`
	ClientName    string `json:"clientName"`
	IsActive      bool   `json:"isActive"`
	IPCheck       bool   `json:"ipCheck"`
	CountryCheck  bool   `json:"countryCheck"`
	RegionCheck   bool   `json:"regionCheck"`
}

// DraftFromAPIKey seeds a draft from an existing row, for the edit form.
func DraftFromAPIKey(rec APIKeyRecord) APIKeyDraft {
	return APIKeyDraft{
		EncryptedData: rec.EncryptedData,
		ClientName:    rec.ClientName,
		IsActive:      rec.IsActive,
		IPCheck:       rec.IPCheck,
		CountryCheck:  rec.CountryCheck,
		RegionCheck:   rec.RegionCheck,
	}
}

// SetClientName applies a client name write with the max-length bound;
// writes past the bound are dropped.
func (d *APIKeyDraft) SetClientName(proposed string) {
	d.ClientName = LimitText(d.ClientName, proposed, MaxClientNameLen)
}

// ValidateAPIKeyDraft is the synchronous pre-save check.
func ValidateAPIKeyDraft(d APIKeyDraft) map[string]string {
	errs := make(map[string]string)
	if d.ClientName == "" {
		errs["clientName"] = "client name is required"
	}
	return errs
}

// NewAPIKeyController creates the list controller for the API keys grid:
// client name ascending, ten rows per page.
func NewAPIKeyController() *Controller[APIKeyFilters] {
	return NewController(ControllerConfig[APIKeyFilters]{
		Defaults:      DefaultAPIKeyFilters,
		SetSearch:     func(f *APIKeyFilters, text string) { f.ClientName = text },
		DefaultSortBy: "clientName",
		PageSize:      10,
	})
}

// Option is one dropdown choice from a getFilters endpoint.
type Option struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

type apiKeyFilterOptions struct {
	FlagOptions []Option `json:"flagOptions"`
}

// SearchAPIKeys executes one API key list request.
func (a *API) SearchAPIKeys(ctx context.Context, req listquery.Request[APIKeyFilters]) (listquery.Result[APIKeyRecord], error) {
	var result listquery.Result[APIKeyRecord]
	err := a.post(ctx, "/api/apikeys/search", req, &result, true)
	return result, err
}

// SaveAPIKey persists a draft and returns the saved row.
func (a *API) SaveAPIKey(ctx context.Context, draft APIKeyDraft) (APIKeyRecord, error) {
	var rec APIKeyRecord
	err := a.post(ctx, "/api/apikeys/save", draft, &rec, true)
	return rec, err
}

// GetAPIKey loads one row by its sealed token.
func (a *API) GetAPIKey(ctx context.Context, encryptedData string) (APIKeyRecord, error) {
	var rec APIKeyRecord
	err := a.post(ctx, "/api/apikeys/getbyId", map[string]string{"encryptedData": encryptedData}, &rec, true)
	return rec, err
}

// APIKeyFilterOptions loads the tri-state dropdown options.
func (a *API) APIKeyFilterOptions(ctx context.Context) ([]Option, error) {
	var resp apiKeyFilterOptions
	if err := a.get(ctx, "/api/apikeys/getFilters", &resp); err != nil {
		return nil, err
	}
	return resp.FlagOptions, nil
}
