package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/listquery"
)

// Speak Up bounds and sentinels, mirroring the server.
const (
	MaxMessageLen  = 1000
	TypeUnselected = -1

	SpeakUpActionSave     = "save"
	SpeakUpActionSubmit   = "submit"
	SpeakUpActionCancel   = "cancel"
	SpeakUpActionProgress = "progress"
	SpeakUpActionResolve  = "resolve"
)

// SpeakUpFilters is the search half of a Speak Up list request.
type SpeakUpFilters struct {
	SearchText  string        `json:"searchText"`
	TypeID      int           `json:"typeId"`
	Status      string        `json:"status"`
	IsAnonymous listquery.Tri `json:"isAnonymous"`
}

// DefaultSpeakUpFilters returns the unfiltered state.
func DefaultSpeakUpFilters() SpeakUpFilters {
	return SpeakUpFilters{
		TypeID:      TypeUnselected,
		IsAnonymous: listquery.TriUnset,
	}
}

// SpeakUpAttachment is an uploaded file reference.
type SpeakUpAttachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// SpeakUpCapabilities are the per-record action flags the server computes
// from status and role; they gate which buttons the form shows and which
// actions the server will accept.
type SpeakUpCapabilities struct {
	CanEdit     bool `json:"canEdit"`
	CanSubmit   bool `json:"canSubmit"`
	CanCancel   bool `json:"canCancel"`
	CanProgress bool `json:"canProgress"`
	CanResolve  bool `json:"canResolve"`
}

// SpeakUpRecord is one Speak Up row. ID is the numeric display id (0 for a
// never-saved draft); the sealed encryptedData token addresses the record.
type SpeakUpRecord struct {
	ID            int64               `json:"id"`
	EncryptedData string              `json:"encryptedData"`
	TypeID        int                 `json:"typeId"`
	Message       string              `json:"message"`
	IsAnonymous   bool                `json:"isAnonymous"`
	Attachment    *SpeakUpAttachment  `json:"attachment,omitempty"`
	Status        string              `json:"status"`
	Capabilities  SpeakUpCapabilities `json:"capabilities"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	SubmittedAt   *time.Time          `json:"submittedAt,omitempty"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty"`
}

// SpeakUpDraft is the editable form state plus the action discriminator.
type SpeakUpDraft struct {
	EncryptedData string             `json:"encryptedData"`
	TypeID        int                `json:"typeId"`
	Message       string             `json:"message"`
	IsAnonymous   bool               `json:"isAnonymous"`
	Attachment    *SpeakUpAttachment `json:"attachment,omitempty"`
	ActionBy      string             `json:"actionBy"`
}

// NewSpeakUpDraft returns an empty draft with the type sentinel set.
func NewSpeakUpDraft() SpeakUpDraft {
	return SpeakUpDraft{TypeID: TypeUnselected, ActionBy: SpeakUpActionSave}
}

// DraftFromSpeakUp seeds a draft from an existing row, for the edit form.
func DraftFromSpeakUp(rec SpeakUpRecord) SpeakUpDraft {
	return SpeakUpDraft{
		EncryptedData: rec.EncryptedData,
		TypeID:        rec.TypeID,
		Message:       rec.Message,
		IsAnonymous:   rec.IsAnonymous,
		Attachment:    rec.Attachment,
		ActionBy:      SpeakUpActionSave,
	}
}

// SetMessage applies a message write with the max-length bound; writes past
// the bound are dropped.
func (d *SpeakUpDraft) SetMessage(proposed string) {
	d.Message = LimitText(d.Message, proposed, MaxMessageLen)
}

// ValidateSpeakUpDraft is the synchronous pre-save check. Every save needs
// a message and a chosen type; the unselected sentinel never reaches the
// network.
func ValidateSpeakUpDraft(d SpeakUpDraft) map[string]string {
	errs := make(map[string]string)
	if d.Message == "" {
		errs["message"] = "message is required"
	}
	if d.TypeID == TypeUnselected {
		errs["typeId"] = "select a type"
	}
	return errs
}

// NewSpeakUpController creates the list controller for the Speak Up grid:
// id descending (newest first), ten rows per page.
func NewSpeakUpController() *Controller[SpeakUpFilters] {
	return NewController(ControllerConfig[SpeakUpFilters]{
		Defaults:         DefaultSpeakUpFilters,
		SetSearch:        func(f *SpeakUpFilters, text string) { f.SearchText = text },
		DefaultSortBy:    "id",
		DefaultSortOrder: listquery.SortDesc,
		PageSize:         10,
	})
}

type speakUpFilterOptions struct {
	Types    []Option `json:"types"`
	Statuses []Option `json:"statuses"`
}

// SearchSpeakUp executes one Speak Up list request.
func (a *API) SearchSpeakUp(ctx context.Context, req listquery.Request[SpeakUpFilters]) (listquery.Result[SpeakUpRecord], error) {
	var result listquery.Result[SpeakUpRecord]
	err := a.post(ctx, "/api/speakup/search", req, &result, true)
	return result, err
}

// SaveSpeakUp persists a draft (with its action) and returns the saved row.
func (a *API) SaveSpeakUp(ctx context.Context, draft SpeakUpDraft) (SpeakUpRecord, error) {
	var rec SpeakUpRecord
	err := a.post(ctx, "/api/speakup/save", draft, &rec, true)
	return rec, err
}

// GetSpeakUp loads one row by its sealed token.
func (a *API) GetSpeakUp(ctx context.Context, encryptedData string) (SpeakUpRecord, error) {
	var rec SpeakUpRecord
	err := a.post(ctx, "/api/speakup/getbyId", map[string]string{"encryptedData": encryptedData}, &rec, true)
	return rec, err
}

// SpeakUpFilterOptions loads the type and status dropdown options.
func (a *API) SpeakUpFilterOptions(ctx context.Context) (types, statuses []Option, err error) {
	var resp speakUpFilterOptions
	if err := a.get(ctx, "/api/speakup/getFilters", &resp); err != nil {
		return nil, nil, err
	}
	return resp.Types, resp.Statuses, nil
}

// UploadSpeakUpAttachment uploads a file and returns its reference for the
// draft.
func (a *API) UploadSpeakUpAttachment(ctx context.Context, name, contentType string, content io.Reader) (SpeakUpAttachment, error) {
	var ref SpeakUpAttachment

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return ref, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return ref, err
	}
	if err := mw.Close(); err != nil {
		return ref, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/api/speakup/attachment", &buf)
	if err != nil {
		return ref, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	token, ok := a.session.Token()
	if !ok {
		return ref, ErrNotLoggedIn
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.http.Do(req)
	if err != nil {
		return ref, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			a.session.Expire()
		}
		return ref, apiErr
	}
	err = json.NewDecoder(resp.Body).Decode(&ref)
	return ref, err
}

// ExportSpeakUp downloads the filtered list as an .xlsx workbook. The body
// is the same search request the list uses; pagination is ignored
// server-side.
func (a *API) ExportSpeakUp(ctx context.Context, req listquery.Request[SpeakUpFilters]) ([]byte, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/api/speakup/export", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	token, ok := a.session.Token()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			a.session.Expire()
		}
		return nil, apiErr
	}
	return io.ReadAll(resp.Body)
}
