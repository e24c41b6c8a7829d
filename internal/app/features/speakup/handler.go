// internal/app/features/speakup/handler.go
package speakupfeature

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	lookupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/lookups"
	speakupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/speakup"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/auth"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/cryptotoken"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/htmlsanitize"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/jsonutil"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/timeouts"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles Speak Up requests.
type Handler struct {
	DB     *mongo.Database
	Sealer *cryptotoken.Sealer
	Files  storage.Store
	Log    *zap.Logger
}

// NewHandler creates a new Speak Up handler.
func NewHandler(db *mongo.Database, sealer *cryptotoken.Sealer, files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Sealer: sealer,
		Files:  files,
		Log:    logger,
	}
}

// scope builds the store scope for the authenticated caller.
func scope(r *http.Request) (speakupstore.Scope, bool) {
	claims, ok := auth.CurrentUser(r)
	if !ok {
		return speakupstore.Scope{}, false
	}
	sc := speakupstore.Scope{Role: claims.Role}
	if id, err := claims.UserObjectID(); err == nil {
		sc.ReporterID = id
	}
	return sc, true
}

// HandleSearch handles POST speakup/search - one page of the filtered list.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := scope(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	req := listquery.Request[SearchFilters]{Search: defaultFilters()}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}
	// The Speak Up list shows newest entries first.
	if req.Pagination.SortBy == "" && req.Pagination.SortOrder == "" {
		req.Pagination.SortOrder = listquery.SortDesc
	}

	store := speakupstore.New(h.DB)
	entries, total, err := store.Search(ctx, sc, req.Search.toStore(), req.Pagination)
	if err != nil {
		h.Log.Error("speakup search failed", zap.Error(err))
		jsonutil.InternalError(w, "search failed")
		return
	}

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		rec, err := h.toRecord(&e, sc.Role)
		if err != nil {
			h.Log.Error("failed to seal speakup identifier", zap.Error(err))
			jsonutil.InternalError(w, "search failed")
			return
		}
		records = append(records, rec)
	}
	jsonutil.List(w, records, total)
}

// HandleSave handles POST speakup/save - field writes and workflow
// transitions, selected by the actionBy discriminator.
// carriesFields reports whether the action applies the draft's field edits.
func carriesFields(action string) bool {
	switch action {
	case "", models.ActionSave, models.ActionSubmit:
		return true
	}
	return false
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := scope(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	var req SaveRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	var seq int64
	if req.EncryptedData != "" {
		var err error
		seq, err = h.openSeq(req.EncryptedData)
		if err != nil {
			jsonutil.BadRequest(w, "invalid record identifier")
			return
		}
	}

	// Field-carrying saves must name a real lookup type. The unselected
	// sentinel is rejected by the store; pure transitions (progress,
	// resolve, cancel of a submitted entry) carry no field edits.
	if carriesFields(req.ActionBy) && req.TypeID != models.TypeUnselected {
		lookups := lookupstore.New(h.DB)
		types, err := lookups.Get(ctx, models.LookupSpeakUpType)
		if err != nil {
			h.Log.Error("speakup type lookup failed", zap.Error(err))
			jsonutil.InternalError(w, "save failed")
			return
		}
		if !types.Contains(req.TypeID) {
			jsonutil.ValidationError(w, map[string]string{"typeId": "unknown type"})
			return
		}
	}

	input := speakupstore.SaveInput{
		Seq:         seq,
		TypeID:      req.TypeID,
		Message:     htmlsanitize.Message(req.Message),
		IsAnonymous: req.IsAnonymous,
		Action:      req.ActionBy,
	}
	if req.Attachment != nil {
		att, err := attachmentFromRef(req.Attachment)
		if err != nil {
			jsonutil.ValidationError(w, map[string]string{"attachment": "invalid attachment reference"})
			return
		}
		input.Attachment = att
	}

	store := speakupstore.New(h.DB)
	entry, err := store.Save(ctx, sc, input)
	if err != nil {
		switch {
		case errors.Is(err, speakupstore.ErrMessageRequired):
			jsonutil.ValidationError(w, map[string]string{"message": "required"})
		case errors.Is(err, speakupstore.ErrMessageTooLong):
			jsonutil.ValidationError(w, map[string]string{"message": "must be 1000 characters or fewer"})
		case errors.Is(err, speakupstore.ErrTypeRequired):
			jsonutil.ValidationError(w, map[string]string{"typeId": "required"})
		case errors.Is(err, speakupstore.ErrIllegalTransition):
			jsonutil.Error(w, http.StatusConflict, "action not allowed for entry status")
		case errors.Is(err, speakupstore.ErrForbidden):
			jsonutil.Forbidden(w, "entry belongs to another reporter")
		case errors.Is(err, speakupstore.ErrNotFound):
			jsonutil.NotFound(w, "entry not found")
		default:
			h.Log.Error("speakup save failed", zap.Error(err))
			jsonutil.InternalError(w, "save failed")
		}
		return
	}

	h.Log.Info("speakup entry saved",
		zap.Int64("id", entry.Seq),
		zap.String("status", entry.Status),
		zap.String("action", req.ActionBy))

	rec, err := h.toRecord(entry, sc.Role)
	if err != nil {
		h.Log.Error("failed to seal speakup identifier", zap.Error(err))
		jsonutil.InternalError(w, "save failed")
		return
	}
	jsonutil.OK(w, rec)
}

// HandleGetByID handles POST speakup/getbyId.
func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := scope(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	var req GetByIDRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	seq, err := h.openSeq(req.EncryptedData)
	if err != nil {
		jsonutil.BadRequest(w, "invalid record identifier")
		return
	}

	store := speakupstore.New(h.DB)
	entry, err := store.GetBySeq(ctx, sc, seq)
	if err != nil {
		switch {
		case errors.Is(err, speakupstore.ErrNotFound):
			jsonutil.NotFound(w, "entry not found")
		case errors.Is(err, speakupstore.ErrForbidden):
			jsonutil.Forbidden(w, "entry belongs to another reporter")
		default:
			h.Log.Error("speakup load failed", zap.Error(err))
			jsonutil.InternalError(w, "load failed")
		}
		return
	}

	rec, err := h.toRecord(entry, sc.Role)
	if err != nil {
		h.Log.Error("failed to seal speakup identifier", zap.Error(err))
		jsonutil.InternalError(w, "load failed")
		return
	}
	jsonutil.OK(w, rec)
}

// HandleGetFilters handles GET speakup/getFilters - type and status
// dropdown options from the lookup store.
func (h *Handler) HandleGetFilters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	lookups := lookupstore.New(h.DB)
	types, err := lookups.Get(ctx, models.LookupSpeakUpType)
	if err != nil {
		h.Log.Error("speakup type lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "filters unavailable")
		return
	}
	statuses, err := lookups.Get(ctx, models.LookupSpeakUpStatus)
	if err != nil {
		h.Log.Error("speakup status lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "filters unavailable")
		return
	}

	jsonutil.OK(w, FiltersResponse{
		Types:    types.Items,
		Statuses: statuses.Items,
	})
}

// lookupTypes loads the Speak Up type options.
func (h *Handler) lookupTypes(ctx context.Context) ([]models.LookupItem, error) {
	types, err := lookupstore.New(h.DB).Get(ctx, models.LookupSpeakUpType)
	if err != nil {
		return nil, err
	}
	return types.Items, nil
}

// openSeq opens a sealed speakup token into its numeric id.
func (h *Handler) openSeq(token string) (int64, error) {
	raw, err := h.Sealer.Open(token)
	if err != nil {
		return 0, err
	}
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq < 1 {
		return 0, cryptotoken.ErrInvalidToken
	}
	return seq, nil
}

func attachmentFromRef(ref *AttachmentRef) (*models.Attachment, error) {
	id, err := primitive.ObjectIDFromHex(ref.ID)
	if err != nil {
		return nil, err
	}
	return &models.Attachment{
		ID:          id,
		Name:        ref.Name,
		StoragePath: attachmentPath(id),
		Size:        ref.Size,
		ContentType: ref.ContentType,
	}, nil
}

// toRecord converts a stored entry to its wire shape, sealing the numeric
// id and computing the caller's capability flags.
func (h *Handler) toRecord(e *models.SpeakUpEntry, role string) (Record, error) {
	token, err := h.Sealer.Seal(strconv.FormatInt(e.Seq, 10))
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:            e.Seq,
		EncryptedData: token,
		TypeID:        e.TypeID,
		Message:       e.Message,
		IsAnonymous:   e.IsAnonymous,
		Status:        e.Status,
		Capabilities:  models.CapabilitiesFor(e.Status, role),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		SubmittedAt:   e.SubmittedAt,
		ClosedAt:      e.ClosedAt,
	}
	if e.Attachment != nil {
		rec.Attachment = &AttachmentRef{
			ID:          e.Attachment.ID.Hex(),
			Name:        e.Attachment.Name,
			Size:        e.Attachment.Size,
			ContentType: e.Attachment.ContentType,
		}
	}
	return rec, nil
}
