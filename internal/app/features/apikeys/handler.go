// internal/app/features/apikeys/handler.go
package apikeysfeature

import (
	"context"
	"errors"
	"net/http"

	apikeystore "github.com/Sherifrax/speakup-sub001/internal/app/store/apikeys"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/cryptotoken"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/jsonutil"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/timeouts"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles API key management requests.
type Handler struct {
	DB     *mongo.Database
	Sealer *cryptotoken.Sealer
	Log    *zap.Logger
}

// NewHandler creates a new API keys handler.
func NewHandler(db *mongo.Database, sealer *cryptotoken.Sealer, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Sealer: sealer,
		Log:    logger,
	}
}

// HandleSearch handles POST apikeys/search - one page of the filtered list.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req := listquery.Request[SearchFilters]{Search: defaultFilters()}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	store := apikeystore.New(h.DB)
	keys, total, err := store.Search(ctx, req.Search.toStore(), req.Pagination)
	if err != nil {
		h.Log.Error("api key search failed", zap.Error(err))
		jsonutil.InternalError(w, "search failed")
		return
	}

	records := make([]Record, 0, len(keys))
	for _, k := range keys {
		rec, err := h.toRecord(&k)
		if err != nil {
			h.Log.Error("failed to seal api key identifier", zap.Error(err))
			jsonutil.InternalError(w, "search failed")
			return
		}
		records = append(records, rec)
	}
	jsonutil.List(w, records, total)
}

// HandleSave handles POST apikeys/save - create or update one key.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req SaveRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	identifier := ""
	if req.EncryptedData != "" {
		var err error
		identifier, err = h.Sealer.Open(req.EncryptedData)
		if err != nil {
			jsonutil.BadRequest(w, "invalid record identifier")
			return
		}
	}

	store := apikeystore.New(h.DB)
	key, err := store.Save(ctx, apikeystore.SaveInput{
		Identifier:   identifier,
		ClientName:   req.ClientName,
		IsActive:     req.IsActive,
		IPCheck:      req.IPCheck,
		CountryCheck: req.CountryCheck,
		RegionCheck:  req.RegionCheck,
	})
	if err != nil {
		switch {
		case errors.Is(err, apikeystore.ErrClientNameRequired):
			jsonutil.ValidationError(w, map[string]string{"clientName": "required"})
		case errors.Is(err, apikeystore.ErrClientNameTooLong):
			jsonutil.ValidationError(w, map[string]string{"clientName": "must be 50 characters or fewer"})
		case errors.Is(err, apikeystore.ErrDuplicateClientName):
			jsonutil.ValidationError(w, map[string]string{"clientName": "already in use"})
		case errors.Is(err, apikeystore.ErrNotFound):
			jsonutil.NotFound(w, "api key not found")
		default:
			h.Log.Error("api key save failed", zap.Error(err))
			jsonutil.InternalError(w, "save failed")
		}
		return
	}

	h.Log.Info("api key saved",
		zap.String("identifier", key.Identifier),
		zap.String("client_name", key.ClientName))

	rec, err := h.toRecord(key)
	if err != nil {
		h.Log.Error("failed to seal api key identifier", zap.Error(err))
		jsonutil.InternalError(w, "save failed")
		return
	}
	jsonutil.OK(w, rec)
}

// HandleGetByID handles POST apikeys/getbyId - load one record by its
// sealed token.
func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req GetByIDRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	identifier, err := h.Sealer.Open(req.EncryptedData)
	if err != nil {
		jsonutil.BadRequest(w, "invalid record identifier")
		return
	}

	store := apikeystore.New(h.DB)
	key, err := store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apikeystore.ErrNotFound) {
			jsonutil.NotFound(w, "api key not found")
			return
		}
		h.Log.Error("api key load failed", zap.Error(err))
		jsonutil.InternalError(w, "load failed")
		return
	}

	rec, err := h.toRecord(key)
	if err != nil {
		h.Log.Error("failed to seal api key identifier", zap.Error(err))
		jsonutil.InternalError(w, "load failed")
		return
	}
	jsonutil.OK(w, rec)
}

// HandleGetFilters handles GET apikeys/getFilters - the tri-state dropdown
// options. The options are fixed, so no database round trip.
func (h *Handler) HandleGetFilters(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, FiltersResponse{
		FlagOptions: []models.LookupItem{
			{ID: int(listquery.TriUnset), Value: "All"},
			{ID: int(listquery.TriYes), Value: "Yes"},
			{ID: int(listquery.TriNo), Value: "No"},
		},
	})
}

// toRecord converts a stored key to its wire shape, sealing the identifier.
func (h *Handler) toRecord(k *models.APIKey) (Record, error) {
	token, err := h.Sealer.Seal(k.Identifier)
	if err != nil {
		return Record{}, err
	}
	return Record{
		EncryptedData: token,
		ClientName:    k.ClientName,
		IsActive:      k.IsActive,
		IPCheck:       k.IPCheck,
		CountryCheck:  k.CountryCheck,
		RegionCheck:   k.RegionCheck,
		CreatedAt:     k.CreatedAt,
		UpdatedAt:     k.UpdatedAt,
	}, nil
}
