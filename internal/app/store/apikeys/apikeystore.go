// internal/app/store/apikeys/apikeystore.go
package apikeystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/app/store/storeutil"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when an API key is not found.
	ErrNotFound = errors.New("api key not found")
	// ErrDuplicateClientName is returned when a save would reuse another
	// key's client name.
	ErrDuplicateClientName = errors.New("an api key with this client name already exists")
	// ErrClientNameRequired is returned when the client name is empty.
	ErrClientNameRequired = errors.New("client name is required")
	// ErrClientNameTooLong is returned when the client name exceeds the
	// maximum length. The value is rejected, never truncated.
	ErrClientNameTooLong = errors.New("client name exceeds maximum length")
)

// Filters holds the search criteria for the API key list. The tri-state
// flags arrive from the dashboard as -1/1/0; an unset flag does not
// constrain results.
type Filters struct {
	SearchText   string
	IsActive     listquery.Tri
	IPCheck      listquery.Tri
	CountryCheck listquery.Tri
	RegionCheck  listquery.Tri
}

// sortFields maps wire sort keys to bson fields. Unknown keys fall back to
// the default so a crafted sortBy can never reach the database.
var sortFields = map[string]string{
	"clientName":   "client_name_ci",
	"isActive":     "is_active",
	"ipCheck":      "ip_check",
	"countryCheck": "country_check",
	"regionCheck":  "region_check",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

// DefaultSort is the wire sort key used when a search names none.
const DefaultSort = "clientName"

// DefaultPageSize is the fixed page size for the API key list.
const DefaultPageSize = 10

// Store provides API key persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new API key store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("api_keys")}
}

// EnsureIndexes creates indexes for efficient queries and uniqueness.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "identifier", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_identifier"),
		},
		{
			Keys:    bson.D{{Key: "client_name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_client_name_ci"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (f Filters) toBSON() bson.M {
	filter := bson.M{}
	if needle := strings.TrimSpace(f.SearchText); needle != "" {
		filter["client_name_ci"] = storeutil.SearchRegex(needle)
	}
	if f.IsActive.IsSet() {
		filter["is_active"] = f.IsActive.Bool()
	}
	if f.IPCheck.IsSet() {
		filter["ip_check"] = f.IPCheck.Bool()
	}
	if f.CountryCheck.IsSet() {
		filter["country_check"] = f.CountryCheck.Bool()
	}
	if f.RegionCheck.IsSet() {
		filter["region_check"] = f.RegionCheck.Bool()
	}
	return filter
}

// Search returns one page of API keys matching the filters plus the total
// match count across all pages.
func (s *Store) Search(ctx context.Context, f Filters, p listquery.Pagination) ([]models.APIKey, int64, error) {
	p = p.Normalize(DefaultSort, DefaultPageSize)
	filter := f.toBSON()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortField, ok := sortFields[p.SortBy]
	if !ok {
		sortField = sortFields[DefaultSort]
	}

	cur, err := s.c.Find(ctx, filter, storeutil.FindOptions(p, sortField))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var keys []models.APIKey
	if err := cur.All(ctx, &keys); err != nil {
		return nil, 0, err
	}
	return keys, total, nil
}

// SaveInput holds the editable fields of an API key. Identifier is empty
// for a new key; the store generates it on first save and it never changes
// afterwards.
type SaveInput struct {
	Identifier   string
	ClientName   string
	IsActive     bool
	IPCheck      bool
	CountryCheck bool
	RegionCheck  bool
}

func (in *SaveInput) validate() error {
	in.ClientName = strings.TrimSpace(in.ClientName)
	if in.ClientName == "" {
		return ErrClientNameRequired
	}
	if len([]rune(in.ClientName)) > models.MaxClientNameLen {
		return ErrClientNameTooLong
	}
	return nil
}

// Save creates or updates an API key and returns the stored record. A save
// with an empty Identifier inserts and assigns one; otherwise the existing
// record is updated in place.
func (s *Store) Save(ctx context.Context, in SaveInput) (*models.APIKey, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	if in.Identifier == "" {
		key := models.APIKey{
			Identifier:   uuid.NewString(),
			ClientName:   in.ClientName,
			ClientNameCI: text.Fold(in.ClientName),
			IsActive:     in.IsActive,
			IPCheck:      in.IPCheck,
			CountryCheck: in.CountryCheck,
			RegionCheck:  in.RegionCheck,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := s.c.InsertOne(ctx, key); err != nil {
			if wafflemongo.IsDup(err) {
				return nil, ErrDuplicateClientName
			}
			return nil, err
		}
		return s.GetByIdentifier(ctx, key.Identifier)
	}

	set := bson.M{
		"client_name":    in.ClientName,
		"client_name_ci": text.Fold(in.ClientName),
		"is_active":      in.IsActive,
		"ip_check":       in.IPCheck,
		"country_check":  in.CountryCheck,
		"region_check":   in.RegionCheck,
		"updated_at":     now,
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"identifier": in.Identifier}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateClientName
		}
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetByIdentifier(ctx, in.Identifier)
}

// GetByIdentifier loads an API key by its opaque identifier.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*models.APIKey, error) {
	var key models.APIKey
	if err := s.c.FindOne(ctx, bson.M{"identifier": identifier}).Decode(&key); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &key, nil
}

// Count returns the total number of API keys.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountActive returns the number of active API keys.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_active": true})
}
