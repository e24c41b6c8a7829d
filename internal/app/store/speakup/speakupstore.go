// internal/app/store/speakup/speakupstore.go
package speakupstore

// Terminology: Entry Identifiers
//   - ID / _id: The MongoDB ObjectID, internal to the service
//   - Seq / seq: The small numeric id the dashboard displays (0 = unsaved);
//     outside the service an entry is addressed only by its encrypted token

import (
	"context"
	"errors"
	"strings"
	"time"

	counterstore "github.com/Sherifrax/speakup-sub001/internal/app/store/counters"
	"github.com/Sherifrax/speakup-sub001/internal/app/store/storeutil"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when an entry is not found.
	ErrNotFound = errors.New("speak up entry not found")
	// ErrIllegalTransition is returned when the requested action is not
	// valid for the entry's current status or the caller's role.
	ErrIllegalTransition = errors.New("action not allowed for entry status")
	// ErrForbidden is returned when a reporter touches someone else's entry.
	ErrForbidden = errors.New("entry belongs to another reporter")
	// ErrMessageRequired is returned when the message is empty.
	ErrMessageRequired = errors.New("message is required")
	// ErrMessageTooLong is returned when the message exceeds the maximum
	// length. The value is rejected, never truncated.
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	// ErrTypeRequired is returned when a field-carrying save has no type
	// selected.
	ErrTypeRequired = errors.New("a type must be selected")
)

// Filters holds the search criteria for the Speak Up list. TypeID uses the
// -1 unselected sentinel; an empty Status does not constrain results.
type Filters struct {
	SearchText  string
	TypeID      int
	Status      string
	IsAnonymous listquery.Tri
}

// Unfiltered returns filters that match everything.
func Unfiltered() Filters {
	return Filters{TypeID: models.TypeUnselected, IsAnonymous: listquery.TriUnset}
}

var sortFields = map[string]string{
	"id":        "seq",
	"typeId":    "type_id",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// DefaultSort is the wire sort key used when a search names none. The list
// shows newest entries first, so id defaults to descending in the handler.
const DefaultSort = "id"

// DefaultPageSize is the fixed page size for the Speak Up list.
const DefaultPageSize = 10

// Store provides Speak Up entry persistence.
type Store struct {
	c        *mongo.Collection
	counters *counterstore.Store
}

// New creates a new Speak Up store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("speakup_entries"),
		counters: counterstore.New(db),
	}
}

// EnsureIndexes creates indexes for efficient queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "seq", Value: -1}},
			Options: options.Index().SetUnique(true).SetName("idx_seq"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "seq", Value: -1}},
			Options: options.Index().SetName("idx_status_seq"),
		},
		{
			Keys:    bson.D{{Key: "reporter_id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_reporter"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Scope restricts queries to what the caller may see. Admins see every
// entry; reporters only their own.
type Scope struct {
	Role       string
	ReporterID primitive.ObjectID
}

// AdminScope returns an unrestricted scope.
func AdminScope() Scope {
	return Scope{Role: models.RoleAdmin}
}

func (sc Scope) apply(filter bson.M) bson.M {
	if sc.Role != models.RoleAdmin {
		filter["reporter_id"] = sc.ReporterID
	}
	return filter
}

func (f Filters) toBSON() bson.M {
	filter := bson.M{}
	if needle := strings.TrimSpace(f.SearchText); needle != "" {
		filter["message"] = storeutil.SearchRegex(needle)
	}
	if f.TypeID != models.TypeUnselected {
		filter["type_id"] = f.TypeID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.IsAnonymous.IsSet() {
		filter["is_anonymous"] = f.IsAnonymous.Bool()
	}
	return filter
}

// Search returns one page of entries matching the filters within the scope,
// plus the total match count across all pages.
func (s *Store) Search(ctx context.Context, sc Scope, f Filters, p listquery.Pagination) ([]models.SpeakUpEntry, int64, error) {
	p = p.Normalize(DefaultSort, DefaultPageSize)
	filter := sc.apply(f.toBSON())

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

	var entries []models.SpeakUpEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FindAll returns every entry matching the filters within the scope, in the
// given sort order without pagination. Used by the export endpoint.
func (s *Store) FindAll(ctx context.Context, sc Scope, f Filters, sortBy, sortOrder string) ([]models.SpeakUpEntry, error) {
	sortField, ok := sortFields[sortBy]
	if !ok {
		sortField = sortFields[DefaultSort]
	}
	dir := -1
	if sortOrder == listquery.SortAsc {
		dir = 1
	}

	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: dir}})
	cur, err := s.c.Find(ctx, sc.apply(f.toBSON()), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.SpeakUpEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetBySeq loads an entry by its numeric id within the scope.
func (s *Store) GetBySeq(ctx context.Context, sc Scope, seq int64) (*models.SpeakUpEntry, error) {
	var entry models.SpeakUpEntry
	err := s.c.FindOne(ctx, bson.M{"seq": seq}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := checkOwnership(sc, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func checkOwnership(sc Scope, entry *models.SpeakUpEntry) error {
	if sc.Role == models.RoleAdmin {
		return nil
	}
	if entry.ReporterID == nil || *entry.ReporterID != sc.ReporterID {
		return ErrForbidden
	}
	return nil
}

// SaveInput holds a full draft plus the action discriminator. Seq 0 means
// the entry has never been saved and will be created. Message must already
// be sanitized by the caller.
type SaveInput struct {
	Seq         int64
	TypeID      int
	Message     string
	IsAnonymous bool
	Attachment  *models.Attachment
	Action      string
}

func (in *SaveInput) validate() error {
	in.Message = strings.TrimSpace(in.Message)
	if in.Message == "" {
		return ErrMessageRequired
	}
	if len([]rune(in.Message)) > models.MaxMessageLen {
		return ErrMessageTooLong
	}
	if in.TypeID == models.TypeUnselected {
		return ErrTypeRequired
	}
	return nil
}

// Save creates or updates an entry and applies the requested workflow
// action, returning the stored record. Field edits are only accepted while
// the entry is editable (draft); pure transitions (progress, resolve,
// cancel of a submitted entry) leave the fields untouched.
func (s *Store) Save(ctx context.Context, sc Scope, in SaveInput) (*models.SpeakUpEntry, error) {
	action := in.Action
	if action == "" {
		action = models.ActionSave
	}

	if in.Seq == 0 {
		return s.create(ctx, sc, in, action)
	}

	entry, err := s.GetBySeq(ctx, sc, in.Seq)
	if err != nil {
		return nil, err
	}

	caps := models.CapabilitiesFor(entry.Status, sc.Role)
	if !caps.Allows(action) {
		return nil, ErrIllegalTransition
	}
	next, ok := models.NextStatus(entry.Status, action)
	if !ok {
		return nil, ErrIllegalTransition
	}

	now := time.Now()
	set := bson.M{
		"status":     next,
		"updated_at": now,
	}
	unset := bson.M{}

	if caps.CanEdit {
		// Draft fields may still change on save, submit, and cancel.
		if err := in.validate(); err != nil {
			return nil, err
		}
		set["type_id"] = in.TypeID
		set["message"] = in.Message
		set["is_anonymous"] = in.IsAnonymous
		if in.Attachment != nil {
			set["attachment"] = in.Attachment
		} else {
			unset["attachment"] = ""
		}
		if in.IsAnonymous {
			unset["reporter_id"] = ""
		}
	} else if action == models.ActionSubmit {
		if err := in.validate(); err != nil {
			return nil, err
		}
	}

	switch action {
	case models.ActionSubmit:
		set["submitted_at"] = now
	case models.ActionCancel, models.ActionResolve:
		set["closed_at"] = now
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": entry.ID}, update); err != nil {
		return nil, err
	}
	return s.GetBySeq(ctx, sc, in.Seq)
}

func (s *Store) create(ctx context.Context, sc Scope, in SaveInput, action string) (*models.SpeakUpEntry, error) {
	if action != models.ActionSave && action != models.ActionSubmit {
		return nil, ErrIllegalTransition
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	seq, err := s.counters.Next(ctx, counterstore.SpeakUpSeq)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := models.SpeakUpEntry{
		ID:          primitive.NewObjectID(),
		Seq:         seq,
		TypeID:      in.TypeID,
		Message:     in.Message,
		IsAnonymous: in.IsAnonymous,
		Attachment:  in.Attachment,
		Status:      models.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !in.IsAnonymous && !sc.ReporterID.IsZero() {
		reporterID := sc.ReporterID
		entry.ReporterID = &reporterID
	}
	if action == models.ActionSubmit {
		entry.Status = models.StatusSubmitted
		entry.SubmittedAt = &now
	}

	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetByAttachmentID loads the entry that references the given attachment,
// within the scope. Attachments are only served through their owning entry.
func (s *Store) GetByAttachmentID(ctx context.Context, sc Scope, attachmentID primitive.ObjectID) (*models.SpeakUpEntry, error) {
	var entry models.SpeakUpEntry
	err := s.c.FindOne(ctx, bson.M{"attachment.id": attachmentID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := checkOwnership(sc, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountByStatus returns entry counts grouped by status. Statuses with no
// entries are absent from the map.
func (s *Store) CountByStatus(ctx context.Context, sc Scope) (map[string]int64, error) {
	return s.countBy(ctx, sc, "$status")
}

func (s *Store) countBy(ctx context.Context, sc Scope, field string) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": sc.apply(bson.M{})},
		{"$group": bson.M{"_id": field, "count": bson.M{"$sum": 1}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

// CountByType returns entry counts grouped by type id.
func (s *Store) CountByType(ctx context.Context, sc Scope) (map[int]int64, error) {
	pipeline := []bson.M{
		{"$match": sc.apply(bson.M{})},
		{"$group": bson.M{"_id": "$type_id", "count": bson.M{"$sum": 1}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[int]int64)
	for cur.Next(ctx) {
		var row struct {
			ID    int   `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}
