package speakupstore_test

import (
	. "github.com/Sherifrax/speakup-sub001/internal/app/store/speakup"

	"strings"
	"testing"

	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	"github.com/Sherifrax/speakup-sub001/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func reporterScope() Scope {
	return Scope{Role: models.RoleReporter, ReporterID: primitive.NewObjectID()}
}

func TestStore_Save_CreateDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sc := reporterScope()
	entry, err := store.Save(ctx, sc, SaveInput{
		TypeID:  2,
		Message: "Unsafe ladder in warehouse B",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if entry.Seq != 1 {
		t.Errorf("Save() Seq = %d, want 1", entry.Seq)
	}
	if entry.Status != models.StatusDraft {
		t.Errorf("Save() Status = %q, want draft", entry.Status)
	}
	if entry.ReporterID == nil || *entry.ReporterID != sc.ReporterID {
		t.Error("Save() did not record reporter")
	}
	if entry.SubmittedAt != nil {
		t.Error("Save() draft should not have SubmittedAt")
	}

	// Sequence numbers keep counting.
	second, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: "Second entry"})
	if err != nil {
		t.Fatalf("Save() second error = %v", err)
	}
	if second.Seq != 2 {
		t.Errorf("Save() second Seq = %d, want 2", second.Seq)
	}
}

func TestStore_Save_CreateAnonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	entry, err := store.Save(ctx, reporterScope(), SaveInput{
		TypeID:      1,
		Message:     "Anonymous concern",
		IsAnonymous: true,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if entry.ReporterID != nil {
		t.Error("Save() anonymous entry must not record reporter")
	}
}

func TestStore_Save_CreateAndSubmit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	entry, err := store.Save(ctx, reporterScope(), SaveInput{
		TypeID:  3,
		Message: "Submitted directly",
		Action:  models.ActionSubmit,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if entry.Status != models.StatusSubmitted {
		t.Errorf("Save() Status = %q, want submitted", entry.Status)
	}
	if entry.SubmittedAt == nil {
		t.Error("Save() submit did not set SubmittedAt")
	}
}

func TestStore_Save_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sc := reporterScope()

	if _, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: "  "}); err != ErrMessageRequired {
		t.Errorf("Save() empty message error = %v, want ErrMessageRequired", err)
	}

	long := strings.Repeat("m", models.MaxMessageLen)
	if _, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: long}); err != nil {
		t.Errorf("Save() max-length message error = %v", err)
	}
	if _, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: long + "x"}); err != ErrMessageTooLong {
		t.Errorf("Save() over-length message error = %v, want ErrMessageTooLong", err)
	}

	// The unselected sentinel is rejected on every field-carrying save,
	// not just submit.
	if _, err := store.Save(ctx, sc, SaveInput{
		TypeID:  models.TypeUnselected,
		Message: "No type yet",
		Action:  models.ActionSubmit,
	}); err != ErrTypeRequired {
		t.Errorf("Save() submit without type error = %v, want ErrTypeRequired", err)
	}
	if _, err := store.Save(ctx, sc, SaveInput{
		TypeID:  models.TypeUnselected,
		Message: "No type yet",
	}); err != ErrTypeRequired {
		t.Errorf("Save() draft without type error = %v, want ErrTypeRequired", err)
	}
}

func TestStore_Save_UpdateDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sc := reporterScope()
	created, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: "First wording"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	updated, err := store.Save(ctx, sc, SaveInput{
		Seq:     created.Seq,
		TypeID:  2,
		Message: "Better wording",
	})
	if err != nil {
		t.Fatalf("Save() update error = %v", err)
	}
	if updated.Message != "Better wording" || updated.TypeID != 2 {
		t.Errorf("Save() update = %+v, want new message and type", updated)
	}
	if updated.Status != models.StatusDraft {
		t.Errorf("Save() update Status = %q, want draft unchanged", updated.Status)
	}
}

func TestStore_Save_Workflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reporter := reporterScope()
	admin := AdminScope()

	entry, err := store.Save(ctx, reporter, SaveInput{TypeID: 1, Message: "Workflow entry"})
	if err != nil {
		t.Fatalf("Save() create error = %v", err)
	}

	// Reporters cannot progress or resolve, even their own entries.
	if _, err := store.Save(ctx, reporter, SaveInput{Seq: entry.Seq, TypeID: 1, Message: "x", Action: models.ActionProgress}); err != ErrIllegalTransition {
		t.Errorf("Save() reporter progress error = %v, want ErrIllegalTransition", err)
	}

	// draft -> submitted
	entry, err = store.Save(ctx, reporter, SaveInput{Seq: entry.Seq, TypeID: 1, Message: "Workflow entry", Action: models.ActionSubmit})
	if err != nil {
		t.Fatalf("Save() submit error = %v", err)
	}
	if entry.Status != models.StatusSubmitted {
		t.Fatalf("Status = %q, want submitted", entry.Status)
	}

	// Submitted entries are read-only; a plain save is an illegal action.
	if _, err := store.Save(ctx, reporter, SaveInput{Seq: entry.Seq, TypeID: 1, Message: "Sneaky edit"}); err != ErrIllegalTransition {
		t.Errorf("Save() edit after submit error = %v, want ErrIllegalTransition", err)
	}

	// submitted -> in_progress (admin only)
	entry, err = store.Save(ctx, admin, SaveInput{Seq: entry.Seq, Action: models.ActionProgress})
	if err != nil {
		t.Fatalf("Save() progress error = %v", err)
	}
	if entry.Status != models.StatusInProgress {
		t.Fatalf("Status = %q, want in_progress", entry.Status)
	}

	// In-progress entries can no longer be cancelled.
	if _, err := store.Save(ctx, admin, SaveInput{Seq: entry.Seq, Action: models.ActionCancel}); err != ErrIllegalTransition {
		t.Errorf("Save() cancel in_progress error = %v, want ErrIllegalTransition", err)
	}

	// in_progress -> resolved
	entry, err = store.Save(ctx, admin, SaveInput{Seq: entry.Seq, Action: models.ActionResolve})
	if err != nil {
		t.Fatalf("Save() resolve error = %v", err)
	}
	if entry.Status != models.StatusResolved {
		t.Fatalf("Status = %q, want resolved", entry.Status)
	}
	if entry.ClosedAt == nil {
		t.Error("Save() resolve did not set ClosedAt")
	}

	// Resolved is terminal.
	if _, err := store.Save(ctx, admin, SaveInput{Seq: entry.Seq, Action: models.ActionResolve}); err != ErrIllegalTransition {
		t.Errorf("Save() resolve resolved error = %v, want ErrIllegalTransition", err)
	}
}

func TestStore_Save_CancelSubmitted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sc := reporterScope()
	entry, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: "To be withdrawn", Action: models.ActionSubmit})
	if err != nil {
		t.Fatalf("Save() submit error = %v", err)
	}

	entry, err = store.Save(ctx, sc, SaveInput{Seq: entry.Seq, Action: models.ActionCancel})
	if err != nil {
		t.Fatalf("Save() cancel error = %v", err)
	}
	if entry.Status != models.StatusCancelled {
		t.Errorf("Status = %q, want cancelled", entry.Status)
	}
	if entry.ClosedAt == nil {
		t.Error("Save() cancel did not set ClosedAt")
	}
	// Cancel of a submitted entry must not have touched the draft fields.
	if entry.Message != "To be withdrawn" {
		t.Errorf("Message = %q, want unchanged", entry.Message)
	}
}

func TestStore_Ownership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := reporterScope()
	other := reporterScope()
	admin := AdminScope()

	entry, err := store.Save(ctx, owner, SaveInput{TypeID: 1, Message: "Mine"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := store.GetBySeq(ctx, other, entry.Seq); err != ErrForbidden {
		t.Errorf("GetBySeq() other reporter error = %v, want ErrForbidden", err)
	}
	if _, err := store.GetBySeq(ctx, admin, entry.Seq); err != nil {
		t.Errorf("GetBySeq() admin error = %v", err)
	}
	if _, err := store.Save(ctx, other, SaveInput{Seq: entry.Seq, TypeID: 1, Message: "Hijack"}); err != ErrForbidden {
		t.Errorf("Save() other reporter error = %v, want ErrForbidden", err)
	}
}

func TestStore_GetBySeq_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetBySeq(ctx, AdminScope(), 999); err != ErrNotFound {
		t.Errorf("GetBySeq() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := reporterScope()
	bob := reporterScope()

	seed := []struct {
		sc     Scope
		typeID int
		msg    string
		action string
	}{
		{alice, 1, "Broken handrail on stairs", models.ActionSubmit},
		{alice, 2, "Pay discrepancy in March", models.ActionSave},
		{bob, 1, "Handrail still broken", models.ActionSubmit},
	}
	for _, s2 := range seed {
		if _, err := store.Save(ctx, s2.sc, SaveInput{TypeID: s2.typeID, Message: s2.msg, Action: s2.action}); err != nil {
			t.Fatalf("Save(%q) error = %v", s2.msg, err)
		}
	}

	// Admin sees everything, newest first by default.
	entries, total, err := store.Search(ctx, AdminScope(), Unfiltered(), listquery.Pagination{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 3 {
		t.Errorf("Search() admin total = %d, want 3", total)
	}
	if len(entries) != 3 || entries[0].Seq != 3 {
		t.Errorf("Search() first Seq = %d, want 3 (newest first)", entries[0].Seq)
	}

	// Reporters only see their own entries.
	_, total, err = store.Search(ctx, alice, Unfiltered(), listquery.Pagination{})
	if err != nil {
		t.Fatalf("Search() reporter error = %v", err)
	}
	if total != 2 {
		t.Errorf("Search() reporter total = %d, want 2", total)
	}

	// Type filter.
	f := Unfiltered()
	f.TypeID = 1
	_, total, err = store.Search(ctx, AdminScope(), f, listquery.Pagination{})
	if err != nil {
		t.Fatalf("Search() type error = %v", err)
	}
	if total != 2 {
		t.Errorf("Search() type total = %d, want 2", total)
	}

	// Status filter.
	f = Unfiltered()
	f.Status = models.StatusDraft
	_, total, err = store.Search(ctx, AdminScope(), f, listquery.Pagination{})
	if err != nil {
		t.Fatalf("Search() status error = %v", err)
	}
	if total != 1 {
		t.Errorf("Search() status total = %d, want 1", total)
	}

	// Free-text search on the message.
	f = Unfiltered()
	f.SearchText = "handrail"
	_, total, err = store.Search(ctx, AdminScope(), f, listquery.Pagination{})
	if err != nil {
		t.Fatalf("Search() text error = %v", err)
	}
	if total != 2 {
		t.Errorf("Search() text total = %d, want 2", total)
	}
}

func TestStore_FindAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sc := reporterScope()
	for i := 0; i < 3; i++ {
		if _, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: "entry"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	entries, err := store.FindAll(ctx, AdminScope(), Unfiltered(), "id", listquery.SortAsc)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("FindAll() = %d entries, want 3", len(entries))
	}
	if entries[0].Seq != 1 || entries[2].Seq != 3 {
		t.Errorf("FindAll() order = %d..%d, want 1..3", entries[0].Seq, entries[2].Seq)
	}
}

func TestStore_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sc := reporterScope()
	if _, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: "a", Action: models.ActionSubmit}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Save(ctx, sc, SaveInput{TypeID: 2, Message: "b"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Save(ctx, sc, SaveInput{TypeID: 1, Message: "c"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	byStatus, err := store.CountByStatus(ctx, AdminScope())
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if byStatus[models.StatusDraft] != 2 || byStatus[models.StatusSubmitted] != 1 {
		t.Errorf("CountByStatus() = %v, want draft:2 submitted:1", byStatus)
	}

	byType, err := store.CountByType(ctx, AdminScope())
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if byType[1] != 2 || byType[2] != 1 {
		t.Errorf("CountByType() = %v, want 1:2 2:1", byType)
	}
}
