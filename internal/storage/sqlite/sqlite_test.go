package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateTransaction generates ID and seeds the cache", func(t *testing.T) {
		e := &models.Transaction{
			Kind: models.KindExpense, Amount: 10000, PayerID: "me",
			Method:       models.SplitEqual,
			Splits:       map[string]int64{"me": 5000, "alice": 5000},
			Participants: []string{"alice"},
			Category:     "food",
		}
		if err := store.CreateTransaction(ctx, e); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if e.ID == "" {
			t.Error("Expected transaction ID to be generated")
		}
		if e.Timestamp == 0 {
			t.Error("Expected timestamp to be set")
		}
		if e.SpaceID != models.DefaultSpaceID {
			t.Errorf("SpaceID = %s, want %s", e.SpaceID, models.DefaultSpaceID)
		}

		got, err := store.GetTransaction(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if got.CachedNetAmount != 10000 {
			t.Errorf("CachedNetAmount = %d, want 10000", got.CachedNetAmount)
		}
	})

	t.Run("GetTransaction retrieves the complete record", func(t *testing.T) {
		original := &models.Transaction{
			Kind: models.KindSettlement, Amount: 4000, PayerID: "alice",
			Participants: []string{"alice"},
			Links:        []models.Link{{ParentID: "some-parent", Allocated: 4000}},
			Note:         "dinner settled",
		}
		if err := store.CreateTransaction(ctx, original); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		got, err := store.GetTransaction(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if got.Kind != models.KindSettlement || got.Amount != 4000 || got.PayerID != "alice" {
			t.Errorf("round trip mismatch: %+v", got)
		}
		if len(got.Participants) != 1 || got.Participants[0] != "alice" {
			t.Errorf("Participants = %v, want [alice]", got.Participants)
		}
		if len(got.Links) != 1 || got.Links[0] != (models.Link{ParentID: "some-parent", Allocated: 4000}) {
			t.Errorf("Links = %v, want the stored link", got.Links)
		}
		if !got.HasParent("some-parent") {
			t.Error("ParentIDs not derived from links")
		}
		if got.Note != "dinner settled" {
			t.Errorf("Note = %q, want 'dinner settled'", got.Note)
		}
	})

	t.Run("GetTransaction unknown ID", func(t *testing.T) {
		_, err := store.GetTransaction(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestParentSummaryRecompute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := &models.Transaction{
		Kind: models.KindExpense, Amount: 10000, PayerID: "me",
		Splits: map[string]int64{"me": 5000, "alice": 5000}, Participants: []string{"alice"},
	}
	if err := store.CreateTransaction(ctx, parent); err != nil {
		t.Fatalf("create parent failed: %v", err)
	}

	refund := &models.Transaction{
		Kind: models.KindProductRefund, Amount: -3000, PayerID: "me",
		Splits: map[string]int64{"me": -1500, "alice": -1500}, Participants: []string{"alice"},
		Links: []models.Link{{ParentID: parent.ID, Allocated: -3000}},
	}

	t.Run("child create refreshes the parent cache", func(t *testing.T) {
		if err := store.CreateTransaction(ctx, refund); err != nil {
			t.Fatalf("create refund failed: %v", err)
		}
		got, err := store.GetTransaction(ctx, parent.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if got.CachedNetAmount != 7000 {
			t.Errorf("CachedNetAmount = %d, want 7000", got.CachedNetAmount)
		}
		if !got.CachedHasRefunds {
			t.Error("CachedHasRefunds = false, want true")
		}
	})

	t.Run("child edit refreshes the parent cache", func(t *testing.T) {
		refund.Amount = -2000
		refund.Splits = map[string]int64{"me": -1000, "alice": -1000}
		refund.Links = []models.Link{{ParentID: parent.ID, Allocated: -2000}}
		if err := store.UpdateTransaction(ctx, refund); err != nil {
			t.Fatalf("update refund failed: %v", err)
		}
		got, _ := store.GetTransaction(ctx, parent.ID)
		if got.CachedNetAmount != 8000 {
			t.Errorf("CachedNetAmount = %d, want 8000", got.CachedNetAmount)
		}
	})

	t.Run("moving a link recomputes the previous parent too", func(t *testing.T) {
		other := &models.Transaction{
			Kind: models.KindExpense, Amount: 6000, PayerID: "me",
			Splits: map[string]int64{"me": 3000, "alice": 3000}, Participants: []string{"alice"},
		}
		if err := store.CreateTransaction(ctx, other); err != nil {
			t.Fatalf("create other failed: %v", err)
		}

		refund.Links = []models.Link{{ParentID: other.ID, Allocated: -2000}}
		if err := store.UpdateTransaction(ctx, refund); err != nil {
			t.Fatalf("update refund failed: %v", err)
		}

		old, _ := store.GetTransaction(ctx, parent.ID)
		if old.CachedNetAmount != 10000 {
			t.Errorf("previous parent CachedNetAmount = %d, want 10000", old.CachedNetAmount)
		}
		if old.CachedHasRefunds {
			t.Error("previous parent still flagged as refunded")
		}
		moved, _ := store.GetTransaction(ctx, other.ID)
		if moved.CachedNetAmount != 4000 {
			t.Errorf("new parent CachedNetAmount = %d, want 4000", moved.CachedNetAmount)
		}

		// Move it back for the remaining subtests.
		refund.Links = []models.Link{{ParentID: parent.ID, Allocated: -2000}}
		if err := store.UpdateTransaction(ctx, refund); err != nil {
			t.Fatalf("restore refund failed: %v", err)
		}
	})

	t.Run("soft delete restores the parent cache", func(t *testing.T) {
		if err := store.DeleteTransaction(ctx, refund.ID); err != nil {
			t.Fatalf("delete refund failed: %v", err)
		}
		got, _ := store.GetTransaction(ctx, parent.ID)
		if got.CachedNetAmount != 10000 {
			t.Errorf("CachedNetAmount = %d, want 10000", got.CachedNetAmount)
		}
		if got.CachedHasRefunds {
			t.Error("CachedHasRefunds = true after refund deleted")
		}

		// The record itself survives, flagged deleted.
		gone, err := store.GetTransaction(ctx, refund.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if !gone.IsDeleted {
			t.Error("IsDeleted = false, want true")
		}
	})
}

func TestQueryByParent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := &models.Transaction{
		Kind: models.KindExpense, Amount: 10000, PayerID: "me",
		Splits: map[string]int64{"alice": 10000}, Participants: []string{"alice"},
	}
	if err := store.CreateTransaction(ctx, parent); err != nil {
		t.Fatalf("create parent failed: %v", err)
	}

	s1 := &models.Transaction{
		Kind: models.KindSettlement, Amount: 3000, PayerID: "alice", Participants: []string{"alice"},
		Links: []models.Link{{ParentID: parent.ID, Allocated: 3000}},
	}
	s2 := &models.Transaction{
		Kind: models.KindSettlement, Amount: 2000, PayerID: "alice", Participants: []string{"alice"},
		Links: []models.Link{{ParentID: parent.ID, Allocated: 2000}},
	}
	unrelated := &models.Transaction{
		Kind: models.KindSettlement, Amount: 500, PayerID: "alice", Participants: []string{"alice"},
	}
	for _, txn := range []*models.Transaction{s1, s2, unrelated} {
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	children, err := store.QueryByParent(ctx, parent.ID)
	if err != nil {
		t.Fatalf("QueryByParent failed: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}

	if err := store.DeleteTransaction(ctx, s2.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	children, err = store.QueryByParent(ctx, parent.ID)
	if err != nil {
		t.Fatalf("QueryByParent failed: %v", err)
	}
	if len(children) != 1 || children[0].ID != s1.ID {
		t.Errorf("children = %v, want only %s", children, s1.ID)
	}
}

func TestParticipants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &models.Participant{Name: "Alice"}
	if err := store.CreateParticipant(ctx, p); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}
	if p.ID == "" {
		t.Error("Expected participant ID to be generated")
	}

	me := &models.Participant{ID: models.PrimaryUserID, Name: "Me"}
	if err := store.CreateParticipant(ctx, me); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}

	if err := store.ArchiveParticipant(ctx, p.ID); err != nil {
		t.Fatalf("ArchiveParticipant failed: %v", err)
	}
	if err := store.ArchiveParticipant(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	participants, err := store.ListParticipants(ctx)
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("got %d participants, want 2", len(participants))
	}
	for _, got := range participants {
		if got.ID == p.ID && !got.Archived {
			t.Error("archived flag not persisted")
		}
	}
}
