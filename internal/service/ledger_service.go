package service

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// summaryRecomputer is implemented by store adapters that can refresh one
// parent's cached summary in place. The health endpoint uses it to repair
// cache divergence when the adapter offers it.
type summaryRecomputer interface {
	RecomputeParentSummary(ctx context.Context, parentID string) error
}

// LedgerService serves the read-side aggregations: balances, outstanding
// debt, settlement suggestions and the data-health scan.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// RegisterRoutes attaches the aggregation endpoints to mux.
func (s *LedgerService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/balances", s.handleBalances)
	mux.HandleFunc("GET /api/outstanding", s.handleOutstanding)
	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

func (s *LedgerService) load(ctx context.Context, spaceID string) ([]models.Transaction, []models.Participant, error) {
	if spaceID == "" {
		spaceID = models.DefaultSpaceID
	}
	transactions, err := s.store.ListTransactions(ctx, spaceID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, nil, err
	}
	return transactions, participants, nil
}

func (s *LedgerService) handleBalances(w http.ResponseWriter, r *http.Request) {
	transactions, participants, err := s.load(r.Context(), r.URL.Query().Get("space"))
	if err != nil {
		slog.Error("Balances: failed to load ledger", "error", err)
		writeStoreError(w, err)
		return
	}
	b := ledger.ComputeBalances(transactions, participants, time.Now())
	writeJSON(w, http.StatusOK, toBalancesJSON(b))
}

func (s *LedgerService) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parent")
	if parentID == "" {
		writeError(w, http.StatusBadRequest, "parent required")
		return
	}

	parent, err := s.store.GetTransaction(r.Context(), parentID)
	if err != nil {
		slog.Error("Outstanding: failed to get parent", "parent_id", parentID, "error", err)
		writeStoreError(w, err)
		return
	}

	debtorID := r.URL.Query().Get("debtor")
	if debtorID == "" {
		debtorID = parent.Counterpart()
	}
	if debtorID == "" {
		// Expenses carry no single counterpart to fall back on.
		writeError(w, http.StatusBadRequest, "debtor required for transactions without a counterpart")
		return
	}

	all, err := s.store.ListTransactions(r.Context(), parent.SpaceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// exclude lets a draft editing an existing record leave itself out of
	// the resolution.
	outstanding := ledger.Outstanding(parent, debtorID, all, r.URL.Query().Get("exclude"))
	writeJSON(w, http.StatusOK, map[string]any{
		"parent_id":   parentID,
		"debtor_id":   debtorID,
		"outstanding": outstanding,
	})
}

func (s *LedgerService) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	threshold := int64(ledger.MaterialityThreshold)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a non-negative integer")
			return
		}
		threshold = parsed
	}

	transactions, participants, err := s.load(r.Context(), r.URL.Query().Get("space"))
	if err != nil {
		slog.Error("Suggestions: failed to load ledger", "error", err)
		writeStoreError(w, err)
		return
	}

	b := ledger.ComputeBalances(transactions, participants, time.Now())
	transfers := ledger.SuggestSettlements(b, threshold)
	if transfers == nil {
		transfers = []ledger.Transfer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transfers": transfers})
}

// handleHealth scans the ledger for structural problems. Cache divergence is
// the one recoverable kind: when the store can recompute summaries the
// handler repairs those in place and reports them as repaired.
func (s *LedgerService) handleHealth(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.ListTransactions(r.Context(), spaceOrDefault(r.URL.Query().Get("space")))
	if err != nil {
		slog.Error("Health: failed to load ledger", "error", err)
		writeStoreError(w, err)
		return
	}

	issues := ledger.ScanHealth(transactions)
	repaired := 0
	if rec, ok := s.store.(summaryRecomputer); ok {
		for _, issue := range issues {
			if issue.Kind != ledger.IssueCacheDivergence {
				continue
			}
			if err := rec.RecomputeParentSummary(r.Context(), issue.TransactionID); err != nil {
				slog.Warn("Health: failed to repair cached summary", "transaction_id", issue.TransactionID, "error", err)
				continue
			}
			repaired++
		}
	}
	if repaired > 0 {
		slog.Info("Repaired diverged cached summaries", "count", repaired)
	}
	if issues == nil {
		issues = []ledger.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issues":   issues,
		"repaired": repaired,
	})
}

func spaceOrDefault(spaceID string) string {
	if spaceID == "" {
		return models.DefaultSpaceID
	}
	return spaceID
}
