package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// TransactionService handles transaction CRUD and the stateless link
// allocation planning endpoints.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a new TransactionService with the given
// storage backend.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// RegisterRoutes attaches the transaction endpoints to mux.
func (s *TransactionService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/transactions", s.handleCreate)
	mux.HandleFunc("GET /api/transactions", s.handleList)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/plan/attach", s.handlePlanAttach)
	mux.HandleFunc("POST /api/plan/detach", s.handlePlanDetach)
	mux.HandleFunc("POST /api/plan/reallocate", s.handlePlanReallocate)
}

// snapshot loads every transaction in the draft's space, soft-deleted rows
// included; the ledger functions skip those themselves.
func (s *TransactionService) snapshot(ctx context.Context, spaceID string) ([]models.Transaction, error) {
	if spaceID == "" {
		spaceID = models.DefaultSpaceID
	}
	return s.store.ListTransactions(ctx, spaceID)
}

func (s *TransactionService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := req.draft()
	all, err := s.snapshot(r.Context(), draft.SpaceID)
	if err != nil {
		slog.Error("CreateTransaction: failed to load snapshot", "error", err)
		writeStoreError(w, err)
		return
	}
	if errs := ledger.ValidateDraft(draft, all); len(errs) > 0 {
		slog.Info("CreateTransaction rejected", "errors", errs.Error())
		writeValidationErrors(w, errs)
		return
	}

	t := draft.Transaction()
	if err := s.store.CreateTransaction(r.Context(), t); err != nil {
		slog.Error("CreateTransaction failed", "error", err)
		writeStoreError(w, err)
		return
	}
	slog.Info("Created transaction", "transaction_id", t.ID, "kind", t.Kind, "amount", t.Amount)
	writeJSON(w, http.StatusCreated, toTransactionJSON(t))
}

func (s *TransactionService) handleList(w http.ResponseWriter, r *http.Request) {
	spaceID := r.URL.Query().Get("space")
	transactions, err := s.snapshot(r.Context(), spaceID)
	if err != nil {
		slog.Error("ListTransactions failed", "space_id", spaceID, "error", err)
		writeStoreError(w, err)
		return
	}

	out := make([]transactionJSON, 0, len(transactions))
	for i := range transactions {
		if transactions[i].IsDeleted {
			continue
		}
		out = append(out, toTransactionJSON(&transactions[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *TransactionService) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		slog.Error("GetTransaction failed", "transaction_id", id, "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

func (s *TransactionService) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.GetTransaction(r.Context(), id); err != nil {
		slog.Error("UpdateTransaction: failed to get existing record", "transaction_id", id, "error", err)
		writeStoreError(w, err)
		return
	}

	var req transactionJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := req.draft()
	draft.ID = id
	all, err := s.snapshot(r.Context(), draft.SpaceID)
	if err != nil {
		slog.Error("UpdateTransaction: failed to load snapshot", "error", err)
		writeStoreError(w, err)
		return
	}
	if errs := ledger.ValidateDraft(draft, all); len(errs) > 0 {
		slog.Info("UpdateTransaction rejected", "transaction_id", id, "errors", errs.Error())
		writeValidationErrors(w, errs)
		return
	}

	t := draft.Transaction()
	if err := s.store.UpdateTransaction(r.Context(), t); err != nil {
		slog.Error("UpdateTransaction failed", "transaction_id", id, "error", err)
		writeStoreError(w, err)
		return
	}
	slog.Info("Updated transaction", "transaction_id", id)
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

func (s *TransactionService) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		slog.Error("DeleteTransaction failed", "transaction_id", id, "error", err)
		writeStoreError(w, err)
		return
	}
	slog.Info("Deleted transaction", "transaction_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// writePlanError keeps planner rejections structured: validation failures go
// out as the usual {field, message} array, anything else as plain text.
func writePlanError(w http.ResponseWriter, err error) {
	var verrs ledger.ValidationErrors
	if errors.As(err, &verrs) {
		writeValidationErrors(w, verrs)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// planRequest carries a draft plus the parameters of one planning step. The
// endpoints are stateless: the client holds the draft, the server returns it
// transformed.
type planRequest struct {
	Draft    transactionJSON `json:"draft"`
	ParentID string          `json:"parent_id,omitempty"`
	Total    int64           `json:"total,omitempty"`
}

func (s *TransactionService) handlePlanAttach(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ParentID == "" {
		writeError(w, http.StatusBadRequest, "parent_id required")
		return
	}

	parent, err := s.store.GetTransaction(r.Context(), req.ParentID)
	if err != nil {
		slog.Error("PlanAttach: failed to get parent", "parent_id", req.ParentID, "error", err)
		writeStoreError(w, err)
		return
	}

	draft := req.Draft.draft()
	all, err := s.snapshot(r.Context(), parent.SpaceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if draft.Kind == models.KindProductRefund {
		err = ledger.AttachRefund(draft, parent, all)
	} else {
		err = ledger.AttachLink(draft, parent, all)
	}
	if err != nil {
		slog.Info("PlanAttach rejected", "parent_id", req.ParentID, "error", err)
		writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromDraft(draft))
}

func (s *TransactionService) handlePlanDetach(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft := req.Draft.draft()
	ledger.DetachLink(draft, req.ParentID)
	writeJSON(w, http.StatusOK, fromDraft(draft))
}

func (s *TransactionService) handlePlanReallocate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := req.Draft.draft()
	if draft.Kind == models.KindProductRefund {
		// Resizing a refund rescales its share table against the parent.
		if len(draft.Links) != 1 {
			writeError(w, http.StatusBadRequest, "refund draft must carry exactly one link")
			return
		}
		parent, err := s.store.GetTransaction(r.Context(), draft.Links[0].ParentID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		all, err := s.snapshot(r.Context(), parent.SpaceID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if err := ledger.ResizeRefund(draft, parent, all, req.Total); err != nil {
			writePlanError(w, err)
			return
		}
	} else if err := ledger.ReallocateTotal(draft, req.Total); err != nil {
		writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromDraft(draft))
}
