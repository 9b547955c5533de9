package service

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ParticipantService handles the participant roster.
type ParticipantService struct {
	store storage.Store
}

// NewParticipantService creates a new ParticipantService with the given
// storage backend.
func NewParticipantService(store storage.Store) *ParticipantService {
	return &ParticipantService{store: store}
}

// RegisterRoutes attaches the participant endpoints to mux.
func (s *ParticipantService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/participants", s.handleCreate)
	mux.HandleFunc("GET /api/participants", s.handleList)
	mux.HandleFunc("DELETE /api/participants/{id}", s.handleArchive)
}

func (s *ParticipantService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req participantJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	p := &models.Participant{ID: req.ID, Name: req.Name}
	if err := s.store.CreateParticipant(r.Context(), p); err != nil {
		slog.Error("CreateParticipant failed", "error", err)
		writeStoreError(w, err)
		return
	}
	slog.Info("Created participant", "participant_id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, toParticipantJSON(p))
}

func (s *ParticipantService) handleList(w http.ResponseWriter, r *http.Request) {
	participants, err := s.store.ListParticipants(r.Context())
	if err != nil {
		slog.Error("ListParticipants failed", "error", err)
		writeStoreError(w, err)
		return
	}

	out := make([]participantJSON, len(participants))
	for i := range participants {
		out[i] = toParticipantJSON(&participants[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": out})
}

// handleArchive soft-removes a participant. The primary user cannot be
// archived: every balance is computed from their point of view.
func (s *ParticipantService) handleArchive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == models.PrimaryUserID {
		writeError(w, http.StatusBadRequest, "cannot archive the primary user")
		return
	}
	if err := s.store.ArchiveParticipant(r.Context(), id); err != nil {
		slog.Error("ArchiveParticipant failed", "participant_id", id, "error", err)
		writeStoreError(w, err)
		return
	}
	slog.Info("Archived participant", "participant_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
