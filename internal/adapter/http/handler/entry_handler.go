package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/generalledger/internal/adapter/http/dto"
	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/infrastructure/metrics"
	"github.com/iho/generalledger/internal/usecase"
)

// JournalService defines the behavior needed by EntryHandler.
type JournalService interface {
	PostEntry(ctx context.Context, input usecase.EntryInput) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
	UpdateEntry(ctx context.Context, id, revision string, input usecase.EntryInput) (*domain.JournalEntry, error)
	DeleteEntry(ctx context.Context, id, revision string) error
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error)
}

// EntryHandler handles journal entry HTTP requests.
type EntryHandler struct {
	journalUC JournalService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(journalUC JournalService) *EntryHandler {
	return &EntryHandler{journalUC: journalUC}
}

// Post posts a new journal entry.
func (h *EntryHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, mapDomainError(err), "invalid entry", err.Error())
		return
	}

	timer := metrics.NewPostingTimer()
	entry, err := h.journalUC.PostEntry(r.Context(), input)
	timer.ObserveDuration()

	if err != nil {
		metrics.RecordEntryError(err)
		writeError(w, mapDomainError(err), "failed to post entry", err.Error())
		return
	}

	metrics.EntriesPosted.Inc()
	writeJSON(w, http.StatusCreated, dto.EntryFromModel(entry))
}

// Get retrieves a journal entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := h.journalUC.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromModel(entry))
}

// Update replaces a journal entry under optimistic revision check.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, mapDomainError(err), "invalid entry", err.Error())
		return
	}

	entry, err := h.journalUC.UpdateEntry(r.Context(), id, req.Revision, input)
	if err != nil {
		metrics.RecordEntryError(err)
		writeError(w, mapDomainError(err), "failed to update entry", err.Error())
		return
	}

	metrics.EntriesUpdated.Inc()
	writeJSON(w, http.StatusOK, dto.EntryFromModel(entry))
}

// Delete reverses and removes a journal entry. The revision token is passed
// as a query parameter since DELETE carries no body.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	revision := r.URL.Query().Get("revision")
	if revision == "" {
		writeError(w, http.StatusBadRequest, "missing revision", "the revision query parameter is required")
		return
	}

	if err := h.journalUC.DeleteEntry(r.Context(), id, revision); err != nil {
		metrics.RecordEntryError(err)
		writeError(w, mapDomainError(err), "failed to delete entry", err.Error())
		return
	}

	metrics.EntriesDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// List lists a domain's journal entries.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	entries, err := h.journalUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		DomainCode: code,
		Limit:      parseIntQuery(r, "limit", 20),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromModel(entries))
}
