package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/generalledger/internal/adapter/http/dto"
	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

type journalServiceStub struct {
	postFn   func(ctx context.Context, input usecase.EntryInput) (*domain.JournalEntry, error)
	getFn    func(ctx context.Context, id string) (*domain.JournalEntry, error)
	updateFn func(ctx context.Context, id, revision string, input usecase.EntryInput) (*domain.JournalEntry, error)
	deleteFn func(ctx context.Context, id, revision string) error
	listFn   func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error)
}

func (s *journalServiceStub) PostEntry(ctx context.Context, input usecase.EntryInput) (*domain.JournalEntry, error) {
	return s.postFn(ctx, input)
}

func (s *journalServiceStub) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return s.getFn(ctx, id)
}

func (s *journalServiceStub) UpdateEntry(ctx context.Context, id, revision string, input usecase.EntryInput) (*domain.JournalEntry, error) {
	return s.updateFn(ctx, id, revision, input)
}

func (s *journalServiceStub) DeleteEntry(ctx context.Context, id, revision string) error {
	return s.deleteFn(ctx, id, revision)
}

func (s *journalServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error) {
	return s.listFn(ctx, input)
}

// withURLParams injects chi route parameters so handlers can be exercised
// without a full router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func sampleEntry() *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:          "01JC5TESTENTRY0000000000001",
		DomainUUID:  "dom-1",
		Currency:    "CAD",
		TransDate:   time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC),
		Description: "inventory purchase",
		Revision:    "01JC5TESTREV000000000000001",
		Details: []domain.JournalDetail{
			{ID: "d-1", AccountCode: "1310", Amount: decimal.RequireFromString("-520.00")},
			{ID: "d-2", AccountCode: "4110", Amount: decimal.RequireFromString("520.00")},
		},
	}
}

func TestEntryHandler_Post(t *testing.T) {
	var got usecase.EntryInput
	stub := &journalServiceStub{
		postFn: func(ctx context.Context, input usecase.EntryInput) (*domain.JournalEntry, error) {
			got = input
			return sampleEntry(), nil
		},
	}
	h := NewEntryHandler(stub)

	body := `{
		"domain": "GL",
		"currency": "CAD",
		"date": "2025-11-08",
		"description": "inventory purchase",
		"details": [
			{"account": "1310", "amount": "-520.00"},
			{"account": "4110", "amount": "520.00"}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Post(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.DomainCode != "GL" || got.Currency != "CAD" {
		t.Fatalf("unexpected use case input: %+v", got)
	}
	if len(got.Details) != 2 || !got.Details[0].Amount.Equal(decimal.RequireFromString("-520.00")) {
		t.Fatalf("unexpected details: %+v", got.Details)
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "01JC5TESTENTRY0000000000001" {
		t.Fatalf("unexpected entry id: %s", resp.ID)
	}
	if resp.Date != "2025-11-08" {
		t.Fatalf("unexpected date format: %s", resp.Date)
	}
}

func TestEntryHandler_Post_InvalidDate(t *testing.T) {
	h := NewEntryHandler(&journalServiceStub{
		postFn: func(ctx context.Context, input usecase.EntryInput) (*domain.JournalEntry, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	body := `{"domain": "GL", "currency": "CAD", "date": "08/11/2025", "details": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Post(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestEntryHandler_Post_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unbalanced", domain.ErrUnbalancedEntry, http.StatusBadRequest},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"category posting", domain.ErrCategoryPosting, http.StatusBadRequest},
		{"transaction conflict", domain.ErrTransactionConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEntryHandler(&journalServiceStub{
				postFn: func(ctx context.Context, input usecase.EntryInput) (*domain.JournalEntry, error) {
					return nil, tt.err
				},
			})

			body := `{"domain": "GL", "currency": "CAD", "date": "2025-11-08", "details": []}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewBufferString(body))
			rr := httptest.NewRecorder()

			h.Post(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Fatalf("expected error message in response")
			}
		})
	}
}

func TestEntryHandler_Get(t *testing.T) {
	stub := &journalServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.JournalEntry, error) {
			if id != "entry-1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return sampleEntry(), nil
		},
	}
	h := NewEntryHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries/entry-1", nil)
	req = withURLParams(req, map[string]string{"id": "entry-1"})
	rr := httptest.NewRecorder()

	h.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestEntryHandler_Get_NotFound(t *testing.T) {
	h := NewEntryHandler(&journalServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.JournalEntry, error) {
			return nil, domain.ErrEntryNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries/missing", nil)
	req = withURLParams(req, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()

	h.Get(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestEntryHandler_Update_PassesRevision(t *testing.T) {
	var gotID, gotRevision string
	stub := &journalServiceStub{
		updateFn: func(ctx context.Context, id, revision string, input usecase.EntryInput) (*domain.JournalEntry, error) {
			gotID, gotRevision = id, revision
			return sampleEntry(), nil
		},
	}
	h := NewEntryHandler(stub)

	body := `{
		"domain": "GL",
		"currency": "CAD",
		"date": "2025-11-08",
		"revision": "rev-7",
		"details": [
			{"account": "1310", "amount": "-520.00"},
			{"account": "4240", "amount": "520.00"}
		]
	}`

	req := httptest.NewRequest(http.MethodPut, "/api/v1/entries/entry-1", bytes.NewBufferString(body))
	req = withURLParams(req, map[string]string{"id": "entry-1"})
	rr := httptest.NewRecorder()

	h.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotID != "entry-1" || gotRevision != "rev-7" {
		t.Fatalf("unexpected id/revision: %s/%s", gotID, gotRevision)
	}
}

func TestEntryHandler_Update_StaleRevision(t *testing.T) {
	h := NewEntryHandler(&journalServiceStub{
		updateFn: func(ctx context.Context, id, revision string, input usecase.EntryInput) (*domain.JournalEntry, error) {
			return nil, domain.ErrRevisionMismatch
		},
	})

	body := `{"domain": "GL", "currency": "CAD", "date": "2025-11-08", "revision": "stale", "details": []}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/entries/entry-1", bytes.NewBufferString(body))
	req = withURLParams(req, map[string]string{"id": "entry-1"})
	rr := httptest.NewRecorder()

	h.Update(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestEntryHandler_Delete(t *testing.T) {
	var gotID, gotRevision string
	h := NewEntryHandler(&journalServiceStub{
		deleteFn: func(ctx context.Context, id, revision string) error {
			gotID, gotRevision = id, revision
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/entries/entry-1?revision=rev-7", nil)
	req = withURLParams(req, map[string]string{"id": "entry-1"})
	rr := httptest.NewRecorder()

	h.Delete(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if gotID != "entry-1" || gotRevision != "rev-7" {
		t.Fatalf("unexpected id/revision: %s/%s", gotID, gotRevision)
	}
}

func TestEntryHandler_Delete_MissingRevision(t *testing.T) {
	h := NewEntryHandler(&journalServiceStub{
		deleteFn: func(ctx context.Context, id, revision string) error {
			t.Fatal("service should not be called")
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/entries/entry-1", nil)
	req = withURLParams(req, map[string]string{"id": "entry-1"})
	rr := httptest.NewRecorder()

	h.Delete(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestEntryHandler_List(t *testing.T) {
	var gotInput usecase.ListEntriesInput
	h := NewEntryHandler(&journalServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error) {
			gotInput = input
			return []*domain.JournalEntry{sampleEntry()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/GL/entries?limit=5&offset=10", nil)
	req = withURLParams(req, map[string]string{"code": "GL"})
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotInput.DomainCode != "GL" || gotInput.Limit != 5 || gotInput.Offset != 10 {
		t.Fatalf("unexpected list input: %+v", gotInput)
	}

	var resp []*dto.EntryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(resp))
	}
}
