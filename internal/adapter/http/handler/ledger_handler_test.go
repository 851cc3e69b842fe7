package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/generalledger/internal/adapter/http/dto"
	"github.com/iho/generalledger/internal/chart"
	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

type ledgerServiceStub struct {
	createFn       func(ctx context.Context, input usecase.CreateLedgerInput) (*domain.LedgerDomain, error)
	getFn          func(ctx context.Context, code string) (*domain.LedgerDomain, error)
	updateFn       func(ctx context.Context, input usecase.UpdateDomainInput) (*domain.LedgerDomain, error)
	getBalanceFn   func(ctx context.Context, domainCode, accountCode, currency string) (*domain.LedgerBalance, error)
	listBalancesFn func(ctx context.Context, domainCode, accountCode string) ([]*domain.LedgerBalance, error)
}

func (s *ledgerServiceStub) CreateLedger(ctx context.Context, input usecase.CreateLedgerInput) (*domain.LedgerDomain, error) {
	return s.createFn(ctx, input)
}

func (s *ledgerServiceStub) GetDomain(ctx context.Context, code string) (*domain.LedgerDomain, error) {
	return s.getFn(ctx, code)
}

func (s *ledgerServiceStub) UpdateDomain(ctx context.Context, input usecase.UpdateDomainInput) (*domain.LedgerDomain, error) {
	return s.updateFn(ctx, input)
}

func (s *ledgerServiceStub) GetBalance(ctx context.Context, domainCode, accountCode, currency string) (*domain.LedgerBalance, error) {
	return s.getBalanceFn(ctx, domainCode, accountCode, currency)
}

func (s *ledgerServiceStub) ListAccountBalances(ctx context.Context, domainCode, accountCode string) ([]*domain.LedgerBalance, error) {
	return s.listBalancesFn(ctx, domainCode, accountCode)
}

func sampleDomain() *domain.LedgerDomain {
	return &domain.LedgerDomain{
		UUID:            "dom-1",
		Code:            "GL",
		CurrencyDefault: "CAD",
		Revision:        "rev-1",
	}
}

func testChartRegistry(t *testing.T) *chart.Registry {
	t.Helper()

	dir := t.TempDir()
	tpl := `name: mini
accounts:
  - code: "1000"
    category: true
    debit: true
    children:
      - code: "1120"
        debit: true
      - code: "1310"
        debit: true
`
	if err := os.WriteFile(filepath.Join(dir, "mini.yaml"), []byte(tpl), 0o600); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	registry, err := chart.LoadDir(dir)
	if err != nil {
		t.Fatalf("failed to load charts: %v", err)
	}
	return registry
}

func TestLedgerHandler_Create(t *testing.T) {
	var got usecase.CreateLedgerInput
	stub := &ledgerServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLedgerInput) (*domain.LedgerDomain, error) {
			got = input
			return sampleDomain(), nil
		},
	}
	h := NewLedgerHandler(stub, testChartRegistry(t))

	body := `{
		"code": "GL",
		"currency_default": "CAD",
		"currencies": [{"code": "CAD", "decimals": 2}],
		"accounts": [
			{"code": "1000", "category": true, "debit": true, "children": [
				{"code": "1310", "debit": true}
			]}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.DomainCode != "GL" || len(got.Currencies) != 1 {
		t.Fatalf("unexpected input: %+v", got)
	}
	if len(got.Accounts) != 1 || len(got.Accounts[0].Children) != 1 {
		t.Fatalf("expected nested account inputs, got %+v", got.Accounts)
	}
}

func TestLedgerHandler_Create_FromTemplate(t *testing.T) {
	var got usecase.CreateLedgerInput
	stub := &ledgerServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLedgerInput) (*domain.LedgerDomain, error) {
			got = input
			return sampleDomain(), nil
		},
	}
	h := NewLedgerHandler(stub, testChartRegistry(t))

	body := `{"code": "GL", "currencies": [{"code": "CAD", "decimals": 2}], "template": "mini"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Code != "1000" {
		t.Fatalf("expected template accounts, got %+v", got.Accounts)
	}
	if len(got.Accounts[0].Children) != 2 {
		t.Fatalf("expected 2 children under 1000, got %d", len(got.Accounts[0].Children))
	}
}

func TestLedgerHandler_Create_UnknownTemplate(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLedgerInput) (*domain.LedgerDomain, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, testChartRegistry(t))

	body := `{"code": "GL", "currencies": [{"code": "CAD", "decimals": 2}], "template": "nope"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestLedgerHandler_Create_TemplateAndAccountsConflict(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{}, testChartRegistry(t))

	body := `{
		"code": "GL",
		"currencies": [{"code": "CAD", "decimals": 2}],
		"template": "mini",
		"accounts": [{"code": "9999"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestLedgerHandler_Create_DuplicateDomain(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateLedgerInput) (*domain.LedgerDomain, error) {
			return nil, domain.ErrDomainExists
		},
	}, testChartRegistry(t))

	body := `{"code": "GL", "currencies": [{"code": "CAD", "decimals": 2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestLedgerHandler_Get(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		getFn: func(ctx context.Context, code string) (*domain.LedgerDomain, error) {
			if code != "GL" {
				t.Fatalf("unexpected code: %s", code)
			}
			return sampleDomain(), nil
		},
	}, testChartRegistry(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/GL", nil)
	req = withURLParams(req, map[string]string{"code": "GL"})
	rr := httptest.NewRecorder()

	h.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp dto.DomainResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "GL" || resp.CurrencyDefault != "CAD" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_Update_StaleRevision(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateDomainInput) (*domain.LedgerDomain, error) {
			return nil, domain.ErrRevisionMismatch
		},
	}, testChartRegistry(t))

	body := `{"revision": "stale", "currency_default": "EUR"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/ledgers/GL", bytes.NewBufferString(body))
	req = withURLParams(req, map[string]string{"code": "GL"})
	rr := httptest.NewRecorder()

	h.Update(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestLedgerHandler_GetBalance(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		getBalanceFn: func(ctx context.Context, domainCode, accountCode, currency string) (*domain.LedgerBalance, error) {
			return &domain.LedgerBalance{
				Currency: currency,
				Amount:   decimal.RequireFromString("-520.00"),
				Revision: "rev-3",
			}, nil
		},
	}, testChartRegistry(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/GL/accounts/1310/balances/CAD", nil)
	req = withURLParams(req, map[string]string{"code": "GL", "accountCode": "1310", "currency": "CAD"})
	rr := httptest.NewRecorder()

	h.GetBalance(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Account != "1310" || !resp.Balance.Equal(decimal.RequireFromString("-520.00")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_ListBalances(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		listBalancesFn: func(ctx context.Context, domainCode, accountCode string) ([]*domain.LedgerBalance, error) {
			return []*domain.LedgerBalance{
				{Currency: "CAD", Amount: decimal.RequireFromString("-520.00")},
				{Currency: "EUR", Amount: decimal.RequireFromString("-100.00")},
			}, nil
		},
	}, testChartRegistry(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/GL/accounts/1310/balances", nil)
	req = withURLParams(req, map[string]string{"code": "GL", "accountCode": "1310"})
	rr := httptest.NewRecorder()

	h.ListBalances(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp []*dto.BalanceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(resp))
	}
}
