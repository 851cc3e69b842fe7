package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/mocks"
	"github.com/iho/generalledger/internal/usecase"
)

func newJournalUseCaseWithMocks(ctrl *gomock.Controller) (*usecase.JournalUseCase, *mocks.MockDomainRepository, *mocks.MockEntryRepository) {
	domainRepo := mocks.NewMockDomainRepository(ctrl)
	entryRepo := mocks.NewMockEntryRepository(ctrl)

	uc := usecase.NewJournalUseCase(
		mocks.NewMockTransactionManager(ctrl),
		mocks.NewMockRetrier(ctrl),
		domainRepo,
		mocks.NewMockCurrencyRepository(ctrl),
		mocks.NewMockAccountRepository(ctrl),
		mocks.NewMockBalanceRepository(ctrl),
		entryRepo,
		mocks.NewMockIDGenerator(ctrl),
	)

	return uc, domainRepo, entryRepo
}

func TestJournalUseCase_GetEntryDelegatesToRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _, entryRepo := newJournalUseCaseWithMocks(ctrl)

	entryRepo.EXPECT().GetByID(gomock.Any(), "entry-1").Return(&domain.JournalEntry{
		ID:       "entry-1",
		Currency: "CAD",
		Details: []domain.JournalDetail{
			{AccountCode: "1310", Amount: decimal.RequireFromString("-520.00")},
			{AccountCode: "4110", Amount: decimal.RequireFromString("520.00")},
		},
	}, nil)

	entry, err := uc.GetEntry(context.Background(), "entry-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ID != "entry-1" || len(entry.Details) != 2 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestJournalUseCase_ListEntriesClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, domainRepo, entryRepo := newJournalUseCaseWithMocks(ctrl)

	domainRepo.EXPECT().GetByCode(gomock.Any(), "GL").Return(&domain.LedgerDomain{UUID: "dom-1", Code: "GL"}, nil).Times(2)
	entryRepo.EXPECT().ListByDomain(gomock.Any(), "dom-1", 20, 0).Return(nil, nil)
	entryRepo.EXPECT().ListByDomain(gomock.Any(), "dom-1", 100, 0).Return(nil, nil)

	// Zero limit falls back to the default page size.
	if _, err := uc.ListEntries(context.Background(), usecase.ListEntriesInput{DomainCode: "GL"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Oversized limits are capped.
	if _, err := uc.ListEntries(context.Background(), usecase.ListEntriesInput{DomainCode: "GL", Limit: 5000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJournalUseCase_ListEntriesUnknownDomain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, domainRepo, _ := newJournalUseCaseWithMocks(ctrl)

	domainRepo.EXPECT().GetByCode(gomock.Any(), "NOPE").Return(nil, domain.ErrDomainNotFound)

	if _, err := uc.ListEntries(context.Background(), usecase.ListEntriesInput{DomainCode: "NOPE"}); err != domain.ErrDomainNotFound {
		t.Fatalf("expected ErrDomainNotFound, got %v", err)
	}
}
