package loan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lendbook/lendbook/internal/repay"
)

func newTestService() (*Service, Repository, *repay.MemoryEngine) {
	engine := repay.NewMemoryEngine(50, nil)
	repo := NewMemoryRepository(engine)
	return NewService(repo), repo, engine
}

func TestCreateGeneratesLoanNumberAndSchedule(t *testing.T) {
	svc, _, engine := newTestService()

	req := validRequest()
	req.LoanNumber = ""
	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(result.LoanNumber, "LN-") {
		t.Fatalf("generated loan number should carry the LN- prefix, got %s", result.LoanNumber)
	}
	if result.RepayCount != 4 {
		t.Fatalf("expected 4 installments, got %d", result.RepayCount)
	}
	if engine.InstallmentCount(result.LoanNumber) != 4 {
		t.Fatalf("installments not written to the repay side")
	}
}

func TestCreateRejectsDuplicateWithoutReplaceFlag(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Create(context.Background(), validRequest()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), validRequest())
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateReplacesWhenForced(t *testing.T) {
	svc, _, engine := newTestService()

	if _, err := svc.Create(context.Background(), validRequest()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	req := validRequest()
	req.Term = 2
	req.ForceReplace = true
	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !result.Replaced {
		t.Fatal("result should flag the replacement")
	}
	if engine.InstallmentCount(req.LoanNumber) != 2 {
		t.Fatalf("old schedule should be gone, got %d installments", engine.InstallmentCount(req.LoanNumber))
	}
}

func TestRepairScheduleAfterPartialFailure(t *testing.T) {
	svc, repo, engine := newTestService()

	FailScheduleInsert(repo, true)
	req := validRequest()
	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, ErrScheduleMissing) {
		t.Fatalf("expected ErrScheduleMissing, got %v", err)
	}

	// Loan row survived; schedule did not.
	_, count, err := svc.Get(context.Background(), req.LoanNumber)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty schedule, got %d", count)
	}

	FailScheduleInsert(repo, false)
	n, err := svc.RepairSchedule(context.Background(), req.LoanNumber)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if n != 4 || engine.InstallmentCount(req.LoanNumber) != 4 {
		t.Fatalf("repair should restore the full schedule, got %d", n)
	}

	if _, err := svc.RepairSchedule(context.Background(), req.LoanNumber); !errors.Is(err, ErrScheduleExists) {
		t.Fatalf("second repair should refuse, got %v", err)
	}
}

func TestSignContractOpensVisibility(t *testing.T) {
	svc, repo, _ := newTestService()

	req := validRequest()
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}

	signed, err := repo.ContractSigned(context.Background(), req.LoanNumber)
	if err != nil || signed {
		t.Fatalf("new loan should start unsigned: signed=%v err=%v", signed, err)
	}

	if err := svc.SignContract(context.Background(), req.LoanNumber, 9999, "/signatures/x.jpg"); !errors.Is(err, ErrClientMismatch) {
		t.Fatalf("wrong client should not sign, got %v", err)
	}

	if err := svc.SignContract(context.Background(), req.LoanNumber, req.CustomerID, "/signatures/x.jpg"); err != nil {
		t.Fatalf("sign: %v", err)
	}

	info, err := svc.CustomerInfo(context.Background(), req.LoanNumber, req.CustomerID)
	if err != nil {
		t.Fatalf("customer info: %v", err)
	}
	if !info.ContractSigned || info.SignedPhoto != "/signatures/x.jpg" {
		t.Fatalf("signing state not recorded: %+v", info)
	}
}

func TestRecordsByClient(t *testing.T) {
	svc, _, _ := newTestService()

	first := validRequest()
	second := validRequest()
	second.LoanNumber = "LN-TEST02"
	for _, req := range []CreateRequest{first, second} {
		if _, err := svc.Create(context.Background(), req); err != nil {
			t.Fatalf("create %s: %v", req.LoanNumber, err)
		}
	}

	records, err := svc.Records(context.Background(), first.CustomerID)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	records, err = svc.Records(context.Background(), 4242)
	if err != nil {
		t.Fatalf("records for unknown client: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("unknown client should have no records, got %d", len(records))
	}
}
