package evaluation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/iwvelando/loan-desk/internal/config"
	"github.com/iwvelando/loan-desk/internal/eligibility"
	"go.uber.org/zap"
)

type recordingObserver struct {
	mu       sync.Mutex
	verdicts []string
	purposes []string
	codes    [][]string
	caps     int
}

func (o *recordingObserver) ObserveEvaluation(verdict, purpose string, reasonCodes []string, capApplied bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verdicts = append(o.verdicts, verdict)
	o.purposes = append(o.purposes, purpose)
	o.codes = append(o.codes, reasonCodes)
	if capApplied {
		o.caps++
	}
}

func TestEvaluateAll(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	conf, err := config.LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	observer := &recordingObserver{}
	results, err := EvaluateAll(context.Background(), logger, *conf, observer)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}

	expected := []struct {
		name    string
		verdict eligibility.Verdict
		limit   string
		ltv     int
	}{
		{"Gangnam apartment, no home", eligibility.VerdictIneligible, "400", 40},
		{"Provincial first purchase", eligibility.VerdictEligible, "700", 70},
		{"Living fund top-up", eligibility.VerdictIneligible, "70", 40},
	}

	if len(results) != len(expected) {
		t.Fatalf("Expected %d results, got %d", len(expected), len(results))
	}
	for i, want := range expected {
		got := results[i]
		if got.Name != want.name {
			t.Errorf("result %d: expected name %s, got %s", i, want.name, got.Name)
		}
		if got.Result.Verdict != want.verdict {
			t.Errorf("%s: expected verdict %s, got %s", want.name, want.verdict, got.Result.Verdict)
		}
		if got.Result.FinalMaxLimit.String() != want.limit {
			t.Errorf("%s: expected limit %s, got %s", want.name, want.limit, got.Result.FinalMaxLimit)
		}
		if got.Result.LTVPercent != want.ltv {
			t.Errorf("%s: expected LTV %d, got %d", want.name, want.ltv, got.Result.LTVPercent)
		}
	}

	if len(observer.verdicts) != 3 {
		t.Fatalf("Expected 3 observations, got %d", len(observer.verdicts))
	}
	if observer.verdicts[1] != "ELIGIBLE" || observer.purposes[2] != "LIVING_STABILIZATION" {
		t.Errorf("Unexpected observations %v %v", observer.verdicts, observer.purposes)
	}
	if observer.caps != 2 {
		t.Errorf("Expected 2 capped evaluations, got %d", observer.caps)
	}
	if len(observer.codes[0]) != 1 || observer.codes[0][0] != "POLICY_CAP_EXCEEDED" {
		t.Errorf("Expected POLICY_CAP_EXCEEDED for first application, got %v", observer.codes[0])
	}
}

func TestEvaluateAllNoActiveApplications(t *testing.T) {
	conf := config.Configuration{
		Applications: []config.Application{{Name: "draft", Purpose: "PURCHASE"}},
	}

	_, err := EvaluateAll(context.Background(), nil, conf, nil)
	if !errors.Is(err, ErrNoActiveApplications) {
		t.Fatalf("Expected ErrNoActiveApplications, got %v", err)
	}
}

func TestEvaluateAllConversionError(t *testing.T) {
	conf := config.Configuration{
		Applications: []config.Application{
			{Name: "fine", Active: true, Purpose: "PURCHASE", Region: "OTHER"},
			{Name: "typo", Active: true, Purpose: "REFINANCE"},
		},
	}

	_, err := EvaluateAll(context.Background(), zap.NewNop(), conf, nil)
	if err == nil {
		t.Fatal("Expected conversion error")
	}
	if !strings.Contains(err.Error(), "typo") {
		t.Errorf("Expected error to name the application, got %v", err)
	}
}

func TestEvaluateAllClearsUnofferedOwnership(t *testing.T) {
	conf := config.Configuration{
		Applications: []config.Application{{
			Name: "mismatch", Active: true, Purpose: "PURCHASE", Region: "OTHER",
			Ownership: "TWO_OR_MORE_HOMES", HousePrice: 1000, RequestedAmount: 100, DSR: 10,
		}},
	}

	results, err := EvaluateAll(context.Background(), zap.NewNop(), conf, nil)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	if results[0].Application.OwnershipStatus != eligibility.OwnershipUnset {
		t.Errorf("Expected ownership to be cleared, got %s", results[0].Application.OwnershipStatus)
	}
	if results[0].Result.Verdict != eligibility.VerdictPending {
		t.Errorf("Expected pending verdict, got %s", results[0].Result.Verdict)
	}
}

func TestEvaluateAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conf := config.Configuration{
		Applications: []config.Application{{Name: "any", Active: true}},
	}
	if _, err := EvaluateAll(ctx, zap.NewNop(), conf, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
