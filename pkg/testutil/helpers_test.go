package testutil

import (
	"fmt"
	"testing"

	"github.com/iwvelando/loan-desk/internal/eligibility"
	"github.com/iwvelando/loan-desk/pkg/output"
)

func TestFindEvaluation(t *testing.T) {
	results := []output.Evaluation{
		{Name: "Application A", Result: eligibility.Result{Verdict: eligibility.VerdictEligible}},
		{Name: "Application B", Result: eligibility.Result{Verdict: eligibility.VerdictIneligible}},
		{Name: "Another Application", Result: eligibility.Result{Verdict: eligibility.VerdictPending}},
	}

	tests := []struct {
		name          string
		searchName    string
		expectFound   bool
		expectVerdict eligibility.Verdict
	}{
		{"Find existing application A", "Application A", true, eligibility.VerdictEligible},
		{"Find existing application B", "Application B", true, eligibility.VerdictIneligible},
		{"Find application with longer name", "Another Application", true, eligibility.VerdictPending},
		{"Missing application", "Application C", false, ""},
		{"Empty name", "", false, ""},
		{"Case sensitive", "application a", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindEvaluation(results, tt.searchName)
			if !tt.expectFound {
				if got != nil {
					t.Errorf("FindEvaluation(%q) = %v, want nil", tt.searchName, got.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("FindEvaluation(%q) = nil, want result", tt.searchName)
			}
			if got.Result.Verdict != tt.expectVerdict {
				t.Errorf("FindEvaluation(%q) verdict = %s, want %s", tt.searchName, got.Result.Verdict, tt.expectVerdict)
			}
		})
	}
}

func TestFindEvaluationReturnsPointerIntoSlice(t *testing.T) {
	results := []output.Evaluation{{Name: "only"}}

	got := FindEvaluation(results, "only")
	got.Name = "renamed"
	if results[0].Name != "renamed" {
		t.Errorf("expected pointer into the slice, got copy")
	}

	if FindEvaluation(nil, "only") != nil {
		t.Errorf("expected nil for nil slice")
	}
}

func TestCaptureStdout(t *testing.T) {
	out := CaptureStdout(t, func() {
		fmt.Println("hello")
		fmt.Print("world")
	})
	if out != "hello\nworld" {
		t.Errorf("CaptureStdout() = %q", out)
	}

	if out := CaptureStdout(t, func() {}); out != "" {
		t.Errorf("expected empty capture, got %q", out)
	}
}
