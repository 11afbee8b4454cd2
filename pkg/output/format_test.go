package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/iwvelando/loan-desk/internal/eligibility"
	"github.com/shopspring/decimal"
)

func sampleEvaluations() []Evaluation {
	capped := eligibility.LoanApplication{
		Purpose:          eligibility.PurposePurchase,
		Region:           eligibility.RegionRegulated,
		OwnershipStatus:  eligibility.OwnershipNoHome,
		SpecialCondition: eligibility.SpecialConditionNone,
		HousePrice:       decimal.NewFromInt(2000),
		RequestedAmount:  decimal.NewFromInt(700),
		DSR:              decimal.NewFromInt(40),
	}
	eligible := eligibility.LoanApplication{
		Purpose:          eligibility.PurposePurchase,
		Region:           eligibility.RegionMetroUnregulated,
		OwnershipStatus:  eligibility.OwnershipNoHome,
		SpecialCondition: eligibility.SpecialConditionNone,
		HousePrice:       decimal.NewFromInt(800),
		RequestedAmount:  decimal.NewFromInt(500),
		DSR:              decimal.NewFromInt(45),
	}
	pending := eligibility.LoanApplication{Purpose: eligibility.PurposeLivingStabilization}

	return []Evaluation{
		{Name: "Gangnam, no home", Application: capped, Result: eligibility.Evaluate(capped)},
		{Name: "Goyang", Application: eligible, Result: eligibility.Evaluate(eligible)},
		{Name: "Draft", Application: pending, Result: eligibility.Evaluate(pending)},
	}
}

func TestPrettyFormat(t *testing.T) {
	results := sampleEvaluations()

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	PrettyFormat(results)

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	output := buf.String()

	expected := []string{
		"--- Results for application Gangnam, no home ---",
		"Price     | 2,000.00M KRW",
		"LTV       | 40% = 800.00M KRW",
		"Limit     | 400.00M KRW",
		"Cap       | price over 1,500M KRW up to 2,500M KRW: max 400M KRW",
		"Verdict   | INELIGIBLE",
		"  x Policy cap exceeded:",
		"--- Results for application Goyang ---",
		"Verdict   | ELIGIBLE",
		"  ! " + eligibility.ObligationRegisterResidence,
		"Verdict   | PENDING",
		"  - " + eligibility.NoticeSelectRegion,
	}
	for _, fragment := range expected {
		if !strings.Contains(output, fragment) {
			t.Errorf("PrettyFormat output missing %q\n%s", fragment, output)
		}
	}

	if strings.HasSuffix(output, "\n\n") {
		t.Errorf("PrettyFormat should not end with a blank line")
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "csv", sampleEvaluations()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output does not parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(records))
	}
	if records[0][0] != "name" || len(records[0]) != len(csvHeader) {
		t.Errorf("Unexpected header: %v", records[0])
	}

	first := records[1]
	if first[0] != "Gangnam, no home" {
		t.Errorf("Expected quoted name with comma to survive, got %q", first[0])
	}
	if first[8] != "40" || first[9] != "800.00" || first[10] != "400.00" {
		t.Errorf("Unexpected LTV columns: %v", first[8:11])
	}
	if first[12] != "INELIGIBLE" || first[13] != "POLICY_CAP_EXCEEDED" {
		t.Errorf("Unexpected verdict columns: %v", first[12:14])
	}
	if records[3][12] != "PENDING" {
		t.Errorf("Expected pending draft, got %v", records[3][12])
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "json", sampleEvaluations()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded []struct {
		Name        string         `json:"name"`
		Application map[string]any `json:"application"`
		Result      struct {
			LTVPercent     int     `json:"ltvPercent"`
			FinalMaxLimit  float64 `json:"finalMaxLimit"`
			Verdict        string  `json:"verdict"`
			FailureReasons []struct {
				Code string `json:"code"`
			} `json:"failureReasons"`
			Obligations []string `json:"obligations"`
		} `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output does not parse: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(decoded))
	}
	if decoded[0].Result.FinalMaxLimit != 400 || decoded[0].Result.FailureReasons[0].Code != "POLICY_CAP_EXCEEDED" {
		t.Errorf("Unexpected first result: %+v", decoded[0].Result)
	}
	if decoded[0].Application["housePrice"] != 2000.0 {
		t.Errorf("Expected numeric house price, got %v", decoded[0].Application["housePrice"])
	}
	if decoded[1].Result.Verdict != "ELIGIBLE" || len(decoded[1].Result.Obligations) != 1 {
		t.Errorf("Unexpected second result: %+v", decoded[1].Result)
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	if err := Render(io.Discard, "xml", nil); err == nil {
		t.Error("Render() expected error for unsupported format")
	}
}
