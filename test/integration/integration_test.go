package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/loan-desk/internal/config"
	"github.com/iwvelando/loan-desk/internal/eligibility"
	"github.com/iwvelando/loan-desk/internal/evaluation"
	"github.com/iwvelando/loan-desk/internal/reference"
	"github.com/iwvelando/loan-desk/internal/server"
	"github.com/iwvelando/loan-desk/pkg/output"
	"github.com/iwvelando/loan-desk/pkg/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func loadResults(t *testing.T, path string) (*config.Configuration, []output.Evaluation) {
	t.Helper()

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	results, err := evaluation.EvaluateAll(context.Background(), zap.NewNop(), *conf, nil)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	return conf, results
}

// TestMainIntegrationBaseline runs the test configuration the same way main() does
// and checks the verdicts and limits.
func TestMainIntegrationBaseline(t *testing.T) {
	_, results := loadResults(t, "../test_config.yaml")

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	baselineChecks := []struct {
		application string
		verdict     eligibility.Verdict
		limit       string
		reasons     []eligibility.ReasonCode
	}{
		{"Gangnam apartment, no home", eligibility.VerdictIneligible, "400.00", []eligibility.ReasonCode{eligibility.ReasonPolicyCapExceeded}},
		{"Provincial first purchase", eligibility.VerdictEligible, "700.00", []eligibility.ReasonCode{}},
		{"Living fund top-up", eligibility.VerdictIneligible, "70.00", []eligibility.ReasonCode{eligibility.ReasonPolicyCapExceeded}},
	}

	for _, check := range baselineChecks {
		result := testutil.FindEvaluation(results, check.application)
		if result == nil {
			t.Errorf("Missing application: %s", check.application)
			continue
		}
		if result.Result.Verdict != check.verdict {
			t.Errorf("%s: expected verdict %s, got %s", check.application, check.verdict, result.Result.Verdict)
		}
		if got := result.Result.FinalMaxLimit.StringFixed(2); got != check.limit {
			t.Errorf("%s: expected limit %s, got %s", check.application, check.limit, got)
		}
		codes := result.Result.ReasonCodes()
		if len(codes) != len(check.reasons) {
			t.Errorf("%s: expected reasons %v, got %v", check.application, check.reasons, codes)
			continue
		}
		for i := range codes {
			if codes[i] != check.reasons[i] {
				t.Errorf("%s: expected reasons %v, got %v", check.application, check.reasons, codes)
			}
		}
	}

	if testutil.FindEvaluation(results, "Draft") != nil {
		t.Error("Inactive application should not be evaluated")
	}
}

// TestCSVOutputFormat checks the CSV report of the test configuration.
func TestCSVOutputFormat(t *testing.T) {
	_, results := loadResults(t, "../test_config.yaml")

	out := testutil.CaptureStdout(t, func() {
		output.CsvFormat(results)
	})

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("Could not parse CSV output: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(records))
	}

	header := records[0]
	for _, part := range []string{"name", "ltv percent", "final max limit", "verdict", "failure reasons"} {
		found := false
		for _, column := range header {
			if column == part {
				found = true
			}
		}
		if !found {
			t.Errorf("CSV header missing expected column: %s", part)
		}
	}

	for _, record := range records[1:] {
		if len(record) != len(header) {
			t.Errorf("CSV row should have %d columns, got %d: %v", len(header), len(record), record)
		}
	}
	if records[1][0] != "Gangnam apartment, no home" {
		t.Errorf("Expected first row to be the Gangnam application, got %s", records[1][0])
	}
}

// TestPrettyOutputFormat checks the human-readable report.
func TestPrettyOutputFormat(t *testing.T) {
	_, results := loadResults(t, "../test_config.yaml")

	out := testutil.CaptureStdout(t, func() {
		output.PrettyFormat(results)
	})

	expected := []string{
		"--- Results for application Gangnam apartment, no home ---",
		"--- Results for application Provincial first purchase ---",
		"--- Results for application Living fund top-up ---",
		"Price     | 2,000.00M KRW",
		"Limit     | 400.00M KRW",
		"Verdict   | ELIGIBLE",
		"Verdict   | INELIGIBLE",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Pretty output missing %q", want)
		}
	}
}

// TestJSONOutputFormat checks that the JSON report decodes into result views.
func TestJSONOutputFormat(t *testing.T) {
	_, results := loadResults(t, "../test_config.yaml")

	var buf bytes.Buffer
	if err := output.Render(&buf, "json", results); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded []struct {
		Name   string                 `json:"name"`
		Result eligibility.ResultView `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Could not decode JSON output: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(decoded))
	}
	if decoded[1].Result.FinalMaxLimit != 700 {
		t.Errorf("Expected limit 700, got %v", decoded[1].Result.FinalMaxLimit)
	}
}

// TestExampleConfiguration evaluates the shipped example without warnings.
func TestExampleConfiguration(t *testing.T) {
	conf, results := loadResults(t, "../../config.yaml.example")

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(results) != len(conf.ActiveApplications()) {
		t.Fatalf("Expected %d results, got %d", len(conf.ActiveApplications()), len(results))
	}
	for _, result := range results {
		if result.Result.Verdict != eligibility.VerdictEligible {
			t.Errorf("%s: expected ELIGIBLE, got %s (%v)", result.Name, result.Result.Verdict, result.Result.ReasonCodes())
		}
	}
}

// TestDataConsistency checks that repeated runs give identical output.
func TestDataConsistency(t *testing.T) {
	_, first := loadResults(t, "../test_config.yaml")
	_, second := loadResults(t, "../test_config.yaml")

	var a, b bytes.Buffer
	if err := output.Render(&a, "json", first); err != nil {
		t.Fatal(err)
	}
	if err := output.Render(&b, "json", second); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("Results differ between runs:\n%s\n%s", a.String(), b.String())
	}
}

// TestServerMatchesBatch posts every configured application to the HTTP API
// and compares the answer with the batch evaluation.
func TestServerMatchesBatch(t *testing.T) {
	_, results := loadResults(t, "../test_config.yaml")

	tables, err := reference.Default()
	if err != nil {
		t.Fatalf("reference.Default() error = %v", err)
	}
	srv := httptest.NewServer(server.NewHandler(server.Options{
		Reference: tables,
		Gatherer:  prometheus.NewRegistry(),
	}))
	defer srv.Close()

	for _, result := range results {
		t.Run(result.Name, func(t *testing.T) {
			body, err := json.Marshal(result.Application.View())
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.Post(srv.URL+"/api/eligibility", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			defer func() {
				_ = resp.Body.Close()
			}()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected 200, got %d", resp.StatusCode)
			}

			var decoded struct {
				Result eligibility.ResultView `json:"result"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
				t.Fatalf("Could not decode response: %v", err)
			}

			want := result.Result.View()
			if decoded.Result.Verdict != want.Verdict ||
				decoded.Result.FinalMaxLimit != want.FinalMaxLimit ||
				decoded.Result.LTVPercent != want.LTVPercent {
				t.Errorf("HTTP result %+v differs from batch result %+v", decoded.Result, want)
			}
		})
	}
}
