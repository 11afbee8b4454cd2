// Package output provides utilities for formatting and displaying eligibility results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-desk/internal/eligibility"
	"github.com/iwvelando/loan-desk/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Evaluation pairs a named application with its result.
type Evaluation struct {
	Name        string
	Application eligibility.LoanApplication
	Result      eligibility.Result
}

type evaluationView struct {
	Name        string                      `json:"name"`
	Application eligibility.ApplicationView `json:"application"`
	Result      eligibility.ResultView      `json:"result"`
}

// Render writes results in the given format.
func Render(w io.Writer, format string, results []Evaluation) error {
	switch format {
	case constants.OutputFormatPretty:
		return writePretty(w, results)
	case constants.OutputFormatCSV:
		return writeCSV(w, results)
	case constants.OutputFormatJSON:
		return writeJSON(w, results)
	}
	return fmt.Errorf("unsupported output format %s", format)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(results []Evaluation) {
	_ = writePretty(os.Stdout, results)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []Evaluation) {
	_ = writeCSV(os.Stdout, results)
}

// JSONFormat outputs an indented JSON array.
func JSONFormat(results []Evaluation) error {
	return writeJSON(os.Stdout, results)
}

func writePretty(w io.Writer, results []Evaluation) error {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		app := result.Application
		r := result.Result

		fmt.Fprintf(w, "--- Results for application %s ---\n", result.Name)
		fmt.Fprintf(w, "Purpose   | %s\n", app.Purpose.Label())
		fmt.Fprintf(w, "Region    | %s\n", app.Region.Label())
		fmt.Fprintf(w, "Ownership | %s\n", app.OwnershipStatus.Label())
		fmt.Fprintf(w, "Special   | %s\n", app.SpecialCondition.Label())
		_, _ = p.Fprintf(w, "Price     | %.2fM KRW\n", app.HousePrice.InexactFloat64())
		_, _ = p.Fprintf(w, "Requested | %.2fM KRW (actual LTV %.2f%%)\n",
			app.RequestedAmount.InexactFloat64(), r.ActualLTVPercent.InexactFloat64())
		_, _ = p.Fprintf(w, "DSR       | %.2f%%\n", app.DSR.InexactFloat64())
		_, _ = p.Fprintf(w, "LTV       | %d%% = %.2fM KRW\n", r.LTVPercent, r.LTVAmount.InexactFloat64())
		_, _ = p.Fprintf(w, "Limit     | %.2fM KRW\n", r.FinalMaxLimit.InexactFloat64())
		if r.PolicyCapApplied {
			fmt.Fprintf(w, "Cap       | %s\n", r.PolicyCapReason)
		}
		fmt.Fprintf(w, "Verdict   | %s\n", r.Verdict)
		for _, reason := range r.FailureReasons {
			fmt.Fprintf(w, "  x %s: %s\n", reason.Title, reason.Detail)
		}
		for _, obligation := range r.Obligations {
			fmt.Fprintf(w, "  ! %s\n", obligation)
		}
		for _, notice := range r.Notices {
			fmt.Fprintf(w, "  - %s\n", notice)
		}
		if len(results) > 1 && i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
	return nil
}

var csvHeader = []string{
	"name", "purpose", "region", "ownership", "special condition",
	"house price", "requested amount", "dsr",
	"ltv percent", "ltv amount", "final max limit", "policy cap", "verdict",
	"failure reasons", "obligations", "notices",
}

func writeCSV(w io.Writer, results []Evaluation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		app := result.Application
		r := result.Result
		if err := cw.Write([]string{
			result.Name,
			string(app.Purpose),
			string(app.Region),
			string(app.OwnershipStatus),
			string(app.SpecialCondition),
			app.HousePrice.StringFixed(2),
			app.RequestedAmount.StringFixed(2),
			app.DSR.StringFixed(2),
			strconv.Itoa(r.LTVPercent),
			r.LTVAmount.StringFixed(2),
			r.FinalMaxLimit.StringFixed(2),
			r.PolicyCapReason,
			string(r.Verdict),
			joinCodes(r.ReasonCodes()),
			strings.Join(r.Obligations, "; "),
			strings.Join(r.Notices, "; "),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinCodes(codes []eligibility.ReasonCode) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = string(code)
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w io.Writer, results []Evaluation) error {
	views := make([]evaluationView, 0, len(results))
	for _, result := range results {
		views = append(views, evaluationView{
			Name:        result.Name,
			Application: result.Application.View(),
			Result:      result.Result.View(),
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(views)
}
