package eligibility

import (
	"github.com/iwvelando/loan-desk/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// ApplicationView is the wire form of a LoanApplication. Amounts are plain
// JSON numbers in millions of KRW.
type ApplicationView struct {
	Purpose                string  `json:"purpose"`
	Region                 string  `json:"region"`
	OwnershipStatus        string  `json:"ownershipStatus"`
	SpecialCondition       string  `json:"specialCondition"`
	HousePrice             float64 `json:"housePrice"`
	RequestedAmount        float64 `json:"requestedAmount"`
	AnnualIncome           float64 `json:"annualIncome"`
	ExistingLivingFundDebt float64 `json:"existingLivingFundDebt"`
	DSR                    float64 `json:"dsr"`
}

// ReasonView is the wire form of a Reason.
type ReasonView struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ResultView is the wire form of a Result. The float amounts are rounded to
// two decimals for display, so a request a fraction above the limit can show
// the same number as the limit while the verdict is INELIGIBLE. The Exact
// fields carry the unrounded decimals the verdict was computed from.
type ResultView struct {
	LTVPercent         int          `json:"ltvPercent"`
	LTVAmount          float64      `json:"ltvAmount"`
	LTVAmountExact     string       `json:"ltvAmountExact"`
	ActualLTVPercent   float64      `json:"actualLtvPercent"`
	PolicyCapApplied   bool         `json:"policyCapApplied"`
	PolicyCapReason    string       `json:"policyCapReason"`
	FinalMaxLimit      float64      `json:"finalMaxLimit"`
	FinalMaxLimitExact string       `json:"finalMaxLimitExact"`
	Verdict            string       `json:"verdict"`
	FailureReasons     []ReasonView `json:"failureReasons"`
	Obligations        []string     `json:"obligations"`
	Notices            []string     `json:"notices"`
}

// View converts the application to its wire form.
func (a LoanApplication) View() ApplicationView {
	return ApplicationView{
		Purpose:                string(a.Purpose),
		Region:                 string(a.Region),
		OwnershipStatus:        string(a.OwnershipStatus),
		SpecialCondition:       string(a.SpecialCondition),
		HousePrice:             a.HousePrice.InexactFloat64(),
		RequestedAmount:        a.RequestedAmount.InexactFloat64(),
		AnnualIncome:           a.AnnualIncome.InexactFloat64(),
		ExistingLivingFundDebt: a.ExistingLivingFundDebt.InexactFloat64(),
		DSR:                    a.DSR.InexactFloat64(),
	}
}

// LoanApplication converts the wire form back. Unknown enum text is kept
// as-is and later treated as unset by Evaluate.
func (v ApplicationView) LoanApplication() LoanApplication {
	special := SpecialCondition(v.SpecialCondition)
	if special == "" {
		special = SpecialConditionNone
	}
	return LoanApplication{
		Purpose:                Purpose(v.Purpose),
		Region:                 Region(v.Region),
		OwnershipStatus:        Ownership(v.OwnershipStatus),
		SpecialCondition:       special,
		HousePrice:             decimal.NewFromFloat(v.HousePrice),
		RequestedAmount:        decimal.NewFromFloat(v.RequestedAmount),
		AnnualIncome:           decimal.NewFromFloat(v.AnnualIncome),
		ExistingLivingFundDebt: decimal.NewFromFloat(v.ExistingLivingFundDebt),
		DSR:                    decimal.NewFromFloat(v.DSR),
	}
}

// View converts the result to its wire form.
func (r Result) View() ResultView {
	reasons := make([]ReasonView, 0, len(r.FailureReasons))
	for _, reason := range r.FailureReasons {
		reasons = append(reasons, ReasonView{Code: string(reason.Code), Title: reason.Title, Detail: reason.Detail})
	}
	return ResultView{
		LTVPercent:         r.LTVPercent,
		LTVAmount:          mathutil.Round(r.LTVAmount).InexactFloat64(),
		LTVAmountExact:     r.LTVAmount.String(),
		ActualLTVPercent:   mathutil.Round(r.ActualLTVPercent).InexactFloat64(),
		PolicyCapApplied:   r.PolicyCapApplied,
		PolicyCapReason:    r.PolicyCapReason,
		FinalMaxLimit:      mathutil.Round(r.FinalMaxLimit).InexactFloat64(),
		FinalMaxLimitExact: r.FinalMaxLimit.String(),
		Verdict:            string(r.Verdict),
		FailureReasons:     reasons,
		Obligations:        append([]string{}, r.Obligations...),
		Notices:            append([]string{}, r.Notices...),
	}
}
