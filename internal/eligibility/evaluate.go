// Package eligibility implements the mortgage eligibility rule engine: it
// maps a loan application onto an LTV percentage, overlays the regulatory
// loan caps and DSR ceiling, and produces a verdict with every failure reason
// and the post-approval obligations.
//
// Evaluate is pure. It performs no I/O, keeps no state and never fails;
// incomplete or malformed input yields VerdictPending.
package eligibility

import (
	"fmt"

	"github.com/iwvelando/loan-desk/pkg/constants"
	"github.com/iwvelando/loan-desk/pkg/format"
	"github.com/iwvelando/loan-desk/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var dsrCeiling = decimal.NewFromInt(constants.DSRCeilingPercent)

// Obligation texts attached to eligible purchases.
var (
	ObligationDisposeExistingHome = fmt.Sprintf(
		"must dispose of existing home and complete title transfer within %d months (failure accelerates the loan)",
		constants.ObligationMonths)
	ObligationRegisterResidence = fmt.Sprintf(
		"must register residence at the financed property within %d months (failure accelerates the loan)",
		constants.ObligationMonths)
)

// Pending notices.
const (
	NoticeSelectPurpose   = "select a loan purpose"
	NoticeSelectRegion    = "select the region of the property"
	NoticeSelectOwnership = "select the borrower's home ownership status"
	NoticeEnterAmount     = "enter the requested loan amount"
	NoticeEnterDSR        = "enter the DSR computed by the external DSR calculator"
)

// Reason is a single cause of refusal.
type Reason struct {
	Code   ReasonCode
	Title  string
	Detail string
}

// Result is derived entirely from a LoanApplication.
type Result struct {
	LTVPercent       int
	LTVAmount        decimal.Decimal
	ActualLTVPercent decimal.Decimal
	PolicyCapApplied bool
	PolicyCapReason  string
	FinalMaxLimit    decimal.Decimal
	Verdict          Verdict
	FailureReasons   []Reason
	Obligations      []string
	Notices          []string
}

// ReasonCodes returns the codes of every failure reason in order.
func (r Result) ReasonCodes() []ReasonCode {
	codes := make([]ReasonCode, 0, len(r.FailureReasons))
	for _, reason := range r.FailureReasons {
		codes = append(codes, reason.Code)
	}
	return codes
}

// Evaluate computes the eligibility result for an application.
func Evaluate(app LoanApplication) Result {
	a := app.Normalize()

	result := Result{
		Verdict:        VerdictPending,
		FailureReasons: []Reason{},
		Obligations:    []string{},
		Notices:        []string{},
	}

	result.LTVPercent = baseLTVPercent(a)
	result.LTVAmount = mathutil.ApplyPercentage(a.HousePrice, result.LTVPercent)
	result.ActualLTVPercent = mathutil.CalculatePercentage(a.RequestedAmount, a.HousePrice)

	capped := applyPolicyCap(a, result.LTVAmount)
	result.FinalMaxLimit = capped.limit
	result.PolicyCapApplied = capped.applied
	result.PolicyCapReason = capped.reason

	if !a.Complete() {
		result.Notices = pendingNotices(a)
		return result
	}

	result.FailureReasons = failureReasons(a, result)
	if len(result.FailureReasons) > 0 {
		result.Verdict = VerdictIneligible
		return result
	}

	result.Verdict = VerdictEligible
	result.Obligations = obligations(a)
	return result
}

// failureReasons evaluates every refusal rule independently.
func failureReasons(a LoanApplication, r Result) []Reason {
	reasons := []Reason{}

	if r.LTVPercent == 0 && mathutil.IsPositive(a.RequestedAmount) {
		reasons = append(reasons, Reason{
			Code:  ReasonNotPermitted,
			Title: "Not permitted",
			Detail: fmt.Sprintf("not permitted under current regulation for this ownership/region combination (%s, %s, %s)",
				a.Purpose.Label(), a.Region.Label(), a.OwnershipStatus.Label()),
		})
	}

	if a.RequestedAmount.GreaterThan(r.FinalMaxLimit) {
		if r.PolicyCapApplied {
			reasons = append(reasons, Reason{
				Code:  ReasonPolicyCapExceeded,
				Title: "Policy cap exceeded",
				Detail: fmt.Sprintf("requested %s exceeds the policy cap limit of %s (%s)",
					format.Millions(a.RequestedAmount), format.Millions(r.FinalMaxLimit), r.PolicyCapReason),
			})
		} else {
			reasons = append(reasons, Reason{
				Code:  ReasonLTVLimitExceeded,
				Title: "LTV limit exceeded",
				Detail: fmt.Sprintf("requested %s exceeds the LTV limit of %s (%d%% of %s)",
					format.Millions(a.RequestedAmount), format.Millions(r.FinalMaxLimit),
					r.LTVPercent, format.Millions(a.HousePrice)),
			})
		}
	}

	if a.DSR.GreaterThan(dsrCeiling) {
		reasons = append(reasons, Reason{
			Code:  ReasonDSRExceeded,
			Title: "DSR ceiling exceeded",
			Detail: fmt.Sprintf("DSR %s%% exceeds the %s ceiling",
				a.DSR.String(), format.Percent(dsrCeiling)),
		})
	}

	return reasons
}

// obligations lists the post-approval duties. Both rules are checked even
// though one ownership status can only match one of them.
func obligations(a LoanApplication) []string {
	duties := []string{}
	if a.Purpose == PurposePurchase && a.OwnershipStatus == OwnershipOneHomeConditionalSale {
		duties = append(duties, ObligationDisposeExistingHome)
	}
	if a.Purpose == PurposePurchase && a.OwnershipStatus == OwnershipNoHome && a.Region.CapitalArea() {
		duties = append(duties, ObligationRegisterResidence)
	}
	return duties
}

func pendingNotices(a LoanApplication) []string {
	notices := []string{}
	if !a.Purpose.Valid() {
		notices = append(notices, NoticeSelectPurpose)
	}
	if !a.Region.Valid() {
		notices = append(notices, NoticeSelectRegion)
	}
	if a.Purpose.Valid() && a.Region.Valid() && !a.OwnershipValid() {
		notices = append(notices, NoticeSelectOwnership)
	}
	if a.RequestedAmount.Sign() <= 0 {
		notices = append(notices, NoticeEnterAmount)
	}
	if a.DSR.Sign() <= 0 {
		notices = append(notices, NoticeEnterDSR)
	}
	return notices
}
