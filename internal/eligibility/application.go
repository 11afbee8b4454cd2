package eligibility

import (
	"github.com/iwvelando/loan-desk/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// LoanApplication is a snapshot of the calculator form. Currency amounts are
// in millions of KRW and DSR is a percentage; zero means "not entered".
type LoanApplication struct {
	Purpose                Purpose
	Region                 Region
	HousePrice             decimal.Decimal
	RequestedAmount        decimal.Decimal
	AnnualIncome           decimal.Decimal
	ExistingLivingFundDebt decimal.Decimal
	DSR                    decimal.Decimal
	OwnershipStatus        Ownership
	SpecialCondition       SpecialCondition
}

// OwnershipOptions returns the ownership statuses that may be selected for
// the given purpose and region, in display order. An unset purpose offers
// nothing.
func OwnershipOptions(purpose Purpose, region Region) []Ownership {
	switch purpose {
	case PurposeLivingStabilization:
		return []Ownership{OwnershipOneHome, OwnershipTwoOrMoreHomes}
	case PurposePurchase:
		if region == RegionOther {
			return []Ownership{OwnershipNoHome, OwnershipOneOrMoreHomes}
		}
		return []Ownership{OwnershipNoHome, OwnershipOneHomeConditionalSale, OwnershipTwoOrMoreHomes}
	}
	return nil
}

// OwnershipValid reports whether the ownership status is offered for the
// application's current purpose and region.
func (a LoanApplication) OwnershipValid() bool {
	for _, o := range OwnershipOptions(a.Purpose, a.Region) {
		if o == a.OwnershipStatus {
			return true
		}
	}
	return false
}

// Normalize returns a copy with unknown enum values unset, an ownership
// status outside the valid subset cleared, and negative amounts clamped to
// zero.
func (a LoanApplication) Normalize() LoanApplication {
	if !a.Purpose.Valid() {
		a.Purpose = PurposeUnset
	}
	if !a.Region.Valid() {
		a.Region = RegionUnset
	}
	if !a.OwnershipValid() {
		a.OwnershipStatus = OwnershipUnset
	}
	switch a.SpecialCondition {
	case SpecialConditionFirstTimeBuyer, SpecialConditionLowIncomeFirstHome:
	default:
		a.SpecialCondition = SpecialConditionNone
	}

	a.HousePrice = mathutil.NonNegative(a.HousePrice)
	a.RequestedAmount = mathutil.NonNegative(a.RequestedAmount)
	a.AnnualIncome = mathutil.NonNegative(a.AnnualIncome)
	a.ExistingLivingFundDebt = mathutil.NonNegative(a.ExistingLivingFundDebt)
	a.DSR = mathutil.NonNegative(a.DSR)
	return a
}

// Complete reports whether every field required for a verdict is present.
func (a LoanApplication) Complete() bool {
	return a.Purpose.Valid() &&
		a.Region.Valid() &&
		a.OwnershipValid() &&
		mathutil.IsPositive(a.DSR) &&
		mathutil.IsPositive(a.RequestedAmount)
}
