package eligibility

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrOwnershipNotOffered is returned when an ownership status is chosen that
// is not valid for the form's current purpose and region.
var ErrOwnershipNotOffered = errors.New("ownership status not offered for the selected purpose and region")

// Form owns the mutable application state of one calculator view. Every
// setter recomputes the result from scratch. A Form is not safe for
// concurrent use; it has exactly one writer.
type Form struct {
	app    LoanApplication
	result Result
}

// NewForm returns an empty form with a pending result.
func NewForm() *Form {
	f := &Form{}
	f.Reset()
	return f
}

// Application returns the current snapshot.
func (f *Form) Application() LoanApplication {
	return f.app
}

// Result returns the result for the current snapshot.
func (f *Form) Result() Result {
	return f.result
}

// OwnershipOptions returns the ownership statuses selectable right now.
func (f *Form) OwnershipOptions() []Ownership {
	return OwnershipOptions(f.app.Purpose, f.app.Region)
}

// Load replaces the whole snapshot. It reports whether a previously chosen
// ownership status had to be cleared because it is not valid for the
// loaded purpose and region.
func (f *Form) Load(app LoanApplication) (Result, bool) {
	normalized := app.Normalize()
	cleared := app.OwnershipStatus != OwnershipUnset && normalized.OwnershipStatus == OwnershipUnset
	f.app = normalized
	return f.recompute(), cleared
}

// SetPurpose changes the purpose, clearing an ownership status that is no
// longer offered.
func (f *Form) SetPurpose(p Purpose) Result {
	f.app.Purpose = p
	f.revalidateOwnership()
	return f.recompute()
}

// SetRegion changes the region, clearing an ownership status that is no
// longer offered.
func (f *Form) SetRegion(r Region) Result {
	f.app.Region = r
	f.revalidateOwnership()
	return f.recompute()
}

// SetOwnership selects an ownership status. OwnershipUnset is always accepted.
func (f *Form) SetOwnership(o Ownership) (Result, error) {
	if o != OwnershipUnset {
		candidate := f.app
		candidate.OwnershipStatus = o
		if !candidate.OwnershipValid() {
			return f.result, fmt.Errorf("%w: %s", ErrOwnershipNotOffered, o)
		}
	}
	f.app.OwnershipStatus = o
	return f.recompute(), nil
}

// SetSpecialCondition selects a purchase special condition.
func (f *Form) SetSpecialCondition(c SpecialCondition) Result {
	f.app.SpecialCondition = c
	return f.recompute()
}

// SetHousePrice sets the house price in millions of KRW.
func (f *Form) SetHousePrice(v decimal.Decimal) Result {
	f.app.HousePrice = v
	return f.recompute()
}

// SetRequestedAmount sets the requested loan amount in millions of KRW.
func (f *Form) SetRequestedAmount(v decimal.Decimal) Result {
	f.app.RequestedAmount = v
	return f.recompute()
}

// SetAnnualIncome sets the combined annual income in millions of KRW.
func (f *Form) SetAnnualIncome(v decimal.Decimal) Result {
	f.app.AnnualIncome = v
	return f.recompute()
}

// SetExistingLivingFundDebt sets the outstanding living stabilization debt.
func (f *Form) SetExistingLivingFundDebt(v decimal.Decimal) Result {
	f.app.ExistingLivingFundDebt = v
	return f.recompute()
}

// SetDSR sets the debt service ratio in percent.
func (f *Form) SetDSR(v decimal.Decimal) Result {
	f.app.DSR = v
	return f.recompute()
}

// Reset clears every field. The result becomes pending.
func (f *Form) Reset() Result {
	f.app = LoanApplication{
		HousePrice:             decimal.Zero,
		RequestedAmount:        decimal.Zero,
		AnnualIncome:           decimal.Zero,
		ExistingLivingFundDebt: decimal.Zero,
		DSR:                    decimal.Zero,
		SpecialCondition:       SpecialConditionNone,
	}
	return f.recompute()
}

func (f *Form) revalidateOwnership() {
	if f.app.OwnershipStatus != OwnershipUnset && !f.app.OwnershipValid() {
		f.app.OwnershipStatus = OwnershipUnset
	}
}

func (f *Form) recompute() Result {
	f.result = Evaluate(f.app)
	return f.result
}
