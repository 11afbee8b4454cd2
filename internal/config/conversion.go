package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/loan-desk/internal/eligibility"
	"github.com/iwvelando/loan-desk/pkg/validation"
	"github.com/shopspring/decimal"
)

// ToLoanApplication converts a configured application into the calculator's
// input. Every unparseable enum and every non-finite amount is reported in the
// joined error; such amounts convert to zero.
func (a Application) ToLoanApplication() (eligibility.LoanApplication, error) {
	var errs []error

	purpose, err := eligibility.ParsePurpose(a.Purpose)
	if err != nil {
		errs = append(errs, err)
	}
	region, err := eligibility.ParseRegion(a.Region)
	if err != nil {
		errs = append(errs, err)
	}
	ownership, err := eligibility.ParseOwnership(a.Ownership)
	if err != nil {
		errs = append(errs, err)
	}
	special, err := eligibility.ParseSpecialCondition(a.SpecialCondition)
	if err != nil {
		errs = append(errs, err)
	}

	app := eligibility.LoanApplication{
		Purpose:                purpose,
		Region:                 region,
		OwnershipStatus:        ownership,
		SpecialCondition:       special,
		HousePrice:             finiteAmount("housePrice", a.HousePrice, &errs),
		RequestedAmount:        finiteAmount("requestedAmount", a.RequestedAmount, &errs),
		AnnualIncome:           finiteAmount("annualIncome", a.AnnualIncome, &errs),
		ExistingLivingFundDebt: finiteAmount("existingLivingFundDebt", a.ExistingLivingFundDebt, &errs),
		DSR:                    finiteAmount("dsr", a.DSR, &errs),
	}

	if len(errs) > 0 {
		return app, fmt.Errorf("application '%s': %w", a.Name, errors.Join(errs...))
	}
	return app, nil
}

// finiteAmount converts v, recording an error and returning zero for NaN or
// infinity, which decimal cannot represent.
func finiteAmount(field string, v float64, errs *[]error) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*errs = append(*errs, fmt.Errorf("%s must be a finite number, got %v", field, v))
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// document renders the application in the JSON shape accepted by the HTTP
// API, for schema validation.
func (a Application) document(app eligibility.LoanApplication) map[string]any {
	return map[string]any{
		"purpose":                string(app.Purpose),
		"region":                 string(app.Region),
		"ownershipStatus":        string(app.OwnershipStatus),
		"specialCondition":       string(app.SpecialCondition),
		"housePrice":             a.HousePrice,
		"requestedAmount":        a.RequestedAmount,
		"annualIncome":           a.AnnualIncome,
		"existingLivingFundDebt": a.ExistingLivingFundDebt,
		"dsr":                    a.DSR,
	}
}

// Validate returns warnings for a single application.
func (a Application) Validate() []string {
	var warnings []string
	label := fmt.Sprintf("Application '%s'", a.Name)

	app, err := a.ToLoanApplication()
	if err != nil {
		warnings = append(warnings, err.Error())
		return warnings
	}

	violations, err := validation.ApplicationSchema.ValidateGo(a.document(app))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s could not be validated: %v", label, err))
	}
	for _, v := range violations {
		warnings = append(warnings, fmt.Sprintf("%s: %s", label, v))
	}

	if app.OwnershipStatus != eligibility.OwnershipUnset && !app.OwnershipValid() {
		warnings = append(warnings, fmt.Sprintf("%s: ownership '%s' is not offered for %s in %s and will be cleared",
			label, app.OwnershipStatus, app.Purpose.Label(), app.Region.Label()))
	}

	if app.Purpose == eligibility.PurposeLivingStabilization && app.SpecialCondition != eligibility.SpecialConditionNone {
		warnings = append(warnings, fmt.Sprintf("%s: special condition '%s' only applies to purchases and is ignored",
			label, app.SpecialCondition))
	}

	if app.Purpose == eligibility.PurposePurchase && app.ExistingLivingFundDebt.Sign() > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: existing living-fund debt only applies to living stabilization loans", label))
	}

	return warnings
}
