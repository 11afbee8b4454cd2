package eligibility

import (
	"fmt"
	"strings"
)

// Purpose is the intended use of the loan.
type Purpose string

const (
	PurposeUnset               Purpose = ""
	PurposePurchase            Purpose = "PURCHASE"
	PurposeLivingStabilization Purpose = "LIVING_STABILIZATION"
)

// Region is the three-tier geographic classification of the collateral.
type Region string

const (
	RegionUnset            Region = ""
	RegionRegulated        Region = "REGULATED"
	RegionMetroUnregulated Region = "METRO_UNREGULATED"
	RegionOther            Region = "OTHER"
)

// Ownership is the borrower's current home ownership status.
type Ownership string

const (
	OwnershipUnset                  Ownership = ""
	OwnershipNoHome                 Ownership = "NO_HOME"
	OwnershipOneHome                Ownership = "ONE_HOME"
	OwnershipOneHomeConditionalSale Ownership = "ONE_HOME_CONDITIONAL_SALE"
	OwnershipOneOrMoreHomes         Ownership = "ONE_OR_MORE_HOMES"
	OwnershipTwoOrMoreHomes         Ownership = "TWO_OR_MORE_HOMES"
)

// SpecialCondition is a purchase-only preferential program.
type SpecialCondition string

const (
	SpecialConditionNone               SpecialCondition = "NONE"
	SpecialConditionFirstTimeBuyer     SpecialCondition = "FIRST_TIME_BUYER"
	SpecialConditionLowIncomeFirstHome SpecialCondition = "LOW_INCOME_FIRST_HOME"
)

// Verdict is the outcome of an evaluation.
type Verdict string

const (
	VerdictPending    Verdict = "PENDING"
	VerdictEligible   Verdict = "ELIGIBLE"
	VerdictIneligible Verdict = "INELIGIBLE"
)

// ReasonCode identifies why an application was refused.
type ReasonCode string

const (
	ReasonNotPermitted      ReasonCode = "NOT_PERMITTED"
	ReasonPolicyCapExceeded ReasonCode = "POLICY_CAP_EXCEEDED"
	ReasonLTVLimitExceeded  ReasonCode = "LTV_LIMIT_EXCEEDED"
	ReasonDSRExceeded       ReasonCode = "DSR_EXCEEDED"
)

// Purposes lists every selectable purpose in display order.
var Purposes = []Purpose{PurposePurchase, PurposeLivingStabilization}

// Regions lists every selectable region in display order.
var Regions = []Region{RegionRegulated, RegionMetroUnregulated, RegionOther}

// SpecialConditions lists every selectable special condition in display order.
var SpecialConditions = []SpecialCondition{
	SpecialConditionFirstTimeBuyer,
	SpecialConditionLowIncomeFirstHome,
	SpecialConditionNone,
}

// Valid reports whether p is a known, set purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposePurchase, PurposeLivingStabilization:
		return true
	}
	return false
}

// Label returns the display name of p.
func (p Purpose) Label() string {
	switch p {
	case PurposePurchase:
		return "Home purchase"
	case PurposeLivingStabilization:
		return "Living stabilization"
	}
	return "Not selected"
}

// Valid reports whether r is a known, set region.
func (r Region) Valid() bool {
	switch r {
	case RegionRegulated, RegionMetroUnregulated, RegionOther:
		return true
	}
	return false
}

// CapitalArea reports whether r is subject to the capital-area price-tier
// and combined living-fund caps.
func (r Region) CapitalArea() bool {
	switch r {
	case RegionRegulated, RegionMetroUnregulated:
		return true
	}
	return false
}

// Label returns the display name of r.
func (r Region) Label() string {
	switch r {
	case RegionRegulated:
		return "Regulated area"
	case RegionMetroUnregulated:
		return "Capital area (unregulated)"
	case RegionOther:
		return "Outside capital area (unregulated)"
	}
	return "Not selected"
}

// Valid reports whether o is a known, set ownership status.
func (o Ownership) Valid() bool {
	switch o {
	case OwnershipNoHome, OwnershipOneHome, OwnershipOneHomeConditionalSale,
		OwnershipOneOrMoreHomes, OwnershipTwoOrMoreHomes:
		return true
	}
	return false
}

// Label returns the display name of o.
func (o Ownership) Label() string {
	switch o {
	case OwnershipNoHome:
		return "No home"
	case OwnershipOneHome:
		return "One home"
	case OwnershipOneHomeConditionalSale:
		return "One home (conditional sale)"
	case OwnershipOneOrMoreHomes:
		return "One or more homes"
	case OwnershipTwoOrMoreHomes:
		return "Two or more homes"
	}
	return "Not selected"
}

// Label returns the display name of s.
func (s SpecialCondition) Label() string {
	switch s {
	case SpecialConditionFirstTimeBuyer:
		return "First-time buyer"
	case SpecialConditionLowIncomeFirstHome:
		return "Low-income / first home"
	}
	return "None"
}

// ParsePurpose converts user or config text into a Purpose. Empty text is
// PurposeUnset.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(canonical(s))
	if p == PurposeUnset || p.Valid() {
		return p, nil
	}
	return PurposeUnset, fmt.Errorf("unknown loan purpose %q", s)
}

// ParseRegion converts user or config text into a Region. Empty text is
// RegionUnset.
func ParseRegion(s string) (Region, error) {
	r := Region(canonical(s))
	if r == RegionUnset || r.Valid() {
		return r, nil
	}
	return RegionUnset, fmt.Errorf("unknown region %q", s)
}

// ParseOwnership converts user or config text into an Ownership. Empty text
// is OwnershipUnset.
func ParseOwnership(s string) (Ownership, error) {
	o := Ownership(canonical(s))
	if o == OwnershipUnset || o.Valid() {
		return o, nil
	}
	return OwnershipUnset, fmt.Errorf("unknown ownership status %q", s)
}

// ParseSpecialCondition converts user or config text into a SpecialCondition.
// Empty text is SpecialConditionNone.
func ParseSpecialCondition(s string) (SpecialCondition, error) {
	c := SpecialCondition(canonical(s))
	switch c {
	case "", SpecialConditionNone:
		return SpecialConditionNone, nil
	case SpecialConditionFirstTimeBuyer, SpecialConditionLowIncomeFirstHome:
		return c, nil
	}
	return SpecialConditionNone, fmt.Errorf("unknown special condition %q", s)
}

// canonical accepts "first-time buyer", "first_time_buyer" and friends.
func canonical(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
