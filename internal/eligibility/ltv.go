package eligibility

// baseLTVPercent looks up the loan-to-value percentage for the application.
// Zero means the combination is not permitted (or not yet determined).
func baseLTVPercent(a LoanApplication) int {
	switch a.Purpose {
	case PurposePurchase:
		return purchaseLTVPercent(a.Region, a.OwnershipStatus, a.SpecialCondition)
	case PurposeLivingStabilization:
		return livingLTVPercent(a.Region, a.OwnershipStatus)
	case PurposeUnset:
		return 0
	}
	return 0
}

// purchaseLTVPercent applies the purchase table. A special condition, when
// it applies to the region, takes precedence over ownership.
func purchaseLTVPercent(region Region, ownership Ownership, special SpecialCondition) int {
	switch region {
	case RegionRegulated:
		switch special {
		case SpecialConditionFirstTimeBuyer:
			return 70
		case SpecialConditionLowIncomeFirstHome:
			return 60
		case SpecialConditionNone:
		}
		switch ownership {
		case OwnershipNoHome, OwnershipOneHomeConditionalSale:
			return 40
		case OwnershipTwoOrMoreHomes:
			return 0
		case OwnershipUnset, OwnershipOneHome, OwnershipOneOrMoreHomes:
		}
	case RegionMetroUnregulated:
		if special == SpecialConditionFirstTimeBuyer {
			return 70
		}
		switch ownership {
		case OwnershipNoHome, OwnershipOneHomeConditionalSale:
			return 70
		case OwnershipTwoOrMoreHomes:
			return 0
		case OwnershipUnset, OwnershipOneHome, OwnershipOneOrMoreHomes:
		}
	case RegionOther:
		if special == SpecialConditionFirstTimeBuyer {
			return 80
		}
		switch ownership {
		case OwnershipNoHome:
			return 70
		case OwnershipOneOrMoreHomes:
			return 60
		case OwnershipUnset, OwnershipOneHome, OwnershipOneHomeConditionalSale, OwnershipTwoOrMoreHomes:
		}
	case RegionUnset:
	}
	return 0
}

func livingLTVPercent(region Region, ownership Ownership) int {
	switch region {
	case RegionRegulated:
		switch ownership {
		case OwnershipOneHome:
			return 40
		case OwnershipTwoOrMoreHomes:
			return 30
		case OwnershipUnset, OwnershipNoHome, OwnershipOneHomeConditionalSale, OwnershipOneOrMoreHomes:
		}
	case RegionMetroUnregulated, RegionOther:
		switch ownership {
		case OwnershipOneHome:
			return 70
		case OwnershipTwoOrMoreHomes:
			return 60
		case OwnershipUnset, OwnershipNoHome, OwnershipOneHomeConditionalSale, OwnershipOneOrMoreHomes:
		}
	case RegionUnset:
	}
	return 0
}
