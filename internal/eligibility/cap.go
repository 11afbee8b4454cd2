package eligibility

import (
	"fmt"

	"github.com/iwvelando/loan-desk/pkg/constants"
	"github.com/iwvelando/loan-desk/pkg/format"
	"github.com/iwvelando/loan-desk/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	priceTierLow            = decimal.NewFromInt(constants.PriceTierLow)
	priceTierHigh           = decimal.NewFromInt(constants.PriceTierHigh)
	combinedLivingFundLimit = decimal.NewFromInt(constants.CombinedLivingFundLimit)
)

// policyCap is the outcome of the regulatory cap overlay.
type policyCap struct {
	limit   decimal.Decimal
	applied bool
	reason  string
}

// applyPolicyCap lowers ltvAmount by any regulatory cap that fires. The
// returned limit never exceeds ltvAmount.
func applyPolicyCap(a LoanApplication, ltvAmount decimal.Decimal) policyCap {
	result := policyCap{limit: ltvAmount}

	switch a.Purpose {
	case PurposePurchase:
		if a.Region.CapitalArea() {
			ceiling, reason := priceTierCap(a.HousePrice)
			if ltvAmount.GreaterThan(ceiling) {
				result = policyCap{limit: ceiling, applied: true, reason: reason}
			}
		}
		if a.Region == RegionOther && a.SpecialCondition == SpecialConditionFirstTimeBuyer {
			ceiling := decimal.NewFromInt(constants.CapFirstTimeBuyerOther)
			if ltvAmount.GreaterThan(ceiling) {
				result = policyCap{
					limit:   ceiling,
					applied: true,
					reason:  fmt.Sprintf("first-time buyer outside capital area: max %s", format.Millions(ceiling)),
				}
			}
		}
	case PurposeLivingStabilization:
		if a.Region.CapitalArea() {
			combined := a.RequestedAmount.Add(a.ExistingLivingFundDebt)
			if combined.GreaterThan(combinedLivingFundLimit) {
				remaining := mathutil.Max(decimal.Zero, combinedLivingFundLimit.Sub(a.ExistingLivingFundDebt))
				result = policyCap{
					limit:   mathutil.Min(ltvAmount, remaining),
					applied: true,
					reason: fmt.Sprintf("combined living-fund limit exceeded: max %s across new and existing loans (%s remaining)",
						format.Millions(combinedLivingFundLimit), format.Millions(remaining)),
				}
			}
		}
	case PurposeUnset:
	}

	return result
}

// priceTierCap returns the capital-area purchase cap for a house price.
func priceTierCap(price decimal.Decimal) (decimal.Decimal, string) {
	switch {
	case price.LessThanOrEqual(priceTierLow):
		ceiling := decimal.NewFromInt(constants.CapPriceTierLow)
		return ceiling, fmt.Sprintf("price up to %s: max %s", format.Millions(priceTierLow), format.Millions(ceiling))
	case price.LessThanOrEqual(priceTierHigh):
		ceiling := decimal.NewFromInt(constants.CapPriceTierMid)
		return ceiling, fmt.Sprintf("price over %s up to %s: max %s",
			format.Millions(priceTierLow), format.Millions(priceTierHigh), format.Millions(ceiling))
	default:
		ceiling := decimal.NewFromInt(constants.CapPriceTierHigh)
		return ceiling, fmt.Sprintf("price over %s: max %s", format.Millions(priceTierHigh), format.Millions(ceiling))
	}
}
