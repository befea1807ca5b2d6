// internal/premium/calculator.go
package premium

import (
	"github.com/insurance-solutions/vims-backend/internal/models"
)

// Input carries everything the calculator needs besides the plan itself.
type Input struct {
	IDV        float64  `json:"idv"`
	Addons     []string `json:"addons"`
	NCBPercent float64  `json:"ncb_percent"`
}

// AddonDetail is the priced line for one selected add-on.
type AddonDetail struct {
	Addon         string  `json:"addon"`
	PremiumAmount float64 `json:"premium_amount"`
}

// Breakdown carries every intermediate value for audit and display.
type Breakdown struct {
	ODPremiumBase     float64       `json:"od_premium_base"`
	NCBDiscount       float64       `json:"ncb_discount"`
	ODPremium         float64       `json:"od_premium"`
	TPPremium         float64       `json:"tp_premium"`
	AddonPremium      float64       `json:"addon_premium"`
	AddonDetails      []AddonDetail `json:"addon_details"`
	TotalNetPremium   float64       `json:"total_net_premium"`
	GSTRate           float64       `json:"gst_rate"`
	TotalGST          float64       `json:"total_gst"`
	GrandTotalPremium float64       `json:"grand_total_premium"`
}

// DefaultGSTRate applies when the plan does not set one.
const DefaultGSTRate = 18.0

// Calculate prices a quote. It is deterministic and pure. A nil plan or a
// non-positive IDV returns nil: the quote is not computable, which callers
// must never confuse with a zero premium.
//
// Rules: OD from the plan's rate type, clamped to the plan's min always and
// max only when the max is set above zero; the NCB discount applies to OD
// only and never drives it below zero; TP is the plan's flat value; add-ons
// are priced from the plan catalog and unknown names are silently ignored.
func Calculate(plan *models.InsurancePlan, in Input) *Breakdown {
	if plan == nil || in.IDV <= 0 {
		return nil
	}

	var od float64
	if plan.ODRateType == models.RateTypePercentage {
		od = in.IDV * plan.ODRateValue / 100.0
	} else {
		od = plan.ODRateValue
	}

	if plan.MinODPremium > 0 && od < plan.MinODPremium {
		od = plan.MinODPremium
	}
	if plan.MaxODPremium > 0 && od > plan.MaxODPremium {
		od = plan.MaxODPremium
	}

	ncbDiscount := od * in.NCBPercent / 100.0
	odAfterNCB := od - ncbDiscount
	if odAfterNCB < 0 {
		odAfterNCB = 0
	}

	tp := plan.TPPremiumValue

	catalog := make(map[string]*models.PlanAddon, len(plan.Addons))
	for i := range plan.Addons {
		catalog[plan.Addons[i].AddonName] = &plan.Addons[i]
	}

	var addonTotal float64
	var details []AddonDetail
	for _, name := range in.Addons {
		row, ok := catalog[name]
		if !ok {
			continue
		}
		var cost float64
		switch row.PricingType {
		case models.RateTypeFlat:
			cost = row.PricingValue
		case models.RateTypePercentage:
			cost = in.IDV * row.PricingValue / 100.0
		}
		addonTotal += cost
		details = append(details, AddonDetail{Addon: name, PremiumAmount: cost})
	}

	totalNet := odAfterNCB + tp + addonTotal

	gstRate := plan.GSTRate
	if gstRate == 0 {
		gstRate = DefaultGSTRate
	}
	totalGST := totalNet * gstRate / 100.0

	return &Breakdown{
		ODPremiumBase:     od,
		NCBDiscount:       ncbDiscount,
		ODPremium:         odAfterNCB,
		TPPremium:         tp,
		AddonPremium:      addonTotal,
		AddonDetails:      details,
		TotalNetPremium:   totalNet,
		GSTRate:           gstRate,
		TotalGST:          totalGST,
		GrandTotalPremium: totalNet + totalGST,
	}
}
