// internal/premium/calculator_test.go
package premium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurance-solutions/vims-backend/internal/models"
)

func percentagePlan(odRate float64) *models.InsurancePlan {
	return &models.InsurancePlan{
		PlanCode:       "COMP-TEST",
		ODRateType:     models.RateTypePercentage,
		ODRateValue:    odRate,
		TPPremiumValue: 75000,
		GSTRate:        18.0,
		Addons: []models.PlanAddon{
			{AddonName: "zero_depreciation", PricingType: models.RateTypePercentage, PricingValue: 0.5},
			{AddonName: "roadside_assistance", PricingType: models.RateTypeFlat, PricingValue: 1200},
		},
	}
}

func TestCalculateWorkedScenario(t *testing.T) {
	// IDV 800,000 at a 100% OD rate with 20% NCB, TP 75,000, GST 18%.
	plan := percentagePlan(100)

	b := Calculate(plan, Input{IDV: 800000, NCBPercent: 20})
	require.NotNil(t, b)

	assert.InDelta(t, 800000.0, b.ODPremiumBase, 0.001)
	assert.InDelta(t, 160000.0, b.NCBDiscount, 0.001)
	assert.InDelta(t, 640000.0, b.ODPremium, 0.001)
	assert.InDelta(t, 75000.0, b.TPPremium, 0.001)
	assert.InDelta(t, 715000.0, b.TotalNetPremium, 0.001)
	assert.InDelta(t, 128700.0, b.TotalGST, 0.001)
	assert.InDelta(t, 843700.0, b.GrandTotalPremium, 0.001)
}

func TestCalculateIsDeterministic(t *testing.T) {
	plan := percentagePlan(2)
	in := Input{IDV: 800000, NCBPercent: 25, Addons: []string{"zero_depreciation", "roadside_assistance"}}

	first := Calculate(plan, in)
	second := Calculate(plan, in)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestCalculateNotComputable(t *testing.T) {
	assert.Nil(t, Calculate(nil, Input{IDV: 800000}))
	assert.Nil(t, Calculate(percentagePlan(2), Input{IDV: 0}))
	assert.Nil(t, Calculate(percentagePlan(2), Input{IDV: -100}))
}

func TestCalculateFlatODRate(t *testing.T) {
	plan := percentagePlan(0)
	plan.ODRateType = models.RateTypeFlat
	plan.ODRateValue = 12000

	b := Calculate(plan, Input{IDV: 800000})
	require.NotNil(t, b)
	assert.InDelta(t, 12000.0, b.ODPremiumBase, 0.001)
}

func TestCalculateODClamps(t *testing.T) {
	plan := percentagePlan(2)
	plan.MinODPremium = 20000

	b := Calculate(plan, Input{IDV: 800000})
	require.NotNil(t, b)
	assert.InDelta(t, 20000.0, b.ODPremiumBase, 0.001)

	plan.MinODPremium = 0
	plan.MaxODPremium = 10000
	b = Calculate(plan, Input{IDV: 800000})
	require.NotNil(t, b)
	assert.InDelta(t, 10000.0, b.ODPremiumBase, 0.001)

	// An unset max never clamps
	plan.MaxODPremium = 0
	b = Calculate(plan, Input{IDV: 800000})
	require.NotNil(t, b)
	assert.InDelta(t, 16000.0, b.ODPremiumBase, 0.001)
}

func TestCalculateNCBNeverGoesNegative(t *testing.T) {
	plan := percentagePlan(2)

	b := Calculate(plan, Input{IDV: 800000, NCBPercent: 100})
	require.NotNil(t, b)
	assert.Zero(t, b.ODPremium)
	assert.InDelta(t, 16000.0, b.NCBDiscount, 0.001)
}

func TestCalculateAddonPricing(t *testing.T) {
	plan := percentagePlan(2)

	b := Calculate(plan, Input{
		IDV:    800000,
		Addons: []string{"zero_depreciation", "roadside_assistance", "unlisted_extra"},
	})
	require.NotNil(t, b)

	// 0.5% of IDV plus the flat 1,200; the unknown name contributes nothing.
	assert.InDelta(t, 5200.0, b.AddonPremium, 0.001)
	require.Len(t, b.AddonDetails, 2)
	assert.Equal(t, "zero_depreciation", b.AddonDetails[0].Addon)
	assert.InDelta(t, 4000.0, b.AddonDetails[0].PremiumAmount, 0.001)
	assert.Equal(t, "roadside_assistance", b.AddonDetails[1].Addon)
	assert.InDelta(t, 1200.0, b.AddonDetails[1].PremiumAmount, 0.001)
}

func TestCalculateGSTDefaultsWhenPlanRateUnset(t *testing.T) {
	plan := percentagePlan(2)
	plan.GSTRate = 0

	b := Calculate(plan, Input{IDV: 800000})
	require.NotNil(t, b)
	assert.InDelta(t, DefaultGSTRate, b.GSTRate, 0.001)
}
