package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelin/comite/internal/modules/normalize"
)

func TestComputeMissingProfileGating(t *testing.T) {
	op := normalize.OperationSummary{
		Meta: normalize.Meta{Profile: "marchand"},
	}

	items := ComputeMissing(op)

	keys := make(map[string]bool, len(items))
	for _, item := range items {
		keys[item.Key] = true
	}
	assert.True(t, keys["revenues.exitValue"], "resale profile requires an exit price")
	assert.False(t, keys["revenues.rentAnnual"], "rent is an investor requirement")
	assert.False(t, keys["revenues.occupancyRate"])
}

func TestComputeMissingUnknownProfileSkipsProfileSpecifics(t *testing.T) {
	items := ComputeMissing(normalize.OperationSummary{})

	for _, item := range items {
		assert.NotEqual(t, "revenues.exitValue", item.Key)
		assert.NotEqual(t, "revenues.rentAnnual", item.Key)
	}
}

func TestComputeMissingProfileFromStrategy(t *testing.T) {
	op := normalize.OperationSummary{
		Revenues: normalize.Revenues{Strategy: "location meublée"},
	}

	items := ComputeMissing(op)

	found := false
	for _, item := range items {
		if item.Key == "revenues.rentAnnual" {
			found = true
		}
	}
	assert.True(t, found, "rental strategy implies the investor taxonomy")
}

func TestComputeMissingDeduplicatesDeclaredItems(t *testing.T) {
	op := normalize.OperationSummary{
		Missing: []normalize.MissingDataItem{
			{Key: "budget.totalCost", Label: "Coût total (déclaré)", Severity: normalize.SeverityWarn},
			{Key: "budget.totalCost", Label: "doublon", Severity: normalize.SeverityWarn},
		},
	}

	items := ComputeMissing(op)

	count := 0
	for _, item := range items {
		if item.Key == "budget.totalCost" {
			count++
			assert.Equal(t, "Coût total (déclaré)", item.Label, "declared item wins over taxonomy")
		}
	}
	assert.Equal(t, 1, count)
}

func TestComputeMissingPresentFieldsExcluded(t *testing.T) {
	op := normalize.OperationSummary{
		Budget:    normalize.Budget{TotalCost: fp(800000)},
		Financing: normalize.Financing{LoanAmount: fp(600000)},
	}

	for _, item := range ComputeMissing(op) {
		assert.NotEqual(t, "budget.totalCost", item.Key)
		assert.NotEqual(t, "financing.loanAmount", item.Key)
	}
}

func TestTotalMissingPenalty(t *testing.T) {
	th := DefaultThresholds()

	items := []normalize.MissingDataItem{
		{Severity: normalize.SeverityBlocker},
		{Severity: normalize.SeverityWarn},
		{Severity: normalize.SeverityInfo},
	}
	assert.Equal(t, 12.0, TotalMissingPenalty(items, th))
	assert.Equal(t, 0.0, TotalMissingPenalty(nil, th))
}

func TestTotalMissingPenaltyCapped(t *testing.T) {
	th := DefaultThresholds()
	var items []normalize.MissingDataItem
	for i := 0; i < 10; i++ {
		items = append(items, normalize.MissingDataItem{Severity: normalize.SeverityBlocker})
	}
	assert.Equal(t, th.PenaltyCap, TotalMissingPenalty(items, th))
}

func TestCountBlockers(t *testing.T) {
	items := []normalize.MissingDataItem{
		{Severity: normalize.SeverityBlocker},
		{Severity: normalize.SeverityWarn},
		{Severity: normalize.SeverityBlocker},
	}
	assert.Equal(t, 2, CountBlockers(items))

	require.Equal(t, 0, CountBlockers(nil))
}
