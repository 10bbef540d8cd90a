// Package formulas provides pure financial math shared across the engine.
// All functions are side-effect free; nil pointers mean "not computable".
package formulas

import "math"

// AnnuityMonthlyPayment returns the constant monthly payment of an amortizing
// loan. annualRate is expressed as a percentage (e.g. 3.5 for 3.5%).
// Returns 0 when the inputs cannot describe a loan.
func AnnuityMonthlyPayment(principal, annualRate float64, months int) float64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	if annualRate <= 0 {
		// Interest-free edge case: straight-line repayment
		return principal / float64(months)
	}
	r := annualRate / 100 / 12
	factor := math.Pow(1+r, float64(months))
	return principal * r * factor / (factor - 1)
}

// AnnualDebtService returns the yearly debt service of an amortizing loan.
func AnnualDebtService(principal, annualRate float64, months int) float64 {
	return AnnuityMonthlyPayment(principal, annualRate, months) * 12
}

// DSCR returns annual income divided by annual debt service.
// Returns nil when debt service is zero or negative (ratio undefined).
func DSCR(annualIncome, annualDebtService float64) *float64 {
	if annualDebtService <= 0 {
		return nil
	}
	v := annualIncome / annualDebtService
	return &v
}

// LTV returns loan-to-value as a percentage (0-100+).
// Returns nil when the reference value is not positive.
func LTV(loanAmount, assetValue float64) *float64 {
	return ratioPct(loanAmount, assetValue)
}

// LTC returns loan-to-cost as a percentage (0-100+).
func LTC(loanAmount, totalCost float64) *float64 {
	return ratioPct(loanAmount, totalCost)
}

// GrossYield returns annual rent over total cost, as a percentage.
func GrossYield(rentAnnual, totalCost float64) *float64 {
	return ratioPct(rentAnnual, totalCost)
}

// Margin returns (exit value - total cost) / total cost, as a percentage.
func Margin(exitValue, totalCost float64) *float64 {
	if totalCost <= 0 {
		return nil
	}
	v := (exitValue - totalCost) / totalCost * 100
	return &v
}

// ROI returns profit over invested equity, as a percentage.
// Falls back to margin when equity is unknown or zero.
func ROI(exitValue, totalCost, equity float64) *float64 {
	if equity > 0 {
		v := (exitValue - totalCost) / equity * 100
		return &v
	}
	return Margin(exitValue, totalCost)
}

func ratioPct(num, den float64) *float64 {
	if den <= 0 {
		return nil
	}
	v := num / den * 100
	return &v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1 rounds to 1 decimal place
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Round2 rounds to 2 decimal places
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
