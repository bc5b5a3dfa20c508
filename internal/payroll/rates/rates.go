// Package rates holds the statutory rate configuration consumed by the payroll
// engine. A Config is read-only once loaded; every run records the Version it
// was computed with.
package rates

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidConfig = errors.New("invalid rate config")

// PAYEBand contributes Rate × (taxable − Floor) whenever taxable exceeds Floor.
//
// Bands stack additively: an income above two floors pays both contributions on
// the full excess over each floor, not marginal slabs. That matches the payroll
// figures the portal has always produced and may differ from statutory marginal
// tax tables. Keep it until product decides otherwise.
type PAYEBand struct {
	Floor decimal.Decimal `json:"floor"`
	Rate  decimal.Decimal `json:"rate"`
}

// NHIFBand covers whole currency units Min..Max inclusive. A nil Max means the
// band is open ended and must be the last one.
type NHIFBand struct {
	Min    decimal.Decimal  `json:"min"`
	Max    *decimal.Decimal `json:"max,omitempty"`
	Amount decimal.Decimal  `json:"amount"`
}

type Contribution struct {
	Employee decimal.Decimal `json:"employee"`
	Employer decimal.Decimal `json:"employer"`
}

type Config struct {
	Version      string          `json:"version"`
	PAYEBands    []PAYEBand      `json:"paye_bands"`
	NSSF         Contribution    `json:"nssf"`
	SHIFRate     decimal.Decimal `json:"shif_rate"`
	AHL          Contribution    `json:"ahl"`
	NHIFBands    []NHIFBand      `json:"nhif_bands"`
	NHIFFallback decimal.Decimal `json:"nhif_fallback"`
	NITAEmployer decimal.Decimal `json:"nita_employer"`
}

func Default() Config {
	return Config{
		Version: "2024.06-default",
		PAYEBands: []PAYEBand{
			{Floor: decimal.NewFromInt(24000), Rate: decimal.RequireFromString("0.10")},
			{Floor: decimal.NewFromInt(32333), Rate: decimal.RequireFromString("0.15")},
		},
		NSSF: Contribution{
			Employee: decimal.NewFromInt(1080),
			Employer: decimal.NewFromInt(1080),
		},
		SHIFRate: decimal.RequireFromString("0.0275"),
		AHL: Contribution{
			Employee: decimal.RequireFromString("0.015"),
			Employer: decimal.RequireFromString("0.015"),
		},
		NHIFBands: []NHIFBand{
			band(0, 5999, 150),
			band(6000, 7999, 300),
			band(8000, 11999, 400),
			band(12000, 14999, 500),
			band(15000, 19999, 600),
			band(20000, 24999, 750),
			band(25000, 29999, 850),
			band(30000, 34999, 900),
			band(35000, 39999, 950),
			band(40000, 44999, 1000),
			band(45000, 49999, 1100),
			band(50000, 59999, 1200),
			band(60000, 69999, 1300),
			band(70000, 79999, 1400),
			band(80000, 89999, 1500),
			band(90000, 99999, 1600),
			{Min: decimal.NewFromInt(100000), Amount: decimal.NewFromInt(1700)},
		},
		NHIFFallback: decimal.NewFromInt(750),
		NITAEmployer: decimal.NewFromInt(50),
	}
}

func band(min, max, amount int64) NHIFBand {
	m := decimal.NewFromInt(max)
	return NHIFBand{
		Min:    decimal.NewFromInt(min),
		Max:    &m,
		Amount: decimal.NewFromInt(amount),
	}
}

// Validate reports configuration errors. A config that fails here must never
// reach a payroll run.
func (c Config) Validate() error {
	if len(c.PAYEBands) == 0 {
		return fmt.Errorf("%w: at least one PAYE band is required", ErrInvalidConfig)
	}
	for i, b := range c.PAYEBands {
		if b.Floor.IsNegative() {
			return fmt.Errorf("%w: PAYE band %d has a negative floor", ErrInvalidConfig, i)
		}
		if !isFraction(b.Rate) {
			return fmt.Errorf("%w: PAYE band %d rate must be within [0,1]", ErrInvalidConfig, i)
		}
		if i > 0 && !b.Floor.GreaterThan(c.PAYEBands[i-1].Floor) {
			return fmt.Errorf("%w: PAYE band floors must be strictly ascending", ErrInvalidConfig)
		}
	}

	if err := validateNHIF(c.NHIFBands); err != nil {
		return err
	}

	if c.NHIFFallback.IsNegative() {
		return fmt.Errorf("%w: NHIF fallback cannot be negative", ErrInvalidConfig)
	}
	if c.NSSF.Employee.IsNegative() || c.NSSF.Employer.IsNegative() {
		return fmt.Errorf("%w: NSSF contributions cannot be negative", ErrInvalidConfig)
	}
	if c.NITAEmployer.IsNegative() {
		return fmt.Errorf("%w: NITA contribution cannot be negative", ErrInvalidConfig)
	}
	if !isFraction(c.SHIFRate) {
		return fmt.Errorf("%w: SHIF rate must be within [0,1]", ErrInvalidConfig)
	}
	if !isFraction(c.AHL.Employee) || !isFraction(c.AHL.Employer) {
		return fmt.Errorf("%w: AHL rates must be within [0,1]", ErrInvalidConfig)
	}

	return nil
}

func validateNHIF(bands []NHIFBand) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: NHIF band table is empty", ErrInvalidConfig)
	}
	if !bands[0].Min.IsZero() {
		return fmt.Errorf("%w: first NHIF band must start at 0", ErrInvalidConfig)
	}

	one := decimal.NewFromInt(1)
	for i, b := range bands {
		if b.Amount.IsNegative() {
			return fmt.Errorf("%w: NHIF band %d has a negative amount", ErrInvalidConfig, i)
		}
		if !b.Min.Equal(b.Min.Floor()) {
			return fmt.Errorf("%w: NHIF band %d bounds must be whole units", ErrInvalidConfig, i)
		}

		last := i == len(bands)-1
		if b.Max == nil {
			if !last {
				return fmt.Errorf("%w: only the last NHIF band may be open ended", ErrInvalidConfig)
			}
			continue
		}
		if last {
			return fmt.Errorf("%w: last NHIF band must be open ended", ErrInvalidConfig)
		}
		if !b.Max.Equal(b.Max.Floor()) {
			return fmt.Errorf("%w: NHIF band %d bounds must be whole units", ErrInvalidConfig, i)
		}
		if b.Max.LessThan(b.Min) {
			return fmt.Errorf("%w: NHIF band %d max is below its min", ErrInvalidConfig, i)
		}

		next := bands[i+1].Min
		switch {
		case next.LessThanOrEqual(*b.Max):
			return fmt.Errorf("%w: NHIF bands %d and %d overlap", ErrInvalidConfig, i, i+1)
		case !next.Equal(b.Max.Add(one)):
			return fmt.Errorf("%w: gap between NHIF bands %d and %d", ErrInvalidConfig, i, i+1)
		}
	}

	return nil
}

// NHIFAmount looks up the band for income floored to whole units. Validated
// tables cover [0, ∞) so only a negative income reaches the fallback.
func (c Config) NHIFAmount(income decimal.Decimal) decimal.Decimal {
	whole := income.Floor()
	for _, b := range c.NHIFBands {
		if whole.LessThan(b.Min) {
			continue
		}
		if b.Max == nil || whole.LessThanOrEqual(*b.Max) {
			return b.Amount
		}
	}
	return c.NHIFFallback
}

func isFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}
