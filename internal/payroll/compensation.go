package payroll

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/pflegewerk/lohnmonitor/internal"
)

// WeeksPerMonth is the payroll-standard average of weeks per month
// (365.25 days / 7 / 12). Fixed by convention, not configurable.
var WeeksPerMonth = decimal.NewFromFloat(4.348)

// Flat team-lead bonuses in EUR. Applied per flag, additively when
// both flags are set. The editing UI treats them as exclusive but the
// stored data may carry both, and the engine honors both.
var (
	flatBonus100 = decimal.NewFromInt(100)
	flatBonus150 = decimal.NewFromInt(150)
)

// AllowanceSet is the typed view of the allowances blob stored on an
// employee record. Group and shift values are the full-time amounts;
// they get prorated by the part-time fraction.
type AllowanceSet struct {
	Group    float64 `json:"gruppe"`
	Shift    float64 `json:"schicht"`
	Bonus100 bool    `json:"tl100"`
	Bonus150 bool    `json:"tl150"`
}

// ParseAllowances decodes the stored JSON blob. A malformed blob
// degrades to an all-zero set; the returned error describes the data
// problem for logging but callers continue with the zero set.
func ParseAllowances(raw string) (AllowanceSet, error) {
	var set AllowanceSet
	if raw == "" {
		return set, nil
	}
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return AllowanceSet{}, internal.NewDataError(
			"malformed allowances blob, substituting zero allowances",
			internal.ErrCodeMalformedAllowances, err)
	}
	return set, nil
}

// Breakdown is the layered gross-salary figure for one employee.
// Derived, never stored; every field is rounded to two decimal places
// at report time.
type Breakdown struct {
	WeeklyHours     decimal.Decimal `json:"weekly_hours"`
	MonthlyHours    decimal.Decimal `json:"monthly_hours"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	BaseGross       decimal.Decimal `json:"base_gross"`
	GroupAllowance  decimal.Decimal `json:"group_allowance"`
	ShiftAllowance  decimal.Decimal `json:"shift_allowance"`
	Bonus100        decimal.Decimal `json:"bonus_100"`
	Bonus150        decimal.Decimal `json:"bonus_150"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalGross      decimal.Decimal `json:"total_gross"`
}

// MonthlyHours converts weekly hours to the monthly figure used on
// payslips.
func MonthlyHours(weeklyHours float64) decimal.Decimal {
	return decimal.NewFromFloat(weeklyHours).Mul(WeeksPerMonth)
}

// ComputeGross computes the full compensation breakdown.
//
// Base pay is monthlyHours * hourlyRate. Group and shift allowances
// are prorated by weeklyHours/referenceWeeklyHours and applied only
// when their full-time value is positive. Flat bonuses are constants
// gated by their flags.
//
// referenceWeeklyHours must be positive; a zero or negative reference
// is a configuration error, never a silent division or fallback,
// because it changes money amounts.
func ComputeGross(weeklyHours, hourlyRate float64, allowances AllowanceSet, referenceWeeklyHours float64) (Breakdown, error) {
	if referenceWeeklyHours <= 0 {
		return Breakdown{}, internal.NewConfigurationError(
			"reference weekly hours must be positive",
			internal.ErrCodeInvalidReference)
	}

	weekly := decimal.NewFromFloat(weeklyHours)
	rate := decimal.NewFromFloat(hourlyRate)
	reference := decimal.NewFromFloat(referenceWeeklyHours)

	monthlyHours := weekly.Mul(WeeksPerMonth)
	baseGross := monthlyHours.Mul(rate)

	partTimeFraction := weekly.Div(reference)

	var groupAllowance, shiftAllowance decimal.Decimal
	if allowances.Group > 0 {
		groupAllowance = partTimeFraction.Mul(decimal.NewFromFloat(allowances.Group))
	}
	if allowances.Shift > 0 {
		shiftAllowance = partTimeFraction.Mul(decimal.NewFromFloat(allowances.Shift))
	}

	var bonus100, bonus150 decimal.Decimal
	if allowances.Bonus100 {
		bonus100 = flatBonus100
	}
	if allowances.Bonus150 {
		bonus150 = flatBonus150
	}

	totalAllowances := groupAllowance.Add(shiftAllowance).Add(bonus100).Add(bonus150)
	totalGross := baseGross.Add(totalAllowances)

	return Breakdown{
		WeeklyHours:     weekly,
		MonthlyHours:    monthlyHours.Round(2),
		HourlyRate:      rate,
		BaseGross:       baseGross.Round(2),
		GroupAllowance:  groupAllowance.Round(2),
		ShiftAllowance:  shiftAllowance.Round(2),
		Bonus100:        bonus100,
		Bonus150:        bonus150,
		TotalAllowances: totalAllowances.Round(2),
		TotalGross:      totalGross.Round(2),
	}, nil
}
