package tariff

import "time"

// Assessment is the outcome of reconstructing a step purely from the
// hire date. It is an audit view and never overwrites stored data.
type Assessment struct {
	Step              Step       `json:"step"`
	NextPromotionDate *time.Time `json:"next_promotion_date,omitempty"`
	DaysRemaining     *int       `json:"days_remaining,omitempty"`
	Terminal          bool       `json:"terminal"`
}

// NextPromotionDate returns the date an employee at currentStep, hired
// on hireDate, is due for promotion to the next step. It returns nil
// for the terminal step.
//
// The date is hireDate plus the cumulative schedule months for steps
// 1..currentStep using time.AddDate month arithmetic: a hire date on
// the 31st rolling into a shorter month spills into the following
// month (Go's normalized calendar behavior). That rollover is the
// contract, covered by tests, not an accident.
func NextPromotionDate(hireDate time.Time, currentStep Step) *time.Time {
	if currentStep.Terminal() {
		return nil
	}

	months := CumulativeMonths(currentStep)
	next := hireDate.AddDate(0, months, 0)
	return &next
}

// DaysUntil returns the number of calendar days from now until target.
// Both dates are rebuilt as UTC midnights first so neither time-of-day
// nor a DST transition in the local zone can shift the result: a
// midnight-to-midnight span across a spring-forward change is an hour
// short of N*24h in local time and would otherwise truncate a day off.
// Negative values mean target has passed.
//
// This is the single day-difference rule for the whole engine. Every
// caller that needs days-remaining goes through here so the rounding
// cannot drift between call sites.
func DaysUntil(target, now time.Time) int {
	t := midnightUTC(target)
	n := midnightUTC(now)
	return int(t.Sub(n) / (24 * time.Hour))
}

// DaysRemaining applies DaysUntil to an optional promotion date.
func DaysRemaining(next *time.Time, now time.Time) *int {
	if next == nil {
		return nil
	}
	days := DaysUntil(*next, now)
	return &days
}

// IsPromotionUpcoming reports whether a promotion falls inside the
// alarm window: due today or within thresholdDays from now. Overdue
// promotions are not "upcoming"; they surface as red via Classify.
func IsPromotionUpcoming(next *time.Time, now time.Time, thresholdDays int) bool {
	if next == nil {
		return false
	}
	days := DaysUntil(*next, now)
	return days >= 0 && days <= thresholdDays
}

// StepFromHireDate reconstructs the step an employee should hold today
// based only on elapsed service, walking the schedule cumulatively.
// Months of service are counted as whole calendar months
// (year and month difference), matching how the tariff automatic is
// applied in payroll practice.
func StepFromHireDate(hireDate, now time.Time) Assessment {
	monthsSinceHire := (now.Year()-hireDate.Year())*12 + int(now.Month()) - int(hireDate.Month())

	step := MinStep
	cumulative := 0
	for s := MinStep; s < MaxStep; s++ {
		months, ok := RequiredMonths(s)
		if !ok {
			break
		}
		if monthsSinceHire >= cumulative+months {
			step = s + 1
			cumulative += months
		} else {
			break
		}
	}

	next := NextPromotionDate(hireDate, step)
	return Assessment{
		Step:              step,
		NextPromotionDate: next,
		DaysRemaining:     DaysRemaining(next, now),
		Terminal:          step.Terminal(),
	}
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
