package tariff

// Step is a position on the AVR Bayern seniority ladder. Steps 1-5
// carry a fixed tenure before the next automatic promotion; step 6 is
// the terminal "Sonderstufe" with no further progression.
type Step int

const (
	MinStep Step = 1
	// MaxStep is the terminal special step.
	MaxStep Step = 6
)

// stepDurations holds the required tenure in months per step before
// promotion to the next step, per AVR Bayern 2026 § 15.
//
//	Stufe 1 -> 12 months  -> Stufe 2
//	Stufe 2 -> 24 months  -> Stufe 3
//	Stufe 3 -> 60 months  -> Stufe 4
//	Stufe 4 -> 84 months  -> Stufe 5
//	Stufe 5 -> 180 months -> Sonderstufe
//
// These are policy constants. On a tariff revision they change here.
var stepDurations = map[Step]int{
	1: 12,
	2: 24,
	3: 60,
	4: 84,
	5: 180,
}

// PayGroups lists the AVR pay groups (Entgeltgruppen) E1-E14.
var PayGroups = []string{
	"E1", "E2", "E3", "E4", "E5", "E6", "E7",
	"E8", "E9", "E10", "E11", "E12", "E13", "E14",
}

// Valid reports whether s is a step on the ladder.
func (s Step) Valid() bool {
	return s >= MinStep && s <= MaxStep
}

// Terminal reports whether s is the special step with no further promotion.
func (s Step) Terminal() bool {
	return s >= MaxStep
}

// RequiredMonths returns the tenure in months required at step s before
// promotion to s+1. ok is false for the terminal step and for steps
// outside the ladder.
func RequiredMonths(s Step) (months int, ok bool) {
	months, ok = stepDurations[s]
	return months, ok
}

// CumulativeMonths returns the total months of service, counted from
// hire, after which an employee currently at step s is due for
// promotion to s+1. It sums the durations of steps 1..s.
func CumulativeMonths(s Step) int {
	total := 0
	for step := MinStep; step <= s; step++ {
		if months, ok := stepDurations[step]; ok {
			total += months
		}
	}
	return total
}
