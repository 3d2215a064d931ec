package tariff

// AlarmLevel is the traffic-light urgency of a pending promotion.
type AlarmLevel string

const (
	LevelRed    AlarmLevel = "red"
	LevelYellow AlarmLevel = "yellow"
	LevelGreen  AlarmLevel = "green"
)

// AlarmStatus is the classification result for one employee.
type AlarmStatus struct {
	Alarm         bool       `json:"alarm"`
	Level         AlarmLevel `json:"level"`
	DaysRemaining *int       `json:"days_remaining,omitempty"`
}

// Classify maps days-remaining against the configured threshold.
//
//	nil              -> green, no alarm (terminal step, nothing pending)
//	< 0              -> red, alarm (overdue)
//	0..threshold     -> red, alarm (urgent)
//	..2*threshold    -> yellow, no alarm (watch zone)
//	beyond           -> green, no alarm
//
// Overdue and urgent share the red level; the badge label difference
// is the caller's concern. The classifier holds no default threshold,
// callers resolve it from settings.
func Classify(daysRemaining *int, thresholdDays int) AlarmStatus {
	if daysRemaining == nil {
		return AlarmStatus{Alarm: false, Level: LevelGreen}
	}

	days := *daysRemaining

	if days < 0 {
		return AlarmStatus{Alarm: true, Level: LevelRed, DaysRemaining: daysRemaining}
	}
	if days <= thresholdDays {
		return AlarmStatus{Alarm: true, Level: LevelRed, DaysRemaining: daysRemaining}
	}
	if days <= 2*thresholdDays {
		return AlarmStatus{Alarm: false, Level: LevelYellow, DaysRemaining: daysRemaining}
	}
	return AlarmStatus{Alarm: false, Level: LevelGreen, DaysRemaining: daysRemaining}
}
