package notification

import (
	"time"
)

// Dedup windows. An open alert younger than the resend window
// suppresses a new one; acknowledging restores the employee's
// eligibility immediately. The acknowledged window is longer and only
// feeds the dashboard, it never suppresses a notification.
const (
	ResendWindow       = 7 * 24 * time.Hour
	AcknowledgedWindow = 30 * 24 * time.Hour
)

// Deduper answers whether a fresh promotion alert for an employee
// would be a duplicate of one already raised.
type Deduper struct {
	repo Repository
}

func NewDeduper(repo Repository) *Deduper {
	return &Deduper{repo: repo}
}

// ShouldNotify reports whether a new alert should be raised. Only an
// unacknowledged alert inside the resend window suppresses; an
// acknowledged one never does, no matter how recent.
func (d *Deduper) ShouldNotify(employeeID int64, kind string, now time.Time) (bool, error) {
	latest, err := d.repo.LatestUnacknowledged(employeeID, kind)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return now.Sub(latest.CreatedAt) >= ResendWindow, nil
}

// RecentlyAcknowledged reports whether the employee has an
// acknowledged alert of the given kind that was created within the
// dashboard window. The window runs from creation, not from the
// acknowledge click: an old alert stays cleared only as long as the
// alert itself is recent, so acknowledging a stale one does not hide
// the row for another 30 days. Dashboards use this to drop rows
// someone already dealt with.
func (d *Deduper) RecentlyAcknowledged(employeeID int64, kind string, now time.Time) (bool, error) {
	latest, err := d.repo.LatestAcknowledged(employeeID, kind)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	return now.Sub(latest.CreatedAt) < AcknowledgedWindow, nil
}
