// Package schedule decides whether a weekly delivery is due for a recipient.
package schedule

import (
	"time"

	"github.com/example/coachmail/internal/timezone"
	"github.com/example/coachmail/pkg/models"
)

// MinDeliveryGap is the minimum elapsed time since the last confirmed
// delivery before the next one may go out. Strictly more than six days
// must pass, so a recipient hit twice inside one weekly window (trigger
// jitter, manual re-invocation) is never delivered twice.
const MinDeliveryGap = 6 * 24 * time.Hour

// Window is the designated local delivery slot: a single weekday hour.
// The hourly trigger cadence makes a wider window unnecessary.
type Window struct {
	Weekday time.Weekday
	Hour    int
}

// IsDeliveryDue reports whether a delivery is due for the recipient at the
// given UTC instant. It is pure: no I/O, deterministic for a given state
// snapshot and instant.
func IsDeliveryDue(r *models.Recipient, nowUTC time.Time, w Window) bool {
	if r.CurrentWeek >= models.ProgramLengthWeeks {
		return false
	}
	if !r.Active {
		return false
	}

	localNow := timezone.Resolve(nowUTC, r.Timezone)
	if localNow.Weekday() != w.Weekday || localNow.Hour() != w.Hour {
		return false
	}

	if r.LastDeliveryAt != nil && nowUTC.Sub(*r.LastDeliveryAt) <= MinDeliveryGap {
		return false
	}

	return true
}
