package shopfloor

import (
	"time"

	"shopcore/store"
)

// Shift window. Work happens 07:00 to 16:00 local, Monday through Friday.
const (
	shiftStartHour = 7
	shiftEndHour   = 16
	shiftHours     = float64(shiftEndHour - shiftStartHour)
)

// ComputeEnd returns the timestamp at which work of the given duration
// finishes when started at start. Hours are consumed against the
// remaining shift window of the start day; leftover duration rolls to
// 07:00 of the next weekday. A duration that exactly fills the
// remaining window ends at 16:00 the same day, it does not roll over.
func ComputeEnd(start time.Time, hours float64) time.Time {
	if hours <= 0 {
		return start
	}

	cur := start
	remaining := hours

	if wd := cur.Weekday(); wd != time.Saturday && wd != time.Sunday {
		shiftStart := time.Date(cur.Year(), cur.Month(), cur.Day(), shiftStartHour, 0, 0, 0, cur.Location())
		if cur.Before(shiftStart) {
			cur = shiftStart
		}
		shiftEnd := time.Date(cur.Year(), cur.Month(), cur.Day(), shiftEndHour, 0, 0, 0, cur.Location())
		left := shiftEnd.Sub(cur).Hours()
		if left > 0 {
			if remaining <= left {
				return cur.Add(durationHours(remaining))
			}
			remaining -= left
		}
	}

	for {
		cur = nextShiftMorning(cur)
		if remaining <= shiftHours {
			return cur.Add(durationHours(remaining))
		}
		remaining -= shiftHours
	}
}

// nextShiftMorning returns 07:00 on the next weekday after t's day.
func nextShiftMorning(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), shiftStartHour, 0, 0, 0, t.Location())
	for {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return d
		}
	}
}

func durationHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// JobDurationHours is the length of a job's scheduled interval, falling
// back to its estimate when the job was never placed on the calendar.
func JobDurationHours(j *store.Job) float64 {
	if j.ScheduledStart != nil && j.ScheduledEnd != nil {
		if d := j.ScheduledEnd.Sub(*j.ScheduledStart).Hours(); d > 0 {
			return d
		}
	}
	if j.EstimatedMinutes > 0 {
		return float64(j.EstimatedMinutes) / 60
	}
	return 1
}
