// Package status derives the maintenance health of item parts from their
// frequency and the time they were last done.
package status

import (
	"math"
	"time"
)

type Status string

const (
	Red    Status = "red"
	Yellow Status = "yellow"
	Green  Status = "green"
	// None is the aggregate status of an item without parts.
	None Status = "none"
)

const day = 24 * time.Hour

// Rank orders statuses worst first: red, yellow, green, none. Unknown values
// sort after none.
func (s Status) Rank() int {
	switch s {
	case Red:
		return 0
	case Yellow:
		return 1
	case Green:
		return 2
	case None:
		return 3
	default:
		return 4
	}
}

func (s Status) Label() string {
	switch s {
	case Red:
		return "OVERDUE"
	case Yellow:
		return "DUE SOON"
	case Green:
		return "ON SCHEDULE"
	default:
		return "NO PARTS"
	}
}

// Compare returns a negative number when a sorts before b.
func Compare(a, b Status) int {
	return a.Rank() - b.Rank()
}

// Worst aggregates child statuses: red beats yellow beats green. No children
// gives None.
func Worst(statuses ...Status) Status {
	if len(statuses) == 0 {
		return None
	}
	worst := statuses[0]
	for _, s := range statuses[1:] {
		if Compare(s, worst) < 0 {
			worst = s
		}
	}
	return worst
}

// Calculator evaluates statuses against a clock. The zero value uses
// time.Now.
type Calculator struct {
	now func() time.Time
}

func NewCalculator(now func() time.Time) *Calculator {
	return &Calculator{now: now}
}

func (c *Calculator) Now() time.Time {
	if c == nil || c.now == nil {
		return time.Now()
	}
	return c.now()
}

// DaysSince returns the number of whole days between lastDoneAt and now,
// floored. ok is false when lastDoneAt is nil.
func (c *Calculator) DaysSince(lastDoneAt *time.Time) (days int, ok bool) {
	if lastDoneAt == nil {
		return 0, false
	}
	elapsed := c.Now().Sub(*lastDoneAt)
	return int(math.Floor(float64(elapsed) / float64(day))), true
}

// Of returns the status of a part done every freqDays days and last done at
// lastDoneAt.
func (c *Calculator) Of(freqDays int, lastDoneAt *time.Time) Status {
	daysSince, ok := c.DaysSince(lastDoneAt)
	if !ok {
		return Red
	}
	switch {
	case daysSince >= freqDays:
		return Red
	// daysSince >= 0.8*freqDays without floating point.
	case 5*daysSince >= 4*freqDays:
		return Yellow
	default:
		return Green
	}
}
