package models

import "time"

// OutlinePeriodType distinguishes teachable periods from breaks.
type OutlinePeriodType string

const (
	OutlinePeriodTypePeriod OutlinePeriodType = "period"
	OutlinePeriodTypeBreak  OutlinePeriodType = "break"
)

// OutlinePeriod is one entry in a bell schedule. Order in the slice is
// presentation order; entries are not re-sorted by time. BreakDays
// lists weekdays on which this slot is a break even when Type is
// "period" (Saturday assemblies and the like).
type OutlinePeriod struct {
	Name      string            `json:"name"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Type      OutlinePeriodType `json:"type"`
	BreakDays []string          `json:"break_days,omitempty"`
	Duration  int               `json:"duration"`
}

// IsBreakOn reports whether this slot is a break on the given day.
func (p OutlinePeriod) IsBreakOn(day string) bool {
	if p.Type == OutlinePeriodTypeBreak {
		return true
	}
	for _, d := range p.BreakDays {
		if d == day {
			return true
		}
	}
	return false
}

// Outline is a named reusable bell schedule. Timetables reference an
// outline by id only; deleting an outline does not touch timetables
// already built from it.
type Outline struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Periods     []OutlinePeriod `db:"-" json:"periods"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
