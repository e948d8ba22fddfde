package models

import "time"

// Weekdays lists the assignable days in grid order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsWeekday reports whether day names a supported weekday.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// PeriodAssignmentType enumerates the kinds of taught periods.
type PeriodAssignmentType string

const (
	PeriodTypeTheory    PeriodAssignmentType = "theory"
	PeriodTypePractical PeriodAssignmentType = "practical"
	PeriodTypeLab       PeriodAssignmentType = "lab"
	PeriodTypeSports    PeriodAssignmentType = "sports"
	PeriodTypeLibrary   PeriodAssignmentType = "library"
)

// ValidPeriodType reports whether t is a known assignment type.
func ValidPeriodType(t PeriodAssignmentType) bool {
	switch t {
	case PeriodTypeTheory, PeriodTypePractical, PeriodTypeLab, PeriodTypeSports, PeriodTypeLibrary:
		return true
	}
	return false
}

// PeriodAssignment is one taught period inside a day's sequence.
// Room is optional; an empty room means the period needs no room and is
// exempt from room-conflict scanning.
type PeriodAssignment struct {
	PeriodNumber int                  `json:"period_number"`
	SubjectID    string               `json:"subject_id"`
	TeacherID    string               `json:"teacher_id"`
	StartTime    string               `json:"start_time"`
	EndTime      string               `json:"end_time"`
	Room         string               `json:"room,omitempty"`
	Type         PeriodAssignmentType `json:"type"`
}

// WeekMap maps a weekday name to that day's ordered period assignments.
// Within one day period numbers are unique; assigning to an occupied
// number replaces the existing entry.
type WeekMap map[string][]PeriodAssignment

// Clone returns a deep copy of the map.
func (w WeekMap) Clone() WeekMap {
	out := make(WeekMap, len(w))
	for day, entries := range w {
		cp := make([]PeriodAssignment, len(entries))
		copy(cp, entries)
		out[day] = cp
	}
	return out
}

// IsEmpty reports whether no day holds any assignment.
func (w WeekMap) IsEmpty() bool {
	for _, entries := range w {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

// Timetable is the weekly aggregate for one class in one academic
// year and semester. Saves replace the whole WeekMap; there are no
// partial-update primitives.
type Timetable struct {
	ID           string    `json:"id"`
	ClassID      string    `json:"class_id"`
	AcademicYear string    `json:"academic_year"`
	Semester     int       `json:"semester"`
	OutlineID    *string   `json:"outline_id"`
	Weekly       WeekMap   `json:"weekly_timetable"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TimetableSlot is a grid slot derived from an outline (or the default
// schedule) for rendering and break checks; breaks are included but
// never assignable.
type TimetableSlot struct {
	PeriodNumber int               `json:"period_number"`
	Name         string            `json:"name"`
	StartTime    string            `json:"start_time"`
	EndTime      string            `json:"end_time"`
	Type         OutlinePeriodType `json:"type"`
}

// Conflict kinds. Room conflicts block unless overridden; teacher
// conflicts are always advisory.
const (
	ConflictTypeRoom    = "room_conflict"
	ConflictTypeTeacher = "teacher_conflict"
)

// ConflictRecord describes one detected double-booking. Records are
// ephemeral: they ride in responses and errors, never in storage.
type ConflictRecord struct {
	Type              string           `json:"type"`
	Message           string           `json:"message"`
	ConflictingClass  string           `json:"conflicting_class"`
	Day               string           `json:"day"`
	ConflictingPeriod PeriodAssignment `json:"conflicting_period"`
}

// TimetableConflictError is returned when a save collides with existing
// room bookings and the caller did not override.
type TimetableConflictError struct {
	Message   string           `json:"message"`
	Conflicts []ConflictRecord `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *TimetableConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
