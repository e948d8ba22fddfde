package models

import "time"

// Teacher represents an instructor record. SubjectQualifications holds
// the subject ids the teacher may be scheduled for.
type Teacher struct {
	ID                    string    `db:"id" json:"id"`
	Email                 string    `db:"email" json:"email"`
	FullName              string    `db:"full_name" json:"full_name"`
	SubjectQualifications []string  `db:"-" json:"subject_qualifications"`
	ExperienceYears       int       `db:"experience_years" json:"experience_years"`
	MaxPeriodsPerDay      int       `db:"max_periods_per_day" json:"max_periods_per_day"`
	Active                bool      `db:"active" json:"active"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherWorkloadStats summarises a teacher's current scheduling load
// across every class timetable.
type TeacherWorkloadStats struct {
	TotalCurrentPeriods int `json:"total_current_periods"`
}

// AvailableTeacher annotates a qualified teacher with booking state for
// a candidate slot. Booked teachers stay in the result; double-booking
// a teacher is allowed, the caller just gets told about it.
type AvailableTeacher struct {
	Teacher
	ExperienceLevel        string               `json:"experience_level"`
	IsBooked               bool                 `json:"is_booked"`
	ConflictingAssignments []ConflictRecord     `json:"conflicting_assignments,omitempty"`
	WorkloadStats          TeacherWorkloadStats `json:"workload_stats"`
}
