// Package records defines the in-memory tabular inputs consumed by the
// forecast operations. Loading and persisting these rows is the data layer's
// concern; this module only reads them.
package records

import "time"

// Operation is one field operation run by the organization.
type Operation struct {
	ID         string    `json:"operation_id"`
	Type       string    `json:"operation_type"`
	State      string    `json:"state"`
	StartDate  time.Time `json:"start_date"`
	Outcome    string    `json:"outcome"`
	Volunteers int       `json:"volunteers_assigned"`
	Budget     float64   `json:"budget_allocated"`
	Equipment  int       `json:"equipment_used"`
	Vehicles   int       `json:"vehicles_deployed"`
}

// Assignment is one member assignment with its review outcome. Score is on a
// 0-100 scale where 0 means the assignment was never scored. Attendance is a
// 0-1 rate.
type Assignment struct {
	MemberID   string    `json:"member_id"`
	Type       string    `json:"assignment_type"`
	State      string    `json:"state"`
	Date       time.Time `json:"assignment_date"`
	Score      float64   `json:"performance_score"`
	Attendance float64   `json:"attendance"`
	Duration   float64   `json:"duration_hours"`
}
