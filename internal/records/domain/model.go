package domain

import "time"

// Project is a unit of work owned by a single authenticated subject.
// It is storage-agnostic and used across repository, service and HTTP layers.
type Project struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Budget      float64    `json:"budget"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProjectPatch carries the fields of a partial project update.
// Nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
	Status      *Status
}

// Booking references exactly one Project. Project is populated on reads.
type Booking struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	ProjectName string    `json:"projectName"`
	Date        time.Time `json:"date"`
	Duration    string    `json:"duration"`
	Status      Status    `json:"status"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	Project     *Project  `json:"project,omitempty"`
}

// BookingPatch carries the fields of a partial booking update.
type BookingPatch struct {
	Date     *time.Time
	Duration *string
	Status   *Status
}

// Submission is an unauthenticated form submission. Fields are stored
// exactly as received.
type Submission struct {
	ID        string            `json:"id"`
	Form      FormKind          `json:"form"`
	Fields    map[string]string `json:"fields"`
	Status    Status            `json:"status,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Field returns the value of a submitted field, or "" when absent.
func (s Submission) Field(key string) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[key]
}

// DashboardStats summarises one owner's projects and bookings.
type DashboardStats struct {
	PendingProjects   int64 `json:"pendingProjects"`
	ActiveProjects    int64 `json:"activeProjects"`
	CompletedProjects int64 `json:"completedProjects"`
	CancelledProjects int64 `json:"cancelledProjects"`
	TotalBookings     int64 `json:"totalBookings"`
}
