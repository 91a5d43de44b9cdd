package domain

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ProjectStatuses lists every status a project may hold.
var ProjectStatuses = []Status{StatusPending, StatusActive, StatusCompleted, StatusCancelled}

// BookingStatuses lists every status a booking may hold.
var BookingStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// Any value of the enumeration is accepted; there are no transition guards.
func IsProjectStatus(s Status) bool {
	return contains(ProjectStatuses, s)
}

func IsBookingStatus(s Status) bool {
	return contains(BookingStatuses, s)
}

func contains(set []Status, s Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
