package booking

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// InitialStatus is applied to bookings created without a status.
func InitialStatus() Status {
	return StatusUpcoming
}

func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusUpcoming, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}
