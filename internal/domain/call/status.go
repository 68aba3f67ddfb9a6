package call

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusCompleted   Status = "completed"
	StatusInProgress  Status = "in-progress"
	StatusMissed      Status = "missed"
	StatusTransferred Status = "transferred"
)

// InitialDuration is stored until the call ends.
const InitialDuration = "0:00"

func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusCompleted, StatusInProgress, StatusMissed, StatusTransferred:
		return true
	}
	return false
}

// FormatDuration renders d as m:ss. Negative durations count as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
