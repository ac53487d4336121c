package monitor

import "time"

// Status is the last observed state of every probed dependency.
type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy reports whether every probed dependency answered.
func (s Status) Healthy() bool {
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}
