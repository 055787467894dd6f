package domain

// TaskStats aggregates task counts over a caller's visible scope.
// The zero value is the valid result for an empty scope.
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Low        int `json:"low"`
	Medium     int `json:"medium"`
	High       int `json:"high"`
	Urgent     int `json:"urgent"`
}

// Add counts a single task into the matching buckets.
func (s *TaskStats) Add(status TaskStatus, priority TaskPriority) {
	s.Total++
	switch status {
	case TaskStatusPending:
		s.Pending++
	case TaskStatusInProgress:
		s.InProgress++
	case TaskStatusCompleted:
		s.Completed++
	}
	switch priority {
	case TaskPriorityLow:
		s.Low++
	case TaskPriorityMedium:
		s.Medium++
	case TaskPriorityHigh:
		s.High++
	case TaskPriorityUrgent:
		s.Urgent++
	}
}
