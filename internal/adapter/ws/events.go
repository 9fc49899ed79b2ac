package ws

// TaskStatusEvent is broadcast on every task lifecycle transition.
type TaskStatusEvent struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskCompletedEvent is broadcast once a task's result has been stored.
type TaskCompletedEvent struct {
	TaskID       string  `json:"task_id"`
	IssueCount   int     `json:"issue_count"`
	QualityScore float64 `json:"quality_score"`
}
