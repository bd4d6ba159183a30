package pulse

// Event topics published by the Pulse module.
const (
	TopicExecuteRequested = "pulse.execute.requested"
	TopicExecuteCompleted = "pulse.execute.completed"
)

// ExecuteRequestedEvent is the payload of TopicExecuteRequested.
type ExecuteRequestedEvent struct {
	Outcome  string   `json:"outcome"`
	Message  string   `json:"message"`
	TaskIDs  []string `json:"task_ids"`
	Accepted int      `json:"accepted"`
	Filtered int      `json:"filtered"`
}

// ExecuteCompletedEvent is the payload of TopicExecuteCompleted, one per task.
type ExecuteCompletedEvent struct {
	TaskID   string     `json:"task_id"`
	ObjectID string     `json:"object_id"`
	Status   TaskStatus `json:"status"`
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
}
