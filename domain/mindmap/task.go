package mindmap

import (
	"time"

	"pgy3-backend/pkg/utils"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// DefaultTaskPriority is applied when a task arrives without one. Priority is
// free text; low, medium and high are the conventional values.
const DefaultTaskPriority = "medium"

// Task is a study or follow-up item.
type Task struct {
	Node
	Title         string     `json:"title" validate:"required"`
	Description   *string    `json:"description,omitempty"`
	Status        TaskStatus `json:"status" validate:"oneof=pending in_progress completed"`
	Priority      string     `json:"priority"`
	DueDate       *Timestamp `json:"due_date,omitempty"`
	LinkedCaseID  *string    `json:"linked_case_id,omitempty"`
	LinkedTopicID *string    `json:"linked_topic_id,omitempty"`

	Extra Fields `json:"-"`
}

type taskAlias Task

func (t *Task) UnmarshalJSON(data []byte) error {
	var a taskAlias
	extra, err := decodeObject(data, &a)
	if err != nil {
		return err
	}
	*t = Task(a)
	t.Extra = extra
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	return encodeObject(taskAlias(t), t.Extra)
}

func (t *Task) Kind() Kind { return KindTask }

func (t *Task) Validate() error {
	return utils.ValidateStruct(t, "invalid task")
}

func (t *Task) normalize(now time.Time, newID IDGenerator) {
	t.normalizeNode(now, newID)
	t.applyDefaults()
}

func (t *Task) applyDefaults() {
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.Priority == "" {
		t.Priority = DefaultTaskPriority
	}
	if t.DueDate != nil && t.DueDate.IsZero() {
		t.DueDate = nil
	}
}
