package domain

import "time"

// TaskStatus is the externally visible lifecycle state of a task.
// Transitions are monotone: processing moves to completed or error and
// never back.
type TaskStatus string

const (
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusError      TaskStatus = "error"
)

// Terminal reports whether no further transition is allowed.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Stage is the internal pipeline state, finer than TaskStatus.
type Stage string

const (
	StageStarted    Stage = "started"
	StageValidating Stage = "validating"
	StageProcessing Stage = "processing"
	StagePacking    Stage = "packing"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Task is the persisted record of one compression request.
type Task struct {
	ID          string      `json:"id"`
	Status      TaskStatus  `json:"status"`
	Stage       Stage       `json:"stage"`
	Progress    int         `json:"progress"`
	CurrentFile string      `json:"currentFile,omitempty"`
	Filename    string      `json:"filename,omitempty"`
	Level       Level       `json:"level"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Result      *TaskResult `json:"result,omitempty"`
	Error       *TaskError  `json:"error,omitempty"`
}

// TaskResult is present iff the task completed.
type TaskResult struct {
	OriginalSize     int64  `json:"originalSize"`
	CompressedSize   int64  `json:"compressedSize"`
	CompressionRatio int    `json:"compressionRatio"`
	BytesSaved       int64  `json:"bytesSaved"`
	Entries          int    `json:"entries"`
	FailedEntries    int    `json:"failedEntries"`
	Artifact         string `json:"artifact"`
	Filename         string `json:"filename"`
}

// TaskError is present iff the task failed.
type TaskError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// EventType distinguishes progress notifications from terminal ones.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// ProgressEvent is published after every committed task transition.
type ProgressEvent struct {
	Type        EventType   `json:"type"`
	TaskID      string      `json:"taskId"`
	Status      TaskStatus  `json:"status"`
	Progress    int         `json:"progress"`
	CurrentFile string      `json:"currentFile,omitempty"`
	Result      *TaskResult `json:"result,omitempty"`
	Error       *TaskError  `json:"error,omitempty"`
	At          time.Time   `json:"at"`
}

// Terminal reports whether the event closes the task stream.
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// EventFromTask snapshots a task into an event.
func EventFromTask(t *Task) ProgressEvent {
	ev := ProgressEvent{
		Type:        EventProgress,
		TaskID:      t.ID,
		Status:      t.Status,
		Progress:    t.Progress,
		CurrentFile: t.CurrentFile,
		Result:      t.Result,
		Error:       t.Error,
		At:          t.UpdatedAt,
	}

	switch t.Status {
	case StatusCompleted:
		ev.Type = EventComplete
	case StatusError:
		ev.Type = EventError
	}
	return ev
}

// Clone returns a deep copy so stored records never alias caller memory.
func (t *Task) Clone() *Task {
	c := *t
	if t.Result != nil {
		r := *t.Result
		c.Result = &r
	}
	if t.Error != nil {
		e := *t.Error
		c.Error = &e
	}
	return &c
}
