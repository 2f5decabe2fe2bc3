package models

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// TransitionAction selects between moving an object into a colder storage
// class and temporarily restoring an archived one.
type TransitionAction string

const (
	TransitionArchive TransitionAction = "archive"
	TransitionRestore TransitionAction = "restore"
)

// TaskTypeS3Transition is the admin task group that tracks transitions.
const TaskTypeS3Transition = "s3_transition"

// TransitionRequest is the body of an S3 transition call.
type TransitionRequest struct {
	Path     string            `json:"path"`
	Payload  TransitionPayload `json:"payload"`
	Password string            `json:"password,omitempty"`
}

// TransitionPayload carries the action parameters. StorageClass is only set
// for archive; Tier only for restore. Days is optional for archive.
type TransitionPayload struct {
	Action       TransitionAction   `json:"action"`
	StorageClass types.StorageClass `json:"storage_class,omitempty"`
	Days         *int32             `json:"days,omitempty"`
	Tier         types.Tier         `json:"tier,omitempty"`
}

// TransitionResult is returned for each accepted transition.
type TransitionResult struct {
	TaskID string `json:"task_id"`
}

// TaskState mirrors the server's task state machine.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskRunning
	TaskSucceeded
	TaskCanceling
	TaskCanceled
	TaskErrored
	TaskFailing
	TaskFailed
	TaskWaitingRetry
	TaskBeforeRetry
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskSucceeded:
		return "succeeded"
	case TaskCanceling:
		return "canceling"
	case TaskCanceled:
		return "canceled"
	case TaskErrored:
		return "errored"
	case TaskFailing:
		return "failing"
	case TaskFailed:
		return "failed"
	case TaskWaitingRetry:
		return "waiting_retry"
	case TaskBeforeRetry:
		return "before_retry"
	default:
		return "unknown"
	}
}

// TaskInfo is one entry of the admin task list.
type TaskInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Creator     string     `json:"creator"`
	CreatorRole int        `json:"creator_role"`
	State       TaskState  `json:"state"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	TotalBytes  int64      `json:"total_bytes"`
	Error       string     `json:"error"`
}
