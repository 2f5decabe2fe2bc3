// Package services provides frontend-agnostic operations on top of the API
// client: the navigation backend, S3 archive/restore submission and the
// transition task log. The CLI and the interactive browser both use it.
package services

import (
	"time"

	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/models"
)

// EventTransitionSubmitted is published after a batch of transitions was
// accepted by the server.
const EventTransitionSubmitted events.EventType = "transition_submitted"

// TransitionOptions are the user's choices for one archive or restore batch.
type TransitionOptions struct {
	Action models.TransitionAction

	// StorageClass is the archive target, any spelling accepted by
	// storageclass.ParseStorageClass. Empty means GLACIER.
	StorageClass string

	// Days is optional for archive (transition delay, >= 0) and required
	// for restore (how long the restored copy lives, > 0).
	Days *int

	// Tier is the restore retrieval tier. Empty means Standard.
	Tier string

	// Password of the directory holding the targets, if any.
	Password string
}

// TransitionReport summarizes a submitted batch.
type TransitionReport struct {
	Action models.TransitionAction

	// Submitted are the resolved paths the server accepted, in order.
	Submitted []string

	// TaskIDs are the non-empty task ids returned for accepted paths.
	TaskIDs []string

	// Skipped are entries that cannot be transitioned (directories and
	// files without a storage class).
	Skipped []string

	// FailedPath is the path whose submission failed and stopped the batch.
	FailedPath string
}

// TransitionSubmittedEvent carries a TransitionReport.
type TransitionSubmittedEvent struct {
	events.BaseEvent
	Report TransitionReport
}

// TaskSummary is a task list entry prepared for display.
type TaskSummary struct {
	ID       string
	Name     string
	State    models.TaskState
	Progress float64
	Status   string
	Error    string
	Started  time.Time
	Ended    time.Time
}

// Done reports whether the task reached a final state.
func (t TaskSummary) Done() bool {
	switch t.State {
	case models.TaskSucceeded, models.TaskCanceled, models.TaskFailed, models.TaskErrored:
		return true
	default:
		return false
	}
}

// Retryable reports whether the server accepts a retry for the task.
func (t TaskSummary) Retryable() bool {
	return t.State == models.TaskFailed || t.State == models.TaskErrored || t.State == models.TaskCanceled
}
