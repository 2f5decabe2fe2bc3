package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsnav/fsnav/internal/models"
)

func TestTaskService_ListNewestFirst(t *testing.T) {
	srv := newFakeServer()
	srv.tasks["undone"] = []map[string]interface{}{
		{"id": "1", "name": "archive /a", "state": int(models.TaskRunning), "progress": 40, "start_time": "2026-01-02T10:00:00Z"},
		{"id": "2", "name": "archive /b", "state": int(models.TaskPending), "start_time": "2026-01-02T11:00:00Z"},
	}
	srv.tasks["done"] = []map[string]interface{}{
		{"id": "3", "name": "restore /c", "state": int(models.TaskFailed), "error": "denied"},
	}
	ts := NewTaskService(newTestAPIClient(t, srv), nil)

	undone, err := ts.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, undone, 2)
	assert.Equal(t, "2", undone[0].ID)
	assert.Equal(t, 40.0, undone[1].Progress)
	assert.False(t, undone[0].Done())

	done, err := ts.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.True(t, done[0].Done())
	assert.True(t, done[0].Retryable())
	assert.Equal(t, "denied", done[0].Error)
	assert.True(t, done[0].Ended.IsZero())
}

func TestTaskService_Retry(t *testing.T) {
	srv := newFakeServer()
	ts := NewTaskService(newTestAPIClient(t, srv), nil)

	require.NoError(t, ts.Retry(context.Background(), "abc"))
	assert.Equal(t, []string{"abc"}, srv.retried)

	assert.Error(t, ts.Retry(context.Background(), ""))
	assert.Error(t, NewTaskService(nil, nil).Retry(context.Background(), "x"))
}

func TestTaskSummary_States(t *testing.T) {
	assert.True(t, TaskSummary{State: models.TaskSucceeded}.Done())
	assert.False(t, TaskSummary{State: models.TaskSucceeded}.Retryable())
	assert.False(t, TaskSummary{State: models.TaskWaitingRetry}.Done())
}
