package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/logging"
	"github.com/fsnav/fsnav/internal/models"
)

// TaskService reads and retries the S3 transition task log.
type TaskService struct {
	apiClient *api.Client
	logger    *logging.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(apiClient *api.Client, logger *logging.Logger) *TaskService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TaskService{
		apiClient: apiClient,
		logger:    logger.Named("task-service"),
	}
}

// List returns transition tasks, newest first. done selects finished
// tasks instead of pending and running ones.
func (ts *TaskService) List(ctx context.Context, done bool) ([]TaskSummary, error) {
	if ts.apiClient == nil {
		return nil, fmt.Errorf("API client not configured")
	}

	tasks, err := ts.apiClient.ListTasks(ctx, models.TaskTypeS3Transition, done)
	if err != nil {
		return nil, fmt.Errorf("failed to list transition tasks: %w", err)
	}

	summaries := lo.Map(tasks, func(t models.TaskInfo, _ int) TaskSummary {
		return TaskSummary{
			ID:       t.ID,
			Name:     t.Name,
			State:    t.State,
			Progress: t.Progress,
			Status:   t.Status,
			Error:    t.Error,
			Started:  derefTime(t.StartTime),
			Ended:    derefTime(t.EndTime),
		}
	})
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Started.After(summaries[j].Started)
	})

	ts.logger.Debug().Bool("done", done).Int("count", len(summaries)).Msg("Listed transition tasks")
	return summaries, nil
}

// Retry re-queues a failed transition task.
func (ts *TaskService) Retry(ctx context.Context, id string) error {
	if ts.apiClient == nil {
		return fmt.Errorf("API client not configured")
	}
	if id == "" {
		return fmt.Errorf("task id is required")
	}
	if err := ts.apiClient.RetryTask(ctx, models.TaskTypeS3Transition, id); err != nil {
		return fmt.Errorf("failed to retry task %s: %w", id, err)
	}
	ts.logger.Info().Str("task", id).Msg("Transition task re-queued")
	return nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
