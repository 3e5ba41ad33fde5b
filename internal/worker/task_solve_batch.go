package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/obs"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	TaskSolveBatch = "batch:solve"

	// solveOverhead bounds the work around the search: reads, matrix requests and the final write.
	solveOverhead = 2 * time.Minute
)

// PayloadSolveBatch is the payload of a batch solve task.
type PayloadSolveBatch struct {
	BatchName        string `json:"batch_name"`
	TimeLimitSeconds int    `json:"time_limit"`
	RequestID        string `json:"request_id,omitempty"`
}

func (p *PayloadSolveBatch) validate() error {
	if strings.TrimSpace(p.BatchName) == "" {
		return errors.New("batch name is empty")
	}
	if p.TimeLimitSeconds <= 0 {
		return fmt.Errorf("time limit must be positive, got %d", p.TimeLimitSeconds)
	}
	return nil
}

func (p *PayloadSolveBatch) timeLimit() time.Duration {
	return time.Duration(p.TimeLimitSeconds) * time.Second
}

// solveTaskID keys the task by batch so at most one solve per batch is queued or running.
func solveTaskID(batchName string) string {
	return "solve:" + batchName
}

func (d *RedisTaskDistributor) DistributeTaskSolveBatch(
	ctx context.Context,
	payload *PayloadSolveBatch,
	opts ...asynq.Option,
) error {
	if err := payload.validate(); err != nil {
		return fmt.Errorf("distribute solve task: %w", err)
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	id := solveTaskID(payload.BatchName)
	base := []asynq.Option{
		asynq.TaskID(id),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(0),
		asynq.Timeout(payload.timeLimit() + solveOverhead),
	}
	task := asynq.NewTask(TaskSolveBatch, jsonPayload, append(base, opts...)...)

	info, err := d.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		info, err = d.replaceFinished(ctx, task, id)
	}
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	log.Info().
		Str("req_id", payload.RequestID).
		Str("type", task.Type()).
		Str("queue", info.Queue).
		Str("task_id", info.ID).
		Str("batch", payload.BatchName).
		Int("time_limit", payload.TimeLimitSeconds).
		Msg("enqueued batch solve task")

	return nil
}

// replaceFinished re-enqueues task when the conflicting task with the same id has
// already finished (archived or retained as completed). A pending, scheduled or
// active task means a solve is in flight.
func (d *RedisTaskDistributor) replaceFinished(
	ctx context.Context,
	task *asynq.Task,
	id string,
) (*asynq.TaskInfo, error) {
	existing, err := d.inspector.GetTaskInfo(QueueDefault, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) {
			return d.client.EnqueueContext(ctx, task)
		}
		return nil, fmt.Errorf("inspect task %s: %w", id, err)
	}

	switch existing.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
		if err := d.inspector.DeleteTask(QueueDefault, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return nil, fmt.Errorf("delete finished task %s: %w", id, err)
		}
		return d.client.EnqueueContext(ctx, task)
	default:
		return nil, domain.ErrSolveInFlight
	}
}

// ProcessTaskSolveBatch runs the pipeline for one batch. Every classified pipeline
// failure is final: it is logged and the task is archived without retry.
func (processor *RedisTaskProcessor) ProcessTaskSolveBatch(ctx context.Context, task *asynq.Task) error {
	var payload PayloadSolveBatch
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", asynq.SkipRetry)
	}
	if err := payload.validate(); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.RequestID != "" {
		ctx = obs.WithRequestID(ctx, payload.RequestID)
	}

	log.Info().
		Str("req_id", payload.RequestID).
		Str("type", task.Type()).
		Str("batch", payload.BatchName).
		Int("time_limit", payload.TimeLimitSeconds).
		Msg("processing batch solve task")

	sol, err := processor.solver.Solve(ctx, payload.BatchName, payload.timeLimit())
	if err != nil {
		if domain.IsTerminal(err) {
			log.Warn().
				Err(err).
				Str("req_id", payload.RequestID).
				Str("batch", payload.BatchName).
				Msg("batch solve ended without a solution")
			return fmt.Errorf("solve batch: %w: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("solve batch: %w", err)
	}

	log.Info().
		Str("req_id", payload.RequestID).
		Str("batch", payload.BatchName).
		Int("total_distance", sol.TotalDistance).
		Float64("total_load", sol.TotalLoad).
		Msg("processed batch solve task")

	return nil
}
