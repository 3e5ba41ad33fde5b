package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// TaskDistributor enqueues background tasks.
type TaskDistributor interface {
	// DistributeTaskSolveBatch enqueues one solve of a batch. It fails with
	// domain.ErrSolveInFlight while a solve of the same batch is queued or running.
	DistributeTaskSolveBatch(
		ctx context.Context,
		payload *PayloadSolveBatch,
		opts ...asynq.Option,
	) error
}

// enqueuer and inspector are the parts of the asynq client and inspector the distributor uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

type RedisTaskDistributor struct {
	client    enqueuer
	inspector inspector
}

func NewRedisTaskDistributor(redisOpt asynq.RedisClientOpt) *RedisTaskDistributor {
	return &RedisTaskDistributor{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
	}
}

func (d *RedisTaskDistributor) Close() error {
	ierr := d.inspector.Close()
	if err := d.client.Close(); err != nil {
		return err
	}
	return ierr
}
