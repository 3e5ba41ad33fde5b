package worker

import (
	"context"
	"time"
	"vrp-solver-service/internal/domain"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// BatchSolver runs the solve pipeline of one batch.
type BatchSolver interface {
	Solve(ctx context.Context, batchName string, timeLimit time.Duration) (*domain.Solution, error)
}

// TaskProcessor consumes background tasks.
type TaskProcessor interface {
	Start() error
	Shutdown()
	ProcessTaskSolveBatch(ctx context.Context, task *asynq.Task) error
}

type RedisTaskProcessor struct {
	server *asynq.Server
	solver BatchSolver
}

func NewRedisTaskProcessor(
	redisOpt asynq.RedisClientOpt,
	concurrency int,
	solver BatchSolver,
) *RedisTaskProcessor {
	logger := NewLogger()

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger:          logger,
			ShutdownTimeout: 10 * time.Second,
		},
	)

	return &RedisTaskProcessor{
		server: server,
		solver: solver,
	}
}

// NewTestTaskProcessor returns a processor that handles tasks directly, without a Redis connection.
func NewTestTaskProcessor(solver BatchSolver) *RedisTaskProcessor {
	return &RedisTaskProcessor{solver: solver}
}

func (processor *RedisTaskProcessor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSolveBatch, processor.ProcessTaskSolveBatch)
	return mux
}

func (processor *RedisTaskProcessor) Start() error {
	return processor.server.Start(processor.Handler())
}

func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
