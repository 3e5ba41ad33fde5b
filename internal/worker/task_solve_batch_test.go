package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/obs"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeSolver struct {
	err       error
	batch     string
	timeLimit time.Duration
	reqID     string
	calls     int
}

func (s *fakeSolver) Solve(ctx context.Context, batchName string, timeLimit time.Duration) (*domain.Solution, error) {
	s.calls++
	s.batch = batchName
	s.timeLimit = timeLimit
	s.reqID = obs.RequestID(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Solution{BatchName: batchName, TotalDistance: 10, TotalLoad: 7}, nil
}

func solveTask(t *testing.T, payload any) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TaskSolveBatch, b)
}

func TestProcessTaskSolveBatch(t *testing.T) {
	testCases := []struct {
		name        string
		payload     any
		solverErr   error
		checkResult func(t *testing.T, s *fakeSolver, err error)
	}{
		{
			name:    "success",
			payload: PayloadSolveBatch{BatchName: "B1", TimeLimitSeconds: 30, RequestID: "req-1"},
			checkResult: func(t *testing.T, s *fakeSolver, err error) {
				require.NoError(t, err)
				require.Equal(t, 1, s.calls)
				require.Equal(t, "B1", s.batch)
				require.Equal(t, 30*time.Second, s.timeLimit)
				require.Equal(t, "req-1", s.reqID)
			},
		},
		{
			name:      "capacity insufficient is not retried",
			payload:   PayloadSolveBatch{BatchName: "B2", TimeLimitSeconds: 5},
			solverErr: domain.ErrCapacityInsufficient,
			checkResult: func(t *testing.T, s *fakeSolver, err error) {
				require.ErrorIs(t, err, asynq.SkipRetry)
				require.ErrorIs(t, err, domain.ErrCapacityInsufficient)
			},
		},
		{
			name:      "upstream failure is not retried",
			payload:   PayloadSolveBatch{BatchName: "B3", TimeLimitSeconds: 5},
			solverErr: &domain.UpstreamError{Chunk: 2, Err: errors.New("bad gateway")},
			checkResult: func(t *testing.T, s *fakeSolver, err error) {
				require.ErrorIs(t, err, asynq.SkipRetry)
				require.ErrorIs(t, err, domain.ErrUpstream)
			},
		},
		{
			name:      "infeasible is not retried",
			payload:   PayloadSolveBatch{BatchName: "B4", TimeLimitSeconds: 5},
			solverErr: domain.ErrInfeasible,
			checkResult: func(t *testing.T, s *fakeSolver, err error) {
				require.ErrorIs(t, err, asynq.SkipRetry)
			},
		},
		{
			name:      "unclassified failure is returned as is",
			payload:   PayloadSolveBatch{BatchName: "B5", TimeLimitSeconds: 5},
			solverErr: errors.New("connection refused"),
			checkResult: func(t *testing.T, s *fakeSolver, err error) {
				require.Error(t, err)
				require.NotErrorIs(t, err, asynq.SkipRetry)
			},
		},
		{
			name:    "empty batch name",
			payload: PayloadSolveBatch{TimeLimitSeconds: 5},
			checkResult: func(t *testing.T, s *fakeSolver, err error) {
				require.ErrorIs(t, err, asynq.SkipRetry)
				require.Zero(t, s.calls)
			},
		},
		{
			name:    "non positive time limit",
			payload: PayloadSolveBatch{BatchName: "B1"},
			checkResult: func(t *testing.T, s *fakeSolver, err error) {
				require.ErrorIs(t, err, asynq.SkipRetry)
				require.Zero(t, s.calls)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSolver{err: tc.solverErr}
			processor := NewTestTaskProcessor(s)

			err := processor.ProcessTaskSolveBatch(context.Background(), solveTask(t, tc.payload))
			tc.checkResult(t, s, err)
		})
	}
}

func TestProcessTaskSolveBatchBadPayload(t *testing.T) {
	s := &fakeSolver{}
	processor := NewTestTaskProcessor(s)

	err := processor.ProcessTaskSolveBatch(context.Background(), asynq.NewTask(TaskSolveBatch, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, s.calls)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	errs  []error
}

func (e *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	if len(e.errs) > 0 {
		err := e.errs[0]
		e.errs = e.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &asynq.TaskInfo{ID: "solve:B1", Queue: QueueDefault, Type: task.Type()}, nil
}

func (e *fakeEnqueuer) Close() error { return nil }

type fakeInspector struct {
	state   asynq.TaskState
	err     error
	deleted []string
}

func (i *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	if i.err != nil {
		return nil, i.err
	}
	return &asynq.TaskInfo{ID: id, Queue: queue, State: i.state}, nil
}

func (i *fakeInspector) DeleteTask(_, id string) error {
	i.deleted = append(i.deleted, id)
	return nil
}

func (i *fakeInspector) Close() error { return nil }

func TestDistributeTaskSolveBatch(t *testing.T) {
	enq := &fakeEnqueuer{}
	d := &RedisTaskDistributor{client: enq, inspector: &fakeInspector{}}

	err := d.DistributeTaskSolveBatch(context.Background(), &PayloadSolveBatch{BatchName: "B1", TimeLimitSeconds: 10})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	require.Equal(t, TaskSolveBatch, enq.tasks[0].Type())

	var got PayloadSolveBatch
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &got))
	require.Equal(t, "B1", got.BatchName)
	require.Equal(t, 10, got.TimeLimitSeconds)
}

func TestDistributeTaskSolveBatchInFlight(t *testing.T) {
	for _, state := range []asynq.TaskState{asynq.TaskStatePending, asynq.TaskStateActive, asynq.TaskStateScheduled} {
		enq := &fakeEnqueuer{errs: []error{asynq.ErrTaskIDConflict}}
		insp := &fakeInspector{state: state}
		d := &RedisTaskDistributor{client: enq, inspector: insp}

		err := d.DistributeTaskSolveBatch(context.Background(), &PayloadSolveBatch{BatchName: "B1", TimeLimitSeconds: 10})
		require.ErrorIs(t, err, domain.ErrSolveInFlight, "state %v", state)
		require.Empty(t, insp.deleted)
		require.Len(t, enq.tasks, 1)
	}
}

func TestDistributeTaskSolveBatchReplacesFinished(t *testing.T) {
	for _, state := range []asynq.TaskState{asynq.TaskStateArchived, asynq.TaskStateCompleted} {
		enq := &fakeEnqueuer{errs: []error{asynq.ErrTaskIDConflict, nil}}
		insp := &fakeInspector{state: state}
		d := &RedisTaskDistributor{client: enq, inspector: insp}

		err := d.DistributeTaskSolveBatch(context.Background(), &PayloadSolveBatch{BatchName: "B1", TimeLimitSeconds: 10})
		require.NoError(t, err, "state %v", state)
		require.Equal(t, []string{"solve:B1"}, insp.deleted)
		require.Len(t, enq.tasks, 2)
	}
}

func TestDistributeTaskSolveBatchRejectsInvalidPayload(t *testing.T) {
	enq := &fakeEnqueuer{}
	d := &RedisTaskDistributor{client: enq, inspector: &fakeInspector{}}

	require.Error(t, d.DistributeTaskSolveBatch(context.Background(), &PayloadSolveBatch{TimeLimitSeconds: 10}))
	require.Error(t, d.DistributeTaskSolveBatch(context.Background(), &PayloadSolveBatch{BatchName: "B1"}))
	require.Empty(t, enq.tasks)
}

func TestDistributeTaskSolveBatchEnqueueError(t *testing.T) {
	enq := &fakeEnqueuer{errs: []error{errors.New("redis down")}}
	d := &RedisTaskDistributor{client: enq, inspector: &fakeInspector{}}

	err := d.DistributeTaskSolveBatch(context.Background(), &PayloadSolveBatch{BatchName: "B1", TimeLimitSeconds: 10})
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrSolveInFlight)
}

func TestHandlerRoutesSolveTask(t *testing.T) {
	s := &fakeSolver{}
	processor := NewTestTaskProcessor(s)

	task := solveTask(t, PayloadSolveBatch{BatchName: "B1", TimeLimitSeconds: 1})
	require.NoError(t, processor.Handler().ProcessTask(context.Background(), task))
	require.Equal(t, 1, s.calls)
}
