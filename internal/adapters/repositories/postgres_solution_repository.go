package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/obs"
)

// Postgres-backed implementation of the SolutionRepository port.
// Route descriptions are stored as a JSON array of strings.
type PostgresSolutionRepository struct{ DB *sql.DB }

func NewPostgresSolutionRepository(db *sql.DB) *PostgresSolutionRepository {
	return &PostgresSolutionRepository{DB: db}
}

// UpsertSolution creates or replaces the solution of s.BatchID and sets s.ID.
func (r *PostgresSolutionRepository) UpsertSolution(ctx context.Context, s *domain.Solution) (err error) {
	defer obs.Time(ctx, "repo.UpsertSolution")(&err)

	if r.DB == nil {
		return errors.New("postgres solution repository: DB is nil")
	}
	if s == nil {
		return errors.New("upsert solution: solution is nil")
	}

	routes := s.Routes
	if routes == nil {
		routes = []string{}
	}
	encoded, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("upsert solution: encode routes: %w", err)
	}

	var status sql.NullInt64
	if s.SolverStatus != nil {
		status = sql.NullInt64{Int64: int64(*s.SolverStatus), Valid: true}
	}

	err = r.DB.QueryRowContext(ctx, `
	INSERT INTO solutions (routes, total_distance, total_load, solver_status, batch_id)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (batch_id) DO UPDATE
	SET routes = EXCLUDED.routes,
		total_distance = EXCLUDED.total_distance,
		total_load = EXCLUDED.total_load,
		solver_status = EXCLUDED.solver_status,
		updated_at = now()
	RETURNING id;
	`, string(encoded), s.TotalDistance, s.TotalLoad, status, s.BatchID).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("upsert solution for batch %d: %w", s.BatchID, err)
	}

	return nil
}

func (r *PostgresSolutionRepository) GetSolutionByBatch(
	ctx context.Context,
	batchName string,
) (_ *domain.Solution, err error) {
	defer obs.Time(ctx, "repo.GetSolutionByBatch")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres solution repository: DB is nil")
	}

	var s domain.Solution
	var routes string
	var status sql.NullInt64
	err = r.DB.QueryRowContext(ctx, `
	SELECT s.id, s.routes, s.total_distance, s.total_load, s.solver_status, b.id, b.batch_name
	FROM solutions s
	JOIN batches b ON b.id = s.batch_id
	WHERE b.batch_name = $1;
	`, batchName).Scan(&s.ID, &routes, &s.TotalDistance, &s.TotalLoad, &status, &s.BatchID, &s.BatchName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get solution of %q: %w", batchName, domain.ErrSolutionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get solution of %q: query solutions table: %w", batchName, err)
	}

	if err := json.Unmarshal([]byte(routes), &s.Routes); err != nil {
		return nil, fmt.Errorf("get solution of %q: decode routes: %w", batchName, err)
	}
	if status.Valid {
		st := domain.SolverStatus(status.Int64)
		s.SolverStatus = &st
	}

	return &s, nil
}
