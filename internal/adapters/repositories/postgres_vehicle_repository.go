package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/obs"
)

// Postgres-backed implementation of the VehicleRepository port.
type PostgresVehicleRepository struct{ DB *sql.DB }

func NewPostgresVehicleRepository(db *sql.DB) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{DB: db}
}

// ListVehicles returns vehicles ordered by id. A nil filter returns the whole fleet.
func (r *PostgresVehicleRepository) ListVehicles(
	ctx context.Context,
	available *bool,
) (_ []*domain.Vehicle, err error) {
	defer obs.Time(ctx, "repo.ListVehicles")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres vehicle repository: DB is nil")
	}

	query := `
	SELECT id, registration_number, color, make, capacity, availability
	FROM vehicles
	`
	args := []any{}
	if available != nil {
		query += "WHERE availability = $1\n"
		args = append(args, *available)
	}
	query += "ORDER BY id;"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query vehicles table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0, 16)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.RegistrationNumber, &v.Color, &v.Make, &v.Capacity, &v.Available); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

func (r *PostgresVehicleRepository) GetVehicle(ctx context.Context, id int) (*domain.Vehicle, error) {
	if r.DB == nil {
		return nil, errors.New("postgres vehicle repository: DB is nil")
	}

	var v domain.Vehicle
	err := r.DB.QueryRowContext(ctx, `
	SELECT id, registration_number, color, make, capacity, availability
	FROM vehicles
	WHERE id = $1;
	`, id).Scan(&v.ID, &v.RegistrationNumber, &v.Color, &v.Make, &v.Capacity, &v.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get vehicle %d: %w", id, domain.ErrVehicleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %d: query vehicles table: %w", id, err)
	}

	return &v, nil
}
