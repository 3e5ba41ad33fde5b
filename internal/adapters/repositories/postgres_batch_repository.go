package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/obs"
)

// Postgres-backed implementation of the BatchRepository port.
type PostgresBatchRepository struct{ DB *sql.DB }

func NewPostgresBatchRepository(db *sql.DB) *PostgresBatchRepository {
	return &PostgresBatchRepository{DB: db}
}

func (r *PostgresBatchRepository) GetBatchByName(ctx context.Context, name string) (_ *domain.Batch, err error) {
	defer obs.Time(ctx, "repo.GetBatchByName")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres batch repository: DB is nil")
	}

	var b domain.Batch
	err = r.DB.QueryRowContext(ctx, `
	SELECT id, batch_name
	FROM batches
	WHERE batch_name = $1;
	`, name).Scan(&b.ID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get batch %q: %w", name, domain.ErrBatchNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %q: query batches table: %w", name, err)
	}

	return &b, nil
}

func (r *PostgresBatchRepository) ListBatches(ctx context.Context) ([]*domain.Batch, error) {
	if r.DB == nil {
		return nil, errors.New("postgres batch repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, batch_name
	FROM batches
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list batches: query batches table: %w", err)
	}
	defer rows.Close()

	batches := make([]*domain.Batch, 0, 16)
	for rows.Next() {
		var b domain.Batch
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("list batches: scan row: %w", err)
		}
		batches = append(batches, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: row iteration: %w", err)
	}

	return batches, nil
}

const customerSelect = `
	SELECT
		c.id,
		c.customer_demand,
		c.batch_id,
		b.batch_name,
		a.id,
		a.address_type,
		a.line1,
		a.line2,
		a.city,
		a.county,
		a.zip_postcode
	FROM customers c
	JOIN addresses a ON a.id = c.address_id
	JOIN batches b ON b.id = c.batch_id
`

// ListCustomersByBatch returns the batch customers ordered by id.
// An unknown batch yields domain.ErrBatchNotFound; a known batch may yield an empty slice.
func (r *PostgresBatchRepository) ListCustomersByBatch(
	ctx context.Context,
	batchName string,
) (_ []*domain.Customer, err error) {
	defer obs.Time(ctx, "repo.ListCustomersByBatch")(&err)

	if _, err := r.GetBatchByName(ctx, batchName); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, customerSelect+`
	WHERE b.batch_name = $1
	ORDER BY c.id;
	`, batchName)
	if err != nil {
		return nil, fmt.Errorf("list customers of %q: query customers table: %w", batchName, err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

func (r *PostgresBatchRepository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	if r.DB == nil {
		return nil, errors.New("postgres batch repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, customerSelect+`
	ORDER BY c.id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: query customers table: %w", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

func scanCustomers(rows *sql.Rows) ([]*domain.Customer, error) {
	customers := make([]*domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		var addressType string
		err := rows.Scan(
			&c.ID, &c.Demand, &c.BatchID, &c.BatchName,
			&c.Address.ID, &addressType, &c.Address.Line1, &c.Address.Line2,
			&c.Address.City, &c.Address.County, &c.Address.ZipPostcode,
		)
		if err != nil {
			return nil, fmt.Errorf("list customers: scan row: %w", err)
		}
		c.Address.Type = domain.AddressType(addressType)
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: row iteration: %w", err)
	}

	return customers, nil
}

func (r *PostgresBatchRepository) ListAddresses(ctx context.Context) ([]*domain.Address, error) {
	if r.DB == nil {
		return nil, errors.New("postgres batch repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, address_type, line1, line2, city, county, zip_postcode
	FROM addresses
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list addresses: query addresses table: %w", err)
	}
	defer rows.Close()

	addresses := make([]*domain.Address, 0, 64)
	for rows.Next() {
		var a domain.Address
		var addressType string
		if err := rows.Scan(&a.ID, &addressType, &a.Line1, &a.Line2, &a.City, &a.County, &a.ZipPostcode); err != nil {
			return nil, fmt.Errorf("list addresses: scan row: %w", err)
		}
		a.Type = domain.AddressType(addressType)
		addresses = append(addresses, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list addresses: row iteration: %w", err)
	}

	return addresses, nil
}
