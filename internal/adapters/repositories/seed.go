package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"vrp-solver-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML seed document loaded by dbtool.
type Fixtures struct {
	Vehicles []VehicleSeed `yaml:"vehicles"`
	Batches  []BatchSeed   `yaml:"batches"`
}

type VehicleSeed struct {
	RegistrationNumber string  `yaml:"registration_number"`
	Color              string  `yaml:"color"`
	Make               string  `yaml:"make"`
	Capacity           float64 `yaml:"capacity"`
	Available          *bool   `yaml:"available"`
}

type BatchSeed struct {
	Name      string         `yaml:"name"`
	Customers []CustomerSeed `yaml:"customers"`
}

type CustomerSeed struct {
	Demand  float64     `yaml:"demand"`
	Address AddressSeed `yaml:"address"`
}

type AddressSeed struct {
	Type        string `yaml:"type"`
	Line1       string `yaml:"line1"`
	Line2       string `yaml:"line2"`
	City        string `yaml:"city"`
	County      string `yaml:"county"`
	ZipPostcode string `yaml:"zip_postcode"`
}

// ParseFixtures decodes and validates a YAML seed document.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	seenRegs := map[string]struct{}{}
	for i, v := range f.Vehicles {
		reg := strings.TrimSpace(v.RegistrationNumber)
		if reg == "" {
			return nil, fmt.Errorf("parse fixtures: vehicle #%d: registration_number cannot be empty", i+1)
		}
		if _, ok := seenRegs[reg]; ok {
			return nil, fmt.Errorf("parse fixtures: vehicle #%d: duplicate registration_number %q", i+1, reg)
		}
		seenRegs[reg] = struct{}{}
		if v.Capacity < 0 {
			return nil, fmt.Errorf("parse fixtures: vehicle %q: negative capacity", reg)
		}
		f.Vehicles[i].RegistrationNumber = reg
	}

	seenBatches := map[string]struct{}{}
	for i, b := range f.Batches {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return nil, fmt.Errorf("parse fixtures: batch #%d: name cannot be empty", i+1)
		}
		if _, ok := seenBatches[name]; ok {
			return nil, fmt.Errorf("parse fixtures: batch #%d: duplicate name %q", i+1, name)
		}
		seenBatches[name] = struct{}{}
		f.Batches[i].Name = name

		for j, c := range b.Customers {
			if c.Demand < 0 {
				return nil, fmt.Errorf("parse fixtures: batch %q customer #%d: negative demand", name, j+1)
			}
			if strings.TrimSpace(c.Address.ZipPostcode) == "" {
				return nil, fmt.Errorf("parse fixtures: batch %q customer #%d: zip_postcode cannot be empty", name, j+1)
			}
			switch domain.AddressType(strings.ToUpper(c.Address.Type)) {
			case "":
				f.Batches[i].Customers[j].Address.Type = string(domain.AddressHome)
			case domain.AddressHome, domain.AddressBusiness, domain.AddressOther:
				f.Batches[i].Customers[j].Address.Type = strings.ToUpper(c.Address.Type)
			default:
				return nil, fmt.Errorf(
					"parse fixtures: batch %q customer #%d: unknown address type %q",
					name, j+1, c.Address.Type,
				)
			}
		}
	}

	return &f, nil
}

// Populate the database from a YAML fixtures file.
// Vehicles are upserted by registration number; each seeded batch has its customers replaced.
func SeedFromYAML(ctx context.Context, db *sql.DB, path string) error {
	if db == nil {
		return errors.New("seed fixtures: DB is nil")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed fixtures: read %q: %w", path, err)
	}

	f, err := ParseFixtures(data)
	if err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}

	return Seed(ctx, db, f)
}

// Seed writes already parsed fixtures in a single transaction.
func Seed(ctx context.Context, db *sql.DB, f *Fixtures) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed fixtures: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, v := range f.Vehicles {
		available := true
		if v.Available != nil {
			available = *v.Available
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO vehicles (registration_number, color, make, capacity, availability)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (registration_number) DO UPDATE
		SET color = EXCLUDED.color,
			make = EXCLUDED.make,
			capacity = EXCLUDED.capacity,
			availability = EXCLUDED.availability;
		`, v.RegistrationNumber, v.Color, v.Make, v.Capacity, available)
		if err != nil {
			return fmt.Errorf("seed fixtures: upsert vehicle %q: %w", v.RegistrationNumber, err)
		}
	}

	for _, b := range f.Batches {
		var batchID int
		err := tx.QueryRowContext(ctx, `
		INSERT INTO batches (batch_name) VALUES ($1)
		ON CONFLICT (batch_name) DO UPDATE SET batch_name = EXCLUDED.batch_name
		RETURNING id;
		`, b.Name).Scan(&batchID)
		if err != nil {
			return fmt.Errorf("seed fixtures: upsert batch %q: %w", b.Name, err)
		}

		// Dropping the addresses cascades to their customers.
		_, err = tx.ExecContext(ctx, `
		DELETE FROM addresses
		WHERE id IN (SELECT address_id FROM customers WHERE batch_id = $1);
		`, batchID)
		if err != nil {
			return fmt.Errorf("seed fixtures: clear batch %q: %w", b.Name, err)
		}

		for j, c := range b.Customers {
			var addressID int
			err := tx.QueryRowContext(ctx, `
			INSERT INTO addresses (address_type, line1, line2, city, county, zip_postcode)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;
			`, c.Address.Type, c.Address.Line1, c.Address.Line2, c.Address.City, c.Address.County,
				strings.TrimSpace(c.Address.ZipPostcode)).Scan(&addressID)
			if err != nil {
				return fmt.Errorf("seed fixtures: batch %q customer #%d: insert address: %w", b.Name, j+1, err)
			}

			_, err = tx.ExecContext(ctx, `
			INSERT INTO customers (address_id, customer_demand, batch_id)
			VALUES ($1, $2, $3);
			`, addressID, c.Demand, batchID)
			if err != nil {
				return fmt.Errorf("seed fixtures: batch %q customer #%d: insert customer: %w", b.Name, j+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fixtures: commit tx: %w", err)
	}

	return nil
}
