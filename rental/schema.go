package rental

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Table names of the rental schema.
const (
	TableUsers    = "Users"
	TableCars     = "Cars"
	TableBookings = "Bookings"
)

const usersSchema = `
CREATE TABLE Users (
	userId TEXT PRIMARY KEY,
	userImg BLOB NOT NULL,
	username TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password TEXT UNIQUE NOT NULL,
	token TEXT NOT NULL,
	phoneNumber TEXT NOT NULL,
	city TEXT NOT NULL,
	country TEXT NOT NULL
)
`

const carsSchema = `
CREATE TABLE Cars (
	carId TEXT PRIMARY KEY,
	hostName TEXT NOT NULL,
	location TEXT NOT NULL,
	description TEXT NOT NULL,
	seats INT NOT NULL,
	transmission TEXT NOT NULL,
	rules TEXT NOT NULL,
	carModel TEXT NOT NULL,
	carBrand TEXT NOT NULL,
	pricePerDay DECIMAL NOT NULL,
	availability TEXT NOT NULL,
	carImg BLOB NOT NULL
)
`

const bookingsSchema = `
CREATE TABLE Bookings (
	bookingId TEXT PRIMARY KEY,
	userId TEXT NOT NULL,
	carId TEXT NOT NULL,
	startDate TEXT,
	endDate TEXT,
	totalPrice REAL,
	FOREIGN KEY (userId) REFERENCES Users(userId) ON DELETE CASCADE,
	FOREIGN KEY (carId) REFERENCES Cars(carId) ON DELETE CASCADE
)
`

// Drop order follows the foreign keys: bookings reference both other tables.
var dropOrder = []string{TableBookings, TableCars, TableUsers}

// migrate brings the schema to version. A fresh file gets the tables created;
// an older version is dropped and recreated, losing all data.
func (s *Store) migrate(ctx context.Context, version int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	if err := tx.GetContext(ctx, &current, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case current == version:
		return nil
	case current > version:
		return fmt.Errorf("%w: stored %d, wanted %d", ErrDowngrade, current, version)
	case current == 0:
		s.log.Info().Int("version", version).Msg("creating rental schema")
	default:
		s.log.Warn().Int("from", current).Int("to", version).Msg("upgrading rental schema, existing data is dropped")
		if err := dropTables(ctx, tx); err != nil {
			return err
		}
	}

	if err := createTables(ctx, tx); err != nil {
		return err
	}
	// PRAGMA does not take bound parameters; version is an int.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

func createTables(ctx context.Context, tx *sqlx.Tx) error {
	for _, stmt := range []struct {
		table string
		sql   string
	}{
		{TableUsers, usersSchema},
		{TableCars, carsSchema},
		{TableBookings, bookingsSchema},
	} {
		if _, err := tx.ExecContext(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.table, err)
		}
	}
	return nil
}

func dropTables(ctx context.Context, tx *sqlx.Tx) error {
	for _, table := range dropOrder {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", table, err)
		}
	}
	return nil
}

// StoredVersion reports the schema version recorded in the database file.
func (s *Store) StoredVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.GetContext(ctx, &version, "PRAGMA user_version")
	return version, err
}
