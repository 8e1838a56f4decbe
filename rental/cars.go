package rental

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

var dialect = goqu.Dialect("sqlite3")

var carColumns = []any{
	"carId", "hostName", "location", "description", "seats", "transmission",
	"rules", "carModel", "carBrand", "pricePerDay", "availability", "carImg",
}

const insertCarSql = `
INSERT INTO Cars (carId, hostName, location, description, seats, transmission, rules, carModel, carBrand, pricePerDay, availability, carImg)
VALUES (:carId, :hostName, :location, :description, :seats, :transmission, :rules, :carModel, :carBrand, :pricePerDay, :availability, :carImg);
`

const updateCarSql = `
UPDATE Cars
SET carImg = $1, carBrand = $2, carModel = $3, hostName = $4, seats = $5, transmission = $6,
	location = $7, pricePerDay = $8, description = $9, rules = $10
WHERE carId = $11;
`

const selectCarByIdSql = `
SELECT carId, hostName, location, description, seats, transmission, rules, carModel, carBrand, pricePerDay, availability, carImg
FROM Cars WHERE carId = $1;
`

const deleteCarSql = `DELETE FROM Cars WHERE carId = $1;`

const updateCarStatusSql = `UPDATE Cars SET availability = $1 WHERE carId = $2;`

const countCarsSql = `SELECT COUNT(*) FROM Cars;`

func checkCar(op string, car *Car) error {
	if err := validateRecord(op, car); err != nil {
		return err
	}
	return validatePrice(op, "pricePerDay", car.PricePerDay)
}

// AddCar inserts a fully populated car and returns its row id, or -1 and an
// error. Rules are serialized by the store.
func (s *Store) AddCar(ctx context.Context, car *Car) (int64, error) {
	op := "add car " + car.CarID
	if err := checkCar(op, car); err != nil {
		return failedRowID, err
	}

	row := *car
	row.Image = blob(car.Image)
	res, err := s.db.NamedExecContext(ctx, insertCarSql, &row)
	if err != nil {
		return failedRowID, classify(err, op)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return failedRowID, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// EditCar replaces the editable fields of a car and returns the number of rows
// changed; 0 means there is no such car.
func (s *Store) EditCar(ctx context.Context, carID string, edit CarEdit) (int64, error) {
	op := "edit car " + carID
	if err := validateRecord(op, &edit); err != nil {
		return 0, err
	}
	if err := validatePrice(op, "pricePerDay", edit.PricePerDay); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, updateCarSql,
		blob(edit.Image), edit.Brand, edit.Model, edit.HostName, edit.Seats, edit.Transmission,
		edit.Location, edit.PricePerDay, edit.Description, edit.Rules, carID)
	if err != nil {
		return 0, classify(err, op)
	}
	return res.RowsAffected()
}

// DeleteCar removes a car together with its bookings. Deleting a car that
// does not exist is not an error.
func (s *Store) DeleteCar(ctx context.Context, carID string) error {
	res, err := s.db.ExecContext(ctx, deleteCarSql, carID)
	if err != nil {
		return fmt.Errorf("delete car %s: %w", carID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Info().Str("car_id", carID).Msg("car deleted")
	}
	return nil
}

// UpdateCarStatus marks a car as not available, whatever its current state.
func (s *Store) UpdateCarStatus(ctx context.Context, carID string) error {
	if err := markUnavailable(ctx, s.db, carID); err != nil {
		return err
	}
	s.log.Info().Str("car_id", carID).Msg("car status updated")
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func markUnavailable(ctx context.Context, db execer, carID string) error {
	_, err := db.ExecContext(ctx, updateCarStatusSql, NotAvailable, carID)
	if err != nil {
		return fmt.Errorf("update status of car %s: %w", carID, err)
	}
	return nil
}

// GetCarByCarID returns the car with the given id, or nil when there is none.
func (s *Store) GetCarByCarID(ctx context.Context, carID string) (*Car, error) {
	var car Car
	err := s.db.GetContext(ctx, &car, selectCarByIdSql, carID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car %s: %w", carID, err)
	}
	return &car, nil
}

// GetCarsByRole lists the cars visible to role: administrators see every car,
// everyone else only the available ones.
func (s *Store) GetCarsByRole(ctx context.Context, role Role) ([]Car, error) {
	query, args, err := carsByRoleQuery(role)
	if err != nil {
		return nil, fmt.Errorf("failed to build cars query: %w", err)
	}
	cars := []Car{}
	if err := s.db.SelectContext(ctx, &cars, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cars for %s: %w", role, err)
	}
	return cars, nil
}

func carsByRoleQuery(role Role) (string, []any, error) {
	ds := dialect.From(TableCars).Select(carColumns...).Prepared(true)
	if role != RoleAdmin {
		ds = ds.Where(goqu.C("availability").Eq(string(Available)))
	}
	return ds.ToSQL()
}

// SeedCars inserts the JSON array of cars read from r, in one transaction,
// when the Cars table is still empty. It returns how many cars were added.
func (s *Store) SeedCars(ctx context.Context, r io.Reader) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, countCarsSql); err != nil {
		return 0, fmt.Errorf("failed to count cars: %w", err)
	}
	if count > 0 {
		s.log.Info().Int("cars", count).Msg("cars already present, skipping seed")
		return 0, nil
	}

	var cars []Car
	if err := json.NewDecoder(r).Decode(&cars); err != nil {
		return 0, fmt.Errorf("failed to decode car data: %w", err)
	}
	for i := range cars {
		if cars[i].Availability == "" {
			cars[i].Availability = Available
		}
		if err := checkCar("seed car "+cars[i].CarID, &cars[i]); err != nil {
			return 0, err
		}
		cars[i].Image = blob(cars[i].Image)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range cars {
		if _, err := tx.NamedExecContext(ctx, insertCarSql, &cars[i]); err != nil {
			return 0, classify(err, "seed car "+cars[i].CarID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	s.log.Info().Int("cars", len(cars)).Msg("seeded cars")
	return len(cars), nil
}
