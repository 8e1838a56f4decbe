package rental

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

var (
	// ErrConflict is returned when a write collides with a unique or primary
	// key, e.g. an email that is already registered.
	ErrConflict = errors.New("record already exists")
	// ErrMissingReference is returned when a booking points at a user or car
	// that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
	// ErrInvalid is returned when a record fails validation before it is
	// written.
	ErrInvalid = errors.New("invalid record")
	// ErrDowngrade is returned by Open when the database file was written by
	// a newer schema version.
	ErrDowngrade = errors.New("database schema is newer than this build")
)

// failedRowID is returned by inserts alongside a non-nil error.
const failedRowID int64 = -1

// classify maps SQLite constraint failures onto the package sentinels. Other
// errors are wrapped unchanged.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w: %v", op, ErrMissingReference, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("availability", func(fl validator.FieldLevel) bool {
		a := Availability(fl.Field().String())
		return a == Available || a == NotAvailable
	})
	return v
}

func validateRecord(op string, record any) error {
	if err := validate.Struct(record); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrInvalid, err)
	}
	return nil
}

func validatePrice(op, field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%s: %w: %s must not be negative", op, ErrInvalid, field)
	}
	return nil
}

// blob keeps empty images non-NULL; the image columns are NOT NULL.
func blob(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
