package rental

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const insertBookingSql = `
INSERT INTO Bookings (bookingId, userId, carId, startDate, endDate, totalPrice)
VALUES ($1, $2, $3, $4, $5, $6);
`

const selectBookingByIdSql = `
SELECT bookingId, userId, carId, startDate, endDate, totalPrice
FROM Bookings WHERE bookingId = $1;
`

const selectBookingHistorySql = `
SELECT Bookings.bookingId AS bookingId,
	Users.userId AS userId,
	Cars.carId AS carId,
	Cars.carImg AS carImg,
	Cars.carBrand AS carBrand,
	Cars.carModel AS carModel,
	Cars.pricePerDay AS pricePerDay,
	Bookings.startDate AS startDate,
	Bookings.endDate AS endDate,
	Bookings.totalPrice AS totalPrice
FROM Bookings
INNER JOIN Cars ON Bookings.carId = Cars.carId
INNER JOIN Users ON Bookings.userId = Users.userId
WHERE Bookings.userId = $1
ORDER BY Bookings.startDate, Bookings.bookingId;
`

type bookingRow struct {
	BookingID  string              `db:"bookingId"`
	UserID     string              `db:"userId"`
	CarID      string              `db:"carId"`
	StartDate  sql.NullString      `db:"startDate"`
	EndDate    sql.NullString      `db:"endDate"`
	TotalPrice decimal.NullDecimal `db:"totalPrice"`
}

type bookingHistoryRow struct {
	bookingRow
	CarImage    []byte          `db:"carImg"`
	CarBrand    string          `db:"carBrand"`
	CarModel    string          `db:"carModel"`
	PricePerDay decimal.Decimal `db:"pricePerDay"`
}

func checkBooking(op string, b *Booking) error {
	if err := validateRecord(op, b); err != nil {
		return err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return fmt.Errorf("%s: %w: start and end dates are required", op, ErrInvalid)
	}
	if b.EndDate.Before(b.StartDate) {
		return fmt.Errorf("%s: %w: end date is before start date", op, ErrInvalid)
	}
	return validatePrice(op, "totalPrice", b.TotalPrice)
}

func insertBooking(ctx context.Context, db execer, b *Booking) (int64, error) {
	res, err := db.ExecContext(ctx, insertBookingSql,
		b.BookingID, b.UserID, b.CarID,
		b.StartDate.Format(DateLayout), b.EndDate.Format(DateLayout),
		b.TotalPrice)
	if err != nil {
		return failedRowID, classify(err, "add booking "+b.BookingID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return failedRowID, fmt.Errorf("add booking %s: %w", b.BookingID, err)
	}
	return id, nil
}

// AddBooking inserts a booking and returns its row id, or -1 and an error.
// The car's availability is left alone; see BookCar.
func (s *Store) AddBooking(ctx context.Context, booking *Booking) (int64, error) {
	if err := checkBooking("add booking "+booking.BookingID, booking); err != nil {
		return failedRowID, err
	}
	return insertBooking(ctx, s.db, booking)
}

// BookCar inserts the booking and marks its car as not available in a single
// transaction. Either both writes land or neither does.
func (s *Store) BookCar(ctx context.Context, booking *Booking) (int64, error) {
	if err := checkBooking("book car "+booking.CarID, booking); err != nil {
		return failedRowID, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return failedRowID, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertBooking(ctx, tx, booking)
	if err != nil {
		return failedRowID, err
	}
	if err := markUnavailable(ctx, tx, booking.CarID); err != nil {
		return failedRowID, err
	}
	if err := tx.Commit(); err != nil {
		return failedRowID, fmt.Errorf("failed to commit booking %s: %w", booking.BookingID, err)
	}

	s.log.Info().
		Str("booking_id", booking.BookingID).
		Str("user_id", booking.UserID).
		Str("car_id", booking.CarID).
		Msg("car booked")
	return id, nil
}

// GetBooking returns the booking with the given id, or nil when there is none.
// Dates that cannot be parsed are left zero and the failure is logged.
func (s *Store) GetBooking(ctx context.Context, bookingID string) (*Booking, error) {
	var row bookingRow
	err := s.db.GetContext(ctx, &row, selectBookingByIdSql, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}

	b := &Booking{
		BookingID:  row.BookingID,
		UserID:     row.UserID,
		CarID:      row.CarID,
		TotalPrice: row.TotalPrice.Decimal,
	}
	start, startErr := parseDate(row.StartDate)
	end, endErr := parseDate(row.EndDate)
	if err := errors.Join(startErr, endErr); err != nil {
		s.log.Warn().Err(err).Str("booking_id", row.BookingID).Msg("failed to parse booking dates")
		return b, nil
	}
	if start != nil {
		b.StartDate = *start
	}
	if end != nil {
		b.EndDate = *end
	}
	return b, nil
}

// GetAllBookings returns the booking history of a user. A row whose dates
// cannot be parsed is still returned, with nil dates, and the failure is
// logged; one bad row never fails the whole list.
func (s *Store) GetAllBookings(ctx context.Context, userID string) ([]BookingView, error) {
	rows, err := s.db.QueryxContext(ctx, selectBookingHistorySql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings of %s: %w", userID, err)
	}
	defer rows.Close()

	bookings := []BookingView{}
	for rows.Next() {
		var row bookingHistoryRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan booking of %s: %w", userID, err)
		}

		view := BookingView{
			BookingID:   row.BookingID,
			UserID:      row.UserID,
			CarID:       row.CarID,
			CarImage:    row.CarImage,
			CarName:     row.CarBrand + " " + row.CarModel,
			PricePerDay: row.PricePerDay,
			TotalPrice:  row.TotalPrice.Decimal,
		}
		start, startErr := parseDate(row.StartDate)
		end, endErr := parseDate(row.EndDate)
		if err := errors.Join(startErr, endErr); err != nil {
			s.log.Warn().Err(err).Str("booking_id", row.BookingID).Msg("failed to parse booking dates")
		} else {
			view.StartDate = start
			view.EndDate = end
		}
		bookings = append(bookings, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings of %s: %w", userID, err)
	}
	return bookings, nil
}

// parseDate reads a stored booking date. NULL is not an error and yields nil.
func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
