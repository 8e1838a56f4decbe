package rental

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a store on a fresh database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{Path: filepath.Join(t.TempDir(), DatabaseName)})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testUser(id, email string) *User {
	return &User{
		UserID:      id,
		Image:       []byte{0x89, 0x50, 0x4e, 0x47},
		Username:    "user-" + id,
		Email:       email,
		Password:    "secret-" + id,
		Token:       "token-" + id,
		PhoneNumber: "+62 811 000 000",
		City:        "Jakarta",
		Country:     "Indonesia",
	}
}

func testCar(id, brand, model string, availability Availability) *Car {
	return &Car{
		CarID:        id,
		HostName:     "Budi",
		Location:     "Jakarta",
		Description:  "Family car",
		Seats:        7,
		Transmission: "Automatic",
		Rules:        Rules{"No smoking", "No pets"},
		Model:        model,
		Brand:        brand,
		PricePerDay:  decimal.NewFromFloat(50),
		Availability: availability,
		Image:        []byte{0xff, 0xd8},
	}
}

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testBooking(id, userID, carID, start, end string, total float64) *Booking {
	return &Booking{
		BookingID:  id,
		UserID:     userID,
		CarID:      carID,
		StartDate:  date(start),
		EndDate:    date(end),
		TotalPrice: decimal.NewFromFloat(total),
	}
}

func mustAddUser(t *testing.T, s *Store, u *User) {
	t.Helper()
	_, err := s.AddUser(context.Background(), u)
	require.NoError(t, err)
}

func mustAddCar(t *testing.T, s *Store, c *Car) {
	t.Helper()
	_, err := s.AddCar(context.Background(), c)
	require.NoError(t, err)
}
