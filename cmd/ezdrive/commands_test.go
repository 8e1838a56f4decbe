package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyedwab/ezdrive/config"
	"github.com/tomyedwab/ezdrive/rental"
	"github.com/tomyedwab/ezdrive/session"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(dir, rental.DatabaseName)
	cfg.Session.SecretKeyPath = filepath.Join(dir, "jwt.key")

	store, err := rental.Open(context.Background(), rental.Options{Path: cfg.Database.Path})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &app{cfg: cfg, log: zerolog.Nop(), store: store}
}

func TestParseRules(t *testing.T) {
	assert.Nil(t, parseRules("  "))
	assert.Equal(t, rental.Rules{"No smoking", "No pets"}, parseRules("No smoking, No pets"))
}

func TestBookingTotal(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse(rental.DateLayout, s)
		require.NoError(t, err)
		return d
	}
	price := decimal.NewFromInt(50)

	assert.True(t, bookingTotal(price, day("2024-01-01"), day("2024-01-03")).Equal(decimal.NewFromInt(100)))
	assert.True(t, bookingTotal(price, day("2024-01-01"), day("2024-01-01")).Equal(decimal.NewFromInt(50)))
}

func TestAddUserMintsSessionToken(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	err := runAddUser(ctx, a, []string{
		"--id", "u1", "--username", "rina", "--email", "rina@example.com", "--password", "secret",
		"--phone", "0812", "--city", "Jakarta", "--country", "Indonesia",
	})
	require.NoError(t, err)

	user, err := a.store.GetUserByEmail(ctx, "rina@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	key, err := session.LoadSecretKey(a.cfg.Session.SecretKeyPath)
	require.NoError(t, err)
	claims, err := session.NewIssuer(key, time.Hour).Parse(user.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
}

func TestBookFlow(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, runAddUser(ctx, a, []string{
		"--id", "u1", "--username", "rina", "--email", "rina@example.com", "--password", "secret",
		"--phone", "0812", "--city", "Jakarta", "--country", "Indonesia",
	}))
	require.NoError(t, runAddCar(ctx, a, []string{
		"--car", "c1", "--brand", "Toyota", "--model", "Avanza", "--host", "Budi", "--seats", "7",
		"--transmission", "Automatic", "--location", "Jakarta", "--price", "50",
		"--description", "Family car", "--rules", "No smoking, No pets",
	}))

	require.NoError(t, runBook(ctx, a, []string{"--user", "u1", "--car", "c1", "--from", "2024-01-01", "--to", "2024-01-03"}))

	bookings, err := a.store.GetAllBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Toyota Avanza", bookings[0].CarName)
	assert.True(t, bookings[0].TotalPrice.Equal(decimal.NewFromInt(100)))

	car, err := a.store.GetCarByCarID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, rental.NotAvailable, car.Availability)
	assert.Equal(t, rental.Rules{"No smoking", "No pets"}, car.Rules)

	err = runBook(ctx, a, []string{"--user", "u1", "--car", "c1", "--from", "2024-02-01", "--to", "2024-02-02"})
	assert.ErrorIs(t, err, errCarUnavailable)
}

func TestBookWithTotalRequiresAvailableCar(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, runAddUser(ctx, a, []string{
		"--id", "u1", "--username", "rina", "--email", "rina@example.com", "--password", "secret",
		"--phone", "0812", "--city", "Jakarta", "--country", "Indonesia",
	}))
	require.NoError(t, runAddCar(ctx, a, []string{
		"--car", "c1", "--brand", "Honda", "--model", "Jazz", "--host", "Sari", "--seats", "5",
		"--transmission", "Manual", "--location", "Bogor", "--price", "30", "--description", "Hatch",
	}))
	require.NoError(t, runSetUnavailable(ctx, a, []string{"--car", "c1"}))

	err := runBook(ctx, a, []string{"--user", "u1", "--car", "c1", "--from", "2024-02-01", "--to", "2024-02-03", "--total", "45"})
	assert.ErrorIs(t, err, errCarUnavailable)

	err = runBook(ctx, a, []string{"--user", "u1", "--car", "ghost", "--from", "2024-02-01", "--to", "2024-02-03", "--total", "45"})
	assert.ErrorIs(t, err, rental.ErrMissingReference)

	bookings, err := a.store.GetAllBookings(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookWithTotalOverridesPrice(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, runAddUser(ctx, a, []string{
		"--id", "u1", "--username", "rina", "--email", "rina@example.com", "--password", "secret",
		"--phone", "0812", "--city", "Jakarta", "--country", "Indonesia",
	}))
	require.NoError(t, runAddCar(ctx, a, []string{
		"--car", "c1", "--brand", "Honda", "--model", "Jazz", "--host", "Sari", "--seats", "5",
		"--transmission", "Manual", "--location", "Bogor", "--price", "30", "--description", "Hatch",
	}))

	require.NoError(t, runBook(ctx, a, []string{"--user", "u1", "--car", "c1", "--from", "2024-02-01", "--to", "2024-02-03", "--total", "45"}))

	bookings, err := a.store.GetAllBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.True(t, bookings[0].TotalPrice.Equal(decimal.NewFromInt(45)))
}

func TestMissingFlags(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	for name, run := range map[string]command{
		"seed":           runSeed,
		"car":            runCar,
		"bookings":       runBookings,
		"deletecar":      runDeleteCar,
		"setunavailable": runSetUnavailable,
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, run(ctx, a, nil), errUsage)
		})
	}
}
