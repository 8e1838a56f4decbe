package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tomyedwab/ezdrive/rental"
)

var (
	errUsage          = errors.New("missing required flag")
	errCarUnavailable = errors.New("car is not available")
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readImage(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func parseRules(text string) rental.Rules {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	rules := rental.SplitRules(text)
	for i := range rules {
		rules[i] = strings.TrimSpace(rules[i])
	}
	return rules
}

func parsePrice(text string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", text, err)
	}
	return price, nil
}

func runInit(ctx context.Context, a *app, args []string) error {
	version, err := a.store.StoredVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Database %s ready at schema version %d\n", a.cfg.Database.Path, version)
	return nil
}

func runSeed(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("seed", flag.ExitOnError)
	file := cmd.String("file", "", "JSON file holding an array of cars")
	cmd.Parse(args)
	if *file == "" {
		return fmt.Errorf("%w: seed --file <cars.json>", errUsage)
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	n, err := a.store.SeedCars(ctx, f)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d cars\n", n)
	return nil
}

func runAddUser(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	id := cmd.String("id", "", "User ID (generated when empty)")
	image := cmd.String("image", "", "Path to a profile image")
	username := cmd.String("username", "", "Display name")
	email := cmd.String("email", "", "Email address")
	password := cmd.String("password", "", "Password")
	phone := cmd.String("phone", "", "Phone number")
	city := cmd.String("city", "", "City")
	country := cmd.String("country", "", "Country")
	cmd.Parse(args)
	if *username == "" || *email == "" || *password == "" {
		return fmt.Errorf("%w: adduser --username <name> --email <email> --password <password>", errUsage)
	}

	if *id == "" {
		*id = uuid.New().String()
	}
	img, err := readImage(*image)
	if err != nil {
		return err
	}
	issuer, err := a.sessionIssuer()
	if err != nil {
		return err
	}
	token, err := issuer.Issue(*id, *username)
	if err != nil {
		return err
	}

	user := &rental.User{
		UserID:      *id,
		Image:       img,
		Username:    *username,
		Email:       *email,
		Password:    *password,
		Token:       token,
		PhoneNumber: *phone,
		City:        *city,
		Country:     *country,
	}
	if _, err := a.store.AddUser(ctx, user); err != nil {
		return err
	}
	return printJSON(user)
}

func runUsers(ctx context.Context, a *app, args []string) error {
	users, err := a.store.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	return printJSON(users)
}

type carFlags struct {
	image, brand, model, host, transmission string
	location, price, description, rules     string
	seats                                   int
}

func bindCarFlags(cmd *flag.FlagSet) *carFlags {
	f := &carFlags{}
	cmd.StringVar(&f.image, "image", "", "Path to a car photo")
	cmd.StringVar(&f.brand, "brand", "", "Brand")
	cmd.StringVar(&f.model, "model", "", "Model")
	cmd.StringVar(&f.host, "host", "", "Host name")
	cmd.IntVar(&f.seats, "seats", 0, "Seat count")
	cmd.StringVar(&f.transmission, "transmission", "", "Transmission")
	cmd.StringVar(&f.location, "location", "", "Pickup location")
	cmd.StringVar(&f.price, "price", "0", "Price per day")
	cmd.StringVar(&f.description, "description", "", "Description")
	cmd.StringVar(&f.rules, "rules", "", "Comma separated rules")
	return f
}

func runAddCar(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("addcar", flag.ExitOnError)
	id := cmd.String("car", "", "Car ID (generated when empty)")
	f := bindCarFlags(cmd)
	cmd.Parse(args)

	if *id == "" {
		*id = uuid.New().String()
	}
	img, err := readImage(f.image)
	if err != nil {
		return err
	}
	price, err := parsePrice(f.price)
	if err != nil {
		return err
	}

	car := &rental.Car{
		CarID:        *id,
		HostName:     f.host,
		Location:     f.location,
		Description:  f.description,
		Seats:        f.seats,
		Transmission: f.transmission,
		Rules:        parseRules(f.rules),
		Model:        f.model,
		Brand:        f.brand,
		PricePerDay:  price,
		Availability: rental.Available,
		Image:        img,
	}
	if _, err := a.store.AddCar(ctx, car); err != nil {
		return err
	}
	return printJSON(car)
}

func runCars(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("cars", flag.ExitOnError)
	role := cmd.String("role", "guest", "Caller role; admin sees unavailable cars too")
	cmd.Parse(args)

	cars, err := a.store.GetCarsByRole(ctx, rental.ParseRole(*role))
	if err != nil {
		return err
	}
	return printJSON(cars)
}

func runCar(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("car", flag.ExitOnError)
	id := cmd.String("car", "", "Car ID")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("%w: car --car <car_id>", errUsage)
	}

	car, err := a.store.GetCarByCarID(ctx, *id)
	if err != nil {
		return err
	}
	if car == nil {
		fmt.Printf("No car with id %s\n", *id)
		return nil
	}
	return printJSON(car)
}

func runEditCar(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("editcar", flag.ExitOnError)
	id := cmd.String("car", "", "Car ID")
	f := bindCarFlags(cmd)
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("%w: editcar --car <car_id> [car fields]", errUsage)
	}

	img, err := readImage(f.image)
	if err != nil {
		return err
	}
	price, err := parsePrice(f.price)
	if err != nil {
		return err
	}

	n, err := a.store.EditCar(ctx, *id, rental.CarEdit{
		Image:        img,
		Brand:        f.brand,
		Model:        f.model,
		HostName:     f.host,
		Seats:        f.seats,
		Transmission: f.transmission,
		Location:     f.location,
		PricePerDay:  price,
		Description:  f.description,
		Rules:        parseRules(f.rules),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Updated %d car(s)\n", n)
	return nil
}

func runEditProfile(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("editprofile", flag.ExitOnError)
	id := cmd.String("user", "", "User ID")
	image := cmd.String("image", "", "Path to a profile image")
	username := cmd.String("username", "", "Display name")
	email := cmd.String("email", "", "Email address")
	phone := cmd.String("phone", "", "Phone number")
	city := cmd.String("city", "", "City")
	country := cmd.String("country", "", "Country")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("%w: editprofile --user <user_id> [profile fields]", errUsage)
	}

	img, err := readImage(*image)
	if err != nil {
		return err
	}
	n, err := a.store.EditProfile(ctx, *id, rental.ProfileEdit{
		Image:       img,
		Username:    *username,
		Email:       *email,
		PhoneNumber: *phone,
		City:        *city,
		Country:     *country,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Updated %d user(s)\n", n)
	return nil
}

// bookingTotal charges one day per night between the dates, at least one.
func bookingTotal(pricePerDay decimal.Decimal, start, end time.Time) decimal.Decimal {
	days := int64(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return pricePerDay.Mul(decimal.NewFromInt(days))
}

func runBook(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("book", flag.ExitOnError)
	userID := cmd.String("user", "", "User ID")
	carID := cmd.String("car", "", "Car ID")
	from := cmd.String("from", "", "Start date, YYYY-MM-DD")
	to := cmd.String("to", "", "End date, YYYY-MM-DD")
	total := cmd.String("total", "", "Total price (computed from the daily price when empty)")
	cmd.Parse(args)
	if *userID == "" || *carID == "" || *from == "" || *to == "" {
		return fmt.Errorf("%w: book --user <user_id> --car <car_id> --from <date> --to <date>", errUsage)
	}

	start, err := time.Parse(rental.DateLayout, *from)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(rental.DateLayout, *to)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	car, err := a.store.GetCarByCarID(ctx, *carID)
	if err != nil {
		return err
	}
	if car == nil {
		return fmt.Errorf("car %s: %w", *carID, rental.ErrMissingReference)
	}
	if car.Availability != rental.Available {
		return fmt.Errorf("car %s: %w", *carID, errCarUnavailable)
	}

	price := bookingTotal(car.PricePerDay, start, end)
	if *total != "" {
		if price, err = parsePrice(*total); err != nil {
			return err
		}
	}

	booking := &rental.Booking{
		BookingID:  uuid.New().String(),
		UserID:     *userID,
		CarID:      *carID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: price,
	}
	if _, err := a.store.BookCar(ctx, booking); err != nil {
		return err
	}
	return printJSON(booking)
}

func runBookings(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("bookings", flag.ExitOnError)
	userID := cmd.String("user", "", "User ID")
	cmd.Parse(args)
	if *userID == "" {
		return fmt.Errorf("%w: bookings --user <user_id>", errUsage)
	}

	bookings, err := a.store.GetAllBookings(ctx, *userID)
	if err != nil {
		return err
	}
	return printJSON(bookings)
}

func runDeleteCar(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("deletecar", flag.ExitOnError)
	id := cmd.String("car", "", "Car ID")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("%w: deletecar --car <car_id>", errUsage)
	}
	if err := a.store.DeleteCar(ctx, *id); err != nil {
		return err
	}
	fmt.Println("Car deleted:", *id)
	return nil
}

func runSetUnavailable(ctx context.Context, a *app, args []string) error {
	cmd := flag.NewFlagSet("setunavailable", flag.ExitOnError)
	id := cmd.String("car", "", "Car ID")
	cmd.Parse(args)
	if *id == "" {
		return fmt.Errorf("%w: setunavailable --car <car_id>", errUsage)
	}
	if err := a.store.UpdateCarStatus(ctx, *id); err != nil {
		return err
	}
	fmt.Println("Car marked unavailable:", *id)
	return nil
}
