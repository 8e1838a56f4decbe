package rental

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the text form of booking dates in the Bookings table.
const DateLayout = "2006-01-02"

// Availability is the rentable state of a car.
type Availability string

const (
	Available    Availability = "Available"
	NotAvailable Availability = "Not Available"
)

// Role decides which cars a caller may list.
type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
)

// ParseRole maps a caller identity onto a Role. Only "admin", in any case,
// is an administrator.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), "admin") {
		return RoleAdmin
	}
	return RoleGuest
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "guest"
}

type User struct {
	UserID      string `db:"userId" json:"userId" validate:"required"`
	Image       []byte `db:"userImg" json:"image,omitempty"`
	Username    string `db:"username" json:"username" validate:"required"`
	Email       string `db:"email" json:"email" validate:"required,email"`
	Password    string `db:"password" json:"-" validate:"required"`
	Token       string `db:"token" json:"-" validate:"required"`
	PhoneNumber string `db:"phoneNumber" json:"phoneNumber" validate:"required"`
	City        string `db:"city" json:"city" validate:"required"`
	Country     string `db:"country" json:"country" validate:"required"`
}

type Car struct {
	CarID        string          `db:"carId" json:"carId" validate:"required"`
	HostName     string          `db:"hostName" json:"hostName" validate:"required"`
	Location     string          `db:"location" json:"location" validate:"required"`
	Description  string          `db:"description" json:"description" validate:"required"`
	Seats        int             `db:"seats" json:"seats" validate:"gt=0"`
	Transmission string          `db:"transmission" json:"transmission" validate:"required"`
	Rules        Rules           `db:"rules" json:"rules"`
	Model        string          `db:"carModel" json:"model" validate:"required"`
	Brand        string          `db:"carBrand" json:"brand" validate:"required"`
	PricePerDay  decimal.Decimal `db:"pricePerDay" json:"pricePerDay"`
	Availability Availability    `db:"availability" json:"availability" validate:"availability"`
	Image        []byte          `db:"carImg" json:"image,omitempty"`
}

// Name is the display name used in booking history.
func (c *Car) Name() string {
	return c.Brand + " " + c.Model
}

type Booking struct {
	BookingID  string          `json:"bookingId" validate:"required"`
	UserID     string          `json:"userId" validate:"required"`
	CarID      string          `json:"carId" validate:"required"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// BookingView is one entry of a user's booking history. StartDate and
// EndDate are nil when the stored text could not be parsed.
type BookingView struct {
	BookingID   string          `json:"bookingId"`
	UserID      string          `json:"userId"`
	CarID       string          `json:"carId"`
	CarImage    []byte          `json:"carImg,omitempty"`
	CarName     string          `json:"carName"`
	PricePerDay decimal.Decimal `json:"pricePerDay"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CarEdit holds the car fields an owner may change. Availability is driven by
// bookings and is not part of it.
type CarEdit struct {
	Image        []byte
	Brand        string `validate:"required"`
	Model        string `validate:"required"`
	HostName     string `validate:"required"`
	Seats        int    `validate:"gt=0"`
	Transmission string `validate:"required"`
	Location     string `validate:"required"`
	PricePerDay  decimal.Decimal
	Description  string `validate:"required"`
	Rules        Rules
}

// ProfileEdit holds the user fields editable from the profile screen.
// Password and token cannot be changed through it.
type ProfileEdit struct {
	Image       []byte
	Username    string `validate:"required"`
	Email       string `validate:"required,email"`
	PhoneNumber string `validate:"required"`
	City        string `validate:"required"`
	Country     string `validate:"required"`
}
