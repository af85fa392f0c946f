package domain

import (
	"strings"
	"time"
)

const backendTimestampLayout = "2006-01-02 15:04:05"

// Entity is any server record addressable by id.
type Entity interface {
	EntityID() int64
}

// PageInfo mirrors the pagination block of a list envelope.
type PageInfo struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	Total       int `json:"total"`
}

// Country is a top-level geographic record.
type Country struct {
	ID     int64         `json:"id"`
	Name   LocalizedName `json:"name"`
	Code   string        `json:"code"`
	Status string        `json:"status"`
}

// Province belongs to a country.
type Province struct {
	ID        int64         `json:"id"`
	Name      LocalizedName `json:"name"`
	CountryID int64         `json:"country_id"`
	Status    string        `json:"status"`
}

// City belongs to a province.
type City struct {
	ID         int64         `json:"id"`
	Name       LocalizedName `json:"name"`
	ProvinceID int64         `json:"province_id"`
	Status     string        `json:"status"`
}

// Route connects two cities.
type Route struct {
	ID         int64         `json:"id"`
	Name       LocalizedName `json:"name"`
	FromCityID int64         `json:"from_city_id"`
	ToCityID   int64         `json:"to_city_id"`
	DistanceKM float64       `json:"distance"`
	Status     string        `json:"status"`
}

// Station is a boarding point inside a city.
type Station struct {
	ID        int64         `json:"id"`
	Name      LocalizedName `json:"name"`
	CityID    int64         `json:"city_id"`
	Address   string        `json:"address"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Status    string        `json:"status"`
}

// Bus is a vehicle operated by a vendor.
type Bus struct {
	ID          int64  `json:"id"`
	BusNumber   string `json:"bus_number"`
	PlateNumber string `json:"plate_number"`
	Type        string `json:"type"`
	Seats       int    `json:"seats"`
	VendorID    int64  `json:"vendor_id"`
	Image       string `json:"image"`
	Status      string `json:"status"`
}

// Driver drives buses for a vendor.
type Driver struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	LicenseNumber string `json:"license_number"`
	VendorID      int64  `json:"vendor_id"`
	Photo         string `json:"photo"`
	Status        string `json:"status"`
}

// User is an account of any role.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Avatar string `json:"avatar"`
}

// Vendor is a bus operator account.
type Vendor struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	CompanyName     string  `json:"company_name"`
	Email           string  `json:"email"`
	Mobile          string  `json:"mobile"`
	CommissionType  string  `json:"commission_type"`
	CommissionValue float64 `json:"commission_value"`
	Logo            string  `json:"logo"`
	DriversCount    int     `json:"drivers_count"`
	Status          string  `json:"status"`
}

// Agent sells tickets on behalf of a vendor.
type Agent struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Mobile          string  `json:"mobile"`
	VendorID        int64   `json:"vendor_id"`
	CommissionType  string  `json:"commission_type"`
	CommissionValue float64 `json:"commission_value"`
	Status          string  `json:"status"`
}

// Trip is a scheduled departure on a route.
type Trip struct {
	ID             int64   `json:"id"`
	RouteID        int64   `json:"route_id"`
	BusID          int64   `json:"bus_id"`
	DriverID       int64   `json:"driver_id"`
	DepartureAt    string  `json:"departure_at"`
	ArrivalAt      string  `json:"arrival_at"`
	Price          float64 `json:"price"`
	AvailableSeats int     `json:"available_seats"`
	Status         string  `json:"status"`
}

// ParsedDeparture returns the departure timestamp.
func (t Trip) ParsedDeparture() time.Time {
	return parseTime(t.DepartureAt)
}

// Booking is a customer reservation on a trip.
type Booking struct {
	ID            int64   `json:"id"`
	Code          string  `json:"booking_code"`
	TripID        int64   `json:"trip_id"`
	CustomerName  string  `json:"customer_name"`
	Mobile        string  `json:"mobile"`
	SeatNumbers   []int   `json:"seat_numbers"`
	TotalAmount   float64 `json:"total_amount"`
	PaymentStatus string  `json:"payment_status"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// ParsedCreatedAt returns the booking creation timestamp.
func (b Booking) ParsedCreatedAt() time.Time {
	return parseTime(b.CreatedAt)
}

// Wallet is a balance owned by a user.
type Wallet struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	OwnerName string  `json:"owner_name"`
	Balance   float64 `json:"balance"`
	Currency  string  `json:"currency"`
	UpdatedAt string  `json:"updated_at"`
}

// WalletTransaction is a credit or debit posted to a wallet.
type WalletTransaction struct {
	ID          int64   `json:"id"`
	WalletID    int64   `json:"wallet_id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// Setting is a key/value system setting.
type Setting struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Group string `json:"group"`
}

// Page is a CMS page with per-locale title and body.
type Page struct {
	ID      int64         `json:"id"`
	Slug    string        `json:"slug"`
	Title   LocalizedName `json:"title"`
	Content LocalizedName `json:"content"`
	Status  string        `json:"status"`
}

// ExpenseCategory groups vendor expenses.
type ExpenseCategory struct {
	ID     int64         `json:"id"`
	Name   LocalizedName `json:"name"`
	Status string        `json:"status"`
}

func (c Country) EntityID() int64           { return c.ID }
func (p Province) EntityID() int64          { return p.ID }
func (c City) EntityID() int64              { return c.ID }
func (r Route) EntityID() int64             { return r.ID }
func (s Station) EntityID() int64           { return s.ID }
func (b Bus) EntityID() int64               { return b.ID }
func (d Driver) EntityID() int64            { return d.ID }
func (u User) EntityID() int64              { return u.ID }
func (v Vendor) EntityID() int64            { return v.ID }
func (a Agent) EntityID() int64             { return a.ID }
func (t Trip) EntityID() int64              { return t.ID }
func (b Booking) EntityID() int64           { return b.ID }
func (w Wallet) EntityID() int64            { return w.ID }
func (t WalletTransaction) EntityID() int64 { return t.ID }
func (s Setting) EntityID() int64           { return s.ID }
func (p Page) EntityID() int64              { return p.ID }
func (e ExpenseCategory) EntityID() int64   { return e.ID }

// Profile is the signed-in user as returned by the login endpoint.
type Profile struct {
	ID     int64  `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Email  string `json:"email" toml:"email"`
	Mobile string `json:"mobile" toml:"mobile"`
	Role   string `json:"role" toml:"role"`
}

// DisplayName returns the best human label for the profile.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return strings.TrimSpace(p.Email)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// FieldErrors maps a form field to its error text. Server validation errors
// and local validation errors share this shape so forms render both alike.
type FieldErrors map[string]string

// Clone returns an independent copy.
func (f FieldErrors) Clone() FieldErrors {
	if f == nil {
		return nil
	}
	dup := make(FieldErrors, len(f))
	for k, v := range f {
		dup[k] = v
	}
	return dup
}
