package validate

import (
	"time"

	"github.com/safarline/busadmin/internal/domain"
)

// Roles an account can hold.
const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleAgent    = "agent"
	RoleDriver   = "driver"
	RoleCustomer = "customer"
)

// Commission types.
const (
	CommissionPercentage = "percentage"
	CommissionFixed      = "fixed"
)

// Trip and booking states that need a reason.
const (
	StatusCancelled = "cancelled"
)

// Wallet transaction types.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// Mode distinguishes a create form from an edit form.
type Mode int

const (
	Create Mode = iota
	Edit
)

var (
	Roles            = []string{RoleAdmin, RoleVendor, RoleAgent, RoleDriver, RoleCustomer}
	CommissionTypes  = []string{CommissionPercentage, CommissionFixed}
	Statuses         = []string{"active", "inactive"}
	BusTypes         = []string{"standard", "vip", "sleeper"}
	TripStatuses     = []string{"scheduled", "departed", "completed", StatusCancelled}
	BookingStatuses  = []string{"pending", "confirmed", "completed", StatusCancelled}
	PaymentStatuses  = []string{"unpaid", "paid", "refunded"}
	TransactionTypes = []string{TransactionCredit, TransactionDebit}
	SettingGroups    = []string{"general", "contact", "payment", "booking"}
)

func status() Field {
	return Field{Name: "status", Kind: KindEnum, Options: Statuses, Required: true}
}

// localized returns name.en (required) plus optional Pashto and Dari inputs.
func localized(base string) []Field {
	return []Field{
		{Name: base + "." + domain.LocaleEnglish, Required: true, MaxLen: 255},
		{Name: base + "." + domain.LocalePashto, MaxLen: 255},
		{Name: base + "." + domain.LocaleDari, MaxLen: 255},
	}
}

func password(mode Mode) Field {
	return Field{Name: "password", Kind: KindPassword, Required: mode == Create}
}

// requiredWhen marks the named fields required when active is true.
func requiredWhen(active bool, fields ...Field) []Field {
	for i := range fields {
		fields[i].Required = active
	}
	return fields
}

// User builds the account form for role. Vendors need a company and
// commission, agents a vendor and commission, drivers a licence and vendor.
func User(role string, mode Mode) Schema {
	fields := []Field{
		{Name: "name", Required: true, MaxLen: 255},
		{Name: "email", Kind: KindEmail, Required: true},
		{Name: "mobile", Kind: KindMobile, Required: true},
		{Name: "role", Kind: KindEnum, Options: Roles, Required: true},
		password(mode),
		status(),
		{Name: "avatar", Kind: KindFile},
	}
	fields = append(fields, requiredWhen(role == RoleVendor,
		Field{Name: "company_name", MaxLen: 255},
	)...)
	fields = append(fields, requiredWhen(role == RoleAgent || role == RoleDriver,
		Field{Name: "vendor_id", Kind: KindID},
	)...)
	fields = append(fields, requiredWhen(role == RoleDriver,
		Field{Name: "license_number", MaxLen: 64},
	)...)
	if role == RoleVendor || role == RoleAgent {
		fields = append(fields, commissionFields("")...)
	}
	return Schema{Name: "user", Discriminator: "role", Fields: fields}
}

// commissionFields returns the commission inputs. A percentage is capped at
// 100; a fixed amount has no upper bound.
func commissionFields(commissionType string) []Field {
	value := Field{Name: "commission_value", Kind: KindPositive, Required: true}
	if commissionType == CommissionPercentage {
		value.Max = 100
	}
	return []Field{
		{Name: "commission_type", Kind: KindEnum, Options: CommissionTypes, Required: true},
		value,
	}
}

// Vendor builds the vendor form for a commission type.
func Vendor(commissionType string, mode Mode) Schema {
	fields := []Field{
		{Name: "name", Required: true, MaxLen: 255},
		{Name: "company_name", Required: true, MaxLen: 255},
		{Name: "email", Kind: KindEmail, Required: true},
		{Name: "mobile", Kind: KindMobile, Required: true},
		password(mode),
		status(),
		{Name: "logo", Kind: KindFile},
	}
	fields = append(fields, commissionFields(commissionType)...)
	return Schema{Name: "vendor", Discriminator: "commission_type", Fields: fields}
}

// Agent builds the agent form for a commission type.
func Agent(commissionType string, mode Mode) Schema {
	fields := []Field{
		{Name: "name", Required: true, MaxLen: 255},
		{Name: "email", Kind: KindEmail, Required: true},
		{Name: "mobile", Kind: KindMobile, Required: true},
		{Name: "vendor_id", Kind: KindID, Required: true},
		password(mode),
		status(),
	}
	fields = append(fields, commissionFields(commissionType)...)
	return Schema{Name: "agent", Discriminator: "commission_type", Fields: fields}
}

// Driver builds the driver form.
func Driver(mode Mode) Schema {
	return Schema{Name: "driver", Fields: []Field{
		{Name: "name", Required: true, MaxLen: 255},
		{Name: "mobile", Kind: KindMobile, Required: true},
		{Name: "license_number", Required: true, MaxLen: 64},
		{Name: "vendor_id", Kind: KindID, Required: true},
		{Name: "photo", Kind: KindFile, Required: mode == Create},
		status(),
	}}
}

// Page builds the CMS page form. Title and content are required only in
// the locale being edited.
func Page(locale string) Schema {
	fields := []Field{
		{Name: "slug", Required: true, MaxLen: 128},
		status(),
	}
	for _, loc := range domain.Locales {
		active := loc == locale
		fields = append(fields,
			Field{Name: "title." + loc, Required: active, MaxLen: 255},
			Field{Name: "content." + loc, Required: active},
		)
	}
	return Schema{Name: "page", Discriminator: "locale", Fields: fields}
}

// Setting builds the settings form. The value's check depends on the key.
func Setting(key string) Schema {
	value := Field{Name: "value", Required: true}
	switch key {
	case "support_email", "contact_email":
		value.Kind = KindEmail
	case "support_mobile", "contact_mobile":
		value.Kind = KindMobile
	case "commission_rate":
		value.Kind = KindPositive
		value.Max = 100
	case "booking_fee", "seat_hold_minutes":
		value.Kind = KindPositive
		value.Integer = key == "seat_hold_minutes"
	default:
		value.MaxLen = 2000
	}
	return Schema{Name: "setting", Discriminator: "key", Fields: []Field{
		{Name: "key", Required: true, MaxLen: 128},
		value,
		{Name: "group", Kind: KindEnum, Options: SettingGroups},
	}}
}

// WalletTransaction builds the manual wallet adjustment form. A debit must
// carry a description.
func WalletTransaction(txType string) Schema {
	return Schema{Name: "wallet_transaction", Discriminator: "type", Fields: []Field{
		{Name: "wallet_id", Kind: KindID, Required: true},
		{Name: "type", Kind: KindEnum, Options: TransactionTypes, Required: true},
		{Name: "amount", Kind: KindPositive, Required: true},
		{Name: "description", Required: txType == TransactionDebit, MaxLen: 500},
	}}
}

// Country builds the country form.
func Country() Schema {
	fields := localized("name")
	fields = append(fields, Field{Name: "code", Required: true, MaxLen: 3}, status())
	return Schema{Name: "country", Fields: fields}
}

// Province builds the province form.
func Province() Schema {
	fields := localized("name")
	fields = append(fields, Field{Name: "country_id", Kind: KindID, Required: true}, status())
	return Schema{Name: "province", Fields: fields}
}

// City builds the city form.
func City() Schema {
	fields := localized("name")
	fields = append(fields, Field{Name: "province_id", Kind: KindID, Required: true}, status())
	return Schema{Name: "city", Fields: fields}
}

// Route builds the route form. Both ends must be different cities.
func Route() Schema {
	fields := localized("name")
	fields = append(fields,
		Field{Name: "from_city_id", Kind: KindID, Required: true},
		Field{Name: "to_city_id", Kind: KindID, Required: true},
		Field{Name: "distance", Kind: KindPositive, Required: true},
		status(),
	)
	return Schema{Name: "route", Fields: fields, Checks: []Check{distinctCities}}
}

func distinctCities(draft map[string]string) (string, string) {
	from, to := draft["from_city_id"], draft["to_city_id"]
	if from != "" && from == to {
		return "to_city_id", "Destination must differ from origin"
	}
	return "", ""
}

// Station builds the station form.
func Station() Schema {
	fields := localized("name")
	fields = append(fields,
		Field{Name: "city_id", Kind: KindID, Required: true},
		Field{Name: "address", MaxLen: 500},
		Field{Name: "latitude", Kind: KindNumber, Min: -90, Max: 90},
		Field{Name: "longitude", Kind: KindNumber, Min: -180, Max: 180},
		status(),
	)
	return Schema{Name: "station", Fields: fields}
}

// Bus builds the bus form.
func Bus() Schema {
	return Schema{Name: "bus", Fields: []Field{
		{Name: "bus_number", Required: true, MaxLen: 32},
		{Name: "plate_number", Required: true, MaxLen: 32},
		{Name: "type", Kind: KindEnum, Options: BusTypes, Required: true},
		{Name: "seats", Kind: KindPositive, Integer: true, Max: 80, Required: true},
		{Name: "vendor_id", Kind: KindID, Required: true},
		{Name: "image", Kind: KindFile},
		status(),
	}}
}

// Trip builds the trip form for a trip status. Cancelling needs a reason.
func Trip(tripStatus string) Schema {
	return Schema{
		Name:          "trip",
		Discriminator: "status",
		Fields: []Field{
			{Name: "route_id", Kind: KindID, Required: true},
			{Name: "bus_id", Kind: KindID, Required: true},
			{Name: "driver_id", Kind: KindID, Required: true},
			{Name: "departure_at", Kind: KindDateTime, Required: true},
			{Name: "arrival_at", Kind: KindDateTime},
			{Name: "price", Kind: KindPositive, Required: true},
			{Name: "status", Kind: KindEnum, Options: TripStatuses, Required: true},
			{Name: "cancel_reason", Required: tripStatus == StatusCancelled, MaxLen: 500},
		},
		Checks: []Check{arrivalAfterDeparture},
	}
}

func arrivalAfterDeparture(draft map[string]string) (string, string) {
	dep, err1 := time.Parse(DateTimeLayout, draft["departure_at"])
	arr, err2 := time.Parse(DateTimeLayout, draft["arrival_at"])
	if err1 != nil || err2 != nil {
		return "", ""
	}
	if !arr.After(dep) {
		return "arrival_at", "Arrival must be after departure"
	}
	return "", ""
}

// BookingStatus builds the booking status change form.
func BookingStatus(bookingStatus string) Schema {
	return Schema{Name: "booking", Discriminator: "status", Fields: []Field{
		{Name: "status", Kind: KindEnum, Options: BookingStatuses, Required: true},
		{Name: "payment_status", Kind: KindEnum, Options: PaymentStatuses},
		{Name: "cancel_reason", Required: bookingStatus == StatusCancelled, MaxLen: 500},
	}}
}

// ExpenseCategory builds the expense category form.
func ExpenseCategory() Schema {
	fields := localized("name")
	fields = append(fields, status())
	return Schema{Name: "expense_category", Fields: fields}
}
