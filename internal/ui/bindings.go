package ui

import (
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/state"
	"github.com/safarline/busadmin/internal/validate"
)

// plainText strips CMS markup for terminal display.
var plainText = bluemonday.StrictPolicy()

// screens returns one screen per resource in tab order.
func screens(s *state.Store) []screen {
	countryName := func(id int64, loc string) string {
		return lookup(s.Countries, id, func(c domain.Country) string { return c.Name.In(loc) })
	}
	provinceName := func(id int64, loc string) string {
		return lookup(s.Provinces, id, func(p domain.Province) string { return p.Name.In(loc) })
	}
	cityName := func(id int64, loc string) string {
		return lookup(s.Cities, id, func(c domain.City) string { return c.Name.In(loc) })
	}
	routeName := func(id int64, loc string) string {
		return lookup(s.Routes, id, func(r domain.Route) string { return r.Name.In(loc) })
	}
	vendorName := func(id int64) string {
		return lookup(s.Vendors, id, func(v domain.Vendor) string { return firstNonEmpty(v.CompanyName, v.Name) })
	}
	busName := func(id int64) string {
		return lookup(s.Buses, id, func(b domain.Bus) string { return b.BusNumber })
	}
	driverName := func(id int64) string {
		return lookup(s.Drivers, id, func(d domain.Driver) string { return d.Name })
	}

	return []screen{
		&binding[domain.Trip]{
			title:   "Trips",
			coll:    s.Trips,
			columns: []column{{"Route", 24}, {"Departure", 16}, {"Bus", 10}, {"Price", 10}, {"Seats", 6}, {"Status", 10}},
			row: func(t domain.Trip, loc string) []string {
				return []string{routeName(t.RouteID, loc), formTime(t.DepartureAt), busName(t.BusID), money(t.Price), strconv.Itoa(t.AvailableSeats), t.Status}
			},
			detail: func(t domain.Trip, loc string) []detailLine {
				return []detailLine{
					{"Route", routeName(t.RouteID, loc)},
					{"Bus", busName(t.BusID)},
					{"Driver", driverName(t.DriverID)},
					{"Departure", formTime(t.DepartureAt)},
					{"Arrival", formTime(t.ArrivalAt)},
					{"Price", money(t.Price)},
					{"Available seats", strconv.Itoa(t.AvailableSeats)},
					{"Status", t.Status},
				}
			},
			draft: func(t domain.Trip) map[string]string {
				return map[string]string{
					"route_id":     idText(t.RouteID),
					"bus_id":       idText(t.BusID),
					"driver_id":    idText(t.DriverID),
					"departure_at": formTime(t.DepartureAt),
					"arrival_at":   formTime(t.ArrivalAt),
					"price":        number(t.Price),
					"status":       t.Status,
				}
			},
			schema: func(d map[string]string, _ validate.Mode, _ string) validate.Schema {
				return validate.Trip(d["status"])
			},
		},
		&binding[domain.Booking]{
			title:   "Bookings",
			coll:    s.Bookings,
			columns: []column{{"Code", 12}, {"Customer", 20}, {"Seats", 10}, {"Amount", 10}, {"Payment", 9}, {"Status", 10}},
			row: func(b domain.Booking, _ string) []string {
				return []string{b.Code, b.CustomerName, seats(b.SeatNumbers), money(b.TotalAmount), b.PaymentStatus, b.Status}
			},
			detail: func(b domain.Booking, _ string) []detailLine {
				return []detailLine{
					{"Code", b.Code},
					{"Trip", "#" + idText(b.TripID)},
					{"Customer", b.CustomerName},
					{"Mobile", b.Mobile},
					{"Seats", seats(b.SeatNumbers)},
					{"Total", money(b.TotalAmount)},
					{"Payment", b.PaymentStatus},
					{"Status", b.Status},
					{"Booked", formTime(b.CreatedAt)},
				}
			},
			draft: func(b domain.Booking) map[string]string {
				return map[string]string{"status": b.Status, "payment_status": b.PaymentStatus}
			},
			schema: func(d map[string]string, _ validate.Mode, _ string) validate.Schema {
				return validate.BookingStatus(d["status"])
			},
		},
		&binding[domain.Route]{
			title:   "Routes",
			coll:    s.Routes,
			columns: []column{{"Name", 24}, {"From", 16}, {"To", 16}, {"Km", 8}, {"Status", 10}},
			row: func(r domain.Route, loc string) []string {
				return []string{r.Name.In(loc), cityName(r.FromCityID, loc), cityName(r.ToCityID, loc), number(r.DistanceKM), r.Status}
			},
			detail: func(r domain.Route, loc string) []detailLine {
				return append(localizedLines("Name", r.Name),
					detailLine{"From", cityName(r.FromCityID, loc)},
					detailLine{"To", cityName(r.ToCityID, loc)},
					detailLine{"Distance (km)", number(r.DistanceKM)},
					detailLine{"Status", r.Status},
				)
			},
			draft: func(r domain.Route) map[string]string {
				d := localizedDraft("name", r.Name)
				d["from_city_id"] = idText(r.FromCityID)
				d["to_city_id"] = idText(r.ToCityID)
				d["distance"] = number(r.DistanceKM)
				d["status"] = r.Status
				return d
			},
			schema: func(map[string]string, validate.Mode, string) validate.Schema { return validate.Route() },
		},
		&binding[domain.Station]{
			title:   "Stations",
			coll:    s.Stations,
			columns: []column{{"Name", 24}, {"City", 16}, {"Address", 28}, {"Status", 10}},
			row: func(st domain.Station, loc string) []string {
				return []string{st.Name.In(loc), cityName(st.CityID, loc), st.Address, st.Status}
			},
			detail: func(st domain.Station, loc string) []detailLine {
				return append(localizedLines("Name", st.Name),
					detailLine{"City", cityName(st.CityID, loc)},
					detailLine{"Address", st.Address},
					detailLine{"Coordinates", number(st.Latitude) + ", " + number(st.Longitude)},
					detailLine{"Status", st.Status},
				)
			},
			draft: func(st domain.Station) map[string]string {
				d := localizedDraft("name", st.Name)
				d["city_id"] = idText(st.CityID)
				d["address"] = st.Address
				d["latitude"] = number(st.Latitude)
				d["longitude"] = number(st.Longitude)
				d["status"] = st.Status
				return d
			},
			schema: func(map[string]string, validate.Mode, string) validate.Schema { return validate.Station() },
		},
		&binding[domain.Bus]{
			title:   "Buses",
			coll:    s.Buses,
			columns: []column{{"Number", 10}, {"Plate", 12}, {"Type", 10}, {"Seats", 6}, {"Vendor", 20}, {"Status", 10}},
			row: func(b domain.Bus, _ string) []string {
				return []string{b.BusNumber, b.PlateNumber, b.Type, strconv.Itoa(b.Seats), vendorName(b.VendorID), b.Status}
			},
			detail: func(b domain.Bus, _ string) []detailLine {
				return []detailLine{
					{"Number", b.BusNumber},
					{"Plate", b.PlateNumber},
					{"Type", b.Type},
					{"Seats", strconv.Itoa(b.Seats)},
					{"Vendor", vendorName(b.VendorID)},
					{"Image", b.Image},
					{"Status", b.Status},
				}
			},
			draft: func(b domain.Bus) map[string]string {
				return map[string]string{
					"bus_number":   b.BusNumber,
					"plate_number": b.PlateNumber,
					"type":         b.Type,
					"seats":        strconv.Itoa(b.Seats),
					"vendor_id":    idText(b.VendorID),
					"status":       b.Status,
				}
			},
			schema: func(map[string]string, validate.Mode, string) validate.Schema { return validate.Bus() },
		},
		&binding[domain.Driver]{
			title:   "Drivers",
			coll:    s.Drivers,
			columns: []column{{"Name", 20}, {"Mobile", 12}, {"License", 14}, {"Vendor", 20}, {"Status", 10}},
			row: func(d domain.Driver, _ string) []string {
				return []string{d.Name, d.Mobile, d.LicenseNumber, vendorName(d.VendorID), d.Status}
			},
			detail: func(d domain.Driver, _ string) []detailLine {
				return []detailLine{
					{"Name", d.Name},
					{"Mobile", d.Mobile},
					{"License", d.LicenseNumber},
					{"Vendor", vendorName(d.VendorID)},
					{"Photo", d.Photo},
					{"Status", d.Status},
				}
			},
			draft: func(d domain.Driver) map[string]string {
				return map[string]string{
					"name":           d.Name,
					"mobile":         d.Mobile,
					"license_number": d.LicenseNumber,
					"vendor_id":      idText(d.VendorID),
					"status":         d.Status,
				}
			},
			schema: func(_ map[string]string, mode validate.Mode, _ string) validate.Schema {
				return validate.Driver(mode)
			},
		},
		&binding[domain.Vendor]{
			title:   "Vendors",
			coll:    s.Vendors,
			columns: []column{{"Company", 22}, {"Contact", 18}, {"Mobile", 12}, {"Commission", 12}, {"Drivers", 8}, {"Status", 10}},
			row: func(v domain.Vendor, _ string) []string {
				return []string{v.CompanyName, v.Name, v.Mobile, commission(v.CommissionType, v.CommissionValue), strconv.Itoa(v.DriversCount), v.Status}
			},
			detail: func(v domain.Vendor, _ string) []detailLine {
				return []detailLine{
					{"Company", v.CompanyName},
					{"Contact", v.Name},
					{"Email", v.Email},
					{"Mobile", v.Mobile},
					{"Commission", commission(v.CommissionType, v.CommissionValue)},
					{"Drivers", strconv.Itoa(v.DriversCount)},
					{"Logo", v.Logo},
					{"Status", v.Status},
				}
			},
			draft: func(v domain.Vendor) map[string]string {
				return map[string]string{
					"name":             v.Name,
					"company_name":     v.CompanyName,
					"email":            v.Email,
					"mobile":           v.Mobile,
					"commission_type":  v.CommissionType,
					"commission_value": number(v.CommissionValue),
					"status":           v.Status,
				}
			},
			schema: func(d map[string]string, mode validate.Mode, _ string) validate.Schema {
				return validate.Vendor(d["commission_type"], mode)
			},
		},
		&binding[domain.Agent]{
			title:   "Agents",
			coll:    s.Agents,
			columns: []column{{"Name", 20}, {"Email", 24}, {"Mobile", 12}, {"Vendor", 18}, {"Status", 10}},
			row: func(a domain.Agent, _ string) []string {
				return []string{a.Name, a.Email, a.Mobile, vendorName(a.VendorID), a.Status}
			},
			detail: func(a domain.Agent, _ string) []detailLine {
				return []detailLine{
					{"Name", a.Name},
					{"Email", a.Email},
					{"Mobile", a.Mobile},
					{"Vendor", vendorName(a.VendorID)},
					{"Commission", commission(a.CommissionType, a.CommissionValue)},
					{"Status", a.Status},
				}
			},
			draft: func(a domain.Agent) map[string]string {
				return map[string]string{
					"name":             a.Name,
					"email":            a.Email,
					"mobile":           a.Mobile,
					"vendor_id":        idText(a.VendorID),
					"commission_type":  a.CommissionType,
					"commission_value": number(a.CommissionValue),
					"status":           a.Status,
				}
			},
			schema: func(d map[string]string, mode validate.Mode, _ string) validate.Schema {
				return validate.Agent(d["commission_type"], mode)
			},
		},
		&binding[domain.User]{
			title:   "Users",
			coll:    s.Users,
			columns: []column{{"Name", 20}, {"Email", 26}, {"Mobile", 12}, {"Role", 10}, {"Status", 10}},
			row: func(u domain.User, _ string) []string {
				return []string{u.Name, u.Email, u.Mobile, u.Role, u.Status}
			},
			detail: func(u domain.User, _ string) []detailLine {
				return []detailLine{
					{"Name", u.Name},
					{"Email", u.Email},
					{"Mobile", u.Mobile},
					{"Role", u.Role},
					{"Avatar", u.Avatar},
					{"Status", u.Status},
				}
			},
			draft: func(u domain.User) map[string]string {
				return map[string]string{
					"name":   u.Name,
					"email":  u.Email,
					"mobile": u.Mobile,
					"role":   u.Role,
					"status": u.Status,
				}
			},
			schema: func(d map[string]string, mode validate.Mode, _ string) validate.Schema {
				return validate.User(d["role"], mode)
			},
		},
		&binding[domain.Wallet]{
			title:   "Wallets",
			coll:    s.Wallets,
			columns: []column{{"Owner", 24}, {"Balance", 14}, {"Currency", 8}, {"Updated", 16}},
			row: func(w domain.Wallet, _ string) []string {
				return []string{w.OwnerName, money(w.Balance), w.Currency, formTime(w.UpdatedAt)}
			},
			detail: func(w domain.Wallet, _ string) []detailLine {
				return []detailLine{
					{"Owner", w.OwnerName},
					{"User", "#" + idText(w.UserID)},
					{"Balance", money(w.Balance) + " " + w.Currency},
					{"Updated", formTime(w.UpdatedAt)},
				}
			},
		},
		&binding[domain.WalletTransaction]{
			title:   "Transactions",
			coll:    s.WalletTxns,
			columns: []column{{"Wallet", 8}, {"Type", 8}, {"Amount", 12}, {"Description", 30}, {"Posted", 16}},
			row: func(t domain.WalletTransaction, _ string) []string {
				return []string{"#" + idText(t.WalletID), t.Type, money(t.Amount), t.Description, formTime(t.CreatedAt)}
			},
			detail: func(t domain.WalletTransaction, _ string) []detailLine {
				return []detailLine{
					{"Wallet", "#" + idText(t.WalletID)},
					{"Type", t.Type},
					{"Amount", money(t.Amount)},
					{"Description", t.Description},
					{"Posted", formTime(t.CreatedAt)},
				}
			},
			schema: func(d map[string]string, _ validate.Mode, _ string) validate.Schema {
				return validate.WalletTransaction(d["type"])
			},
		},
		&binding[domain.Country]{
			title:   "Countries",
			coll:    s.Countries,
			columns: []column{{"Name", 24}, {"Code", 6}, {"Status", 10}},
			row: func(c domain.Country, loc string) []string {
				return []string{c.Name.In(loc), c.Code, c.Status}
			},
			detail: func(c domain.Country, _ string) []detailLine {
				return append(localizedLines("Name", c.Name),
					detailLine{"Code", c.Code},
					detailLine{"Status", c.Status},
				)
			},
			draft: func(c domain.Country) map[string]string {
				d := localizedDraft("name", c.Name)
				d["code"] = c.Code
				d["status"] = c.Status
				return d
			},
			schema: func(map[string]string, validate.Mode, string) validate.Schema { return validate.Country() },
		},
		&binding[domain.Province]{
			title:   "Provinces",
			coll:    s.Provinces,
			columns: []column{{"Name", 24}, {"Country", 20}, {"Status", 10}},
			row: func(p domain.Province, loc string) []string {
				return []string{p.Name.In(loc), countryName(p.CountryID, loc), p.Status}
			},
			detail: func(p domain.Province, loc string) []detailLine {
				return append(localizedLines("Name", p.Name),
					detailLine{"Country", countryName(p.CountryID, loc)},
					detailLine{"Status", p.Status},
				)
			},
			draft: func(p domain.Province) map[string]string {
				d := localizedDraft("name", p.Name)
				d["country_id"] = idText(p.CountryID)
				d["status"] = p.Status
				return d
			},
			schema: func(map[string]string, validate.Mode, string) validate.Schema { return validate.Province() },
		},
		&binding[domain.City]{
			title:   "Cities",
			coll:    s.Cities,
			columns: []column{{"Name", 24}, {"Province", 20}, {"Status", 10}},
			row: func(c domain.City, loc string) []string {
				return []string{c.Name.In(loc), provinceName(c.ProvinceID, loc), c.Status}
			},
			detail: func(c domain.City, loc string) []detailLine {
				return append(localizedLines("Name", c.Name),
					detailLine{"Province", provinceName(c.ProvinceID, loc)},
					detailLine{"Status", c.Status},
				)
			},
			draft: func(c domain.City) map[string]string {
				d := localizedDraft("name", c.Name)
				d["province_id"] = idText(c.ProvinceID)
				d["status"] = c.Status
				return d
			},
			schema: func(map[string]string, validate.Mode, string) validate.Schema { return validate.City() },
		},
		&binding[domain.ExpenseCategory]{
			title:   "Expenses",
			coll:    s.ExpenseCategories,
			columns: []column{{"Name", 30}, {"Status", 10}},
			row: func(e domain.ExpenseCategory, loc string) []string {
				return []string{e.Name.In(loc), e.Status}
			},
			detail: func(e domain.ExpenseCategory, _ string) []detailLine {
				return append(localizedLines("Name", e.Name), detailLine{"Status", e.Status})
			},
			draft: func(e domain.ExpenseCategory) map[string]string {
				d := localizedDraft("name", e.Name)
				d["status"] = e.Status
				return d
			},
			schema: func(map[string]string, validate.Mode, string) validate.Schema { return validate.ExpenseCategory() },
		},
		&binding[domain.Page]{
			title:   "Pages",
			coll:    s.Pages,
			columns: []column{{"Slug", 18}, {"Title", 32}, {"Status", 10}},
			row: func(p domain.Page, loc string) []string {
				return []string{p.Slug, p.Title.In(loc), p.Status}
			},
			detail: func(p domain.Page, loc string) []detailLine {
				return []detailLine{
					{"Slug", p.Slug},
					{"Title", p.Title.In(loc)},
					{"Status", p.Status},
					{"Content", stripMarkup(p.Content.In(loc))},
				}
			},
			draft: func(p domain.Page) map[string]string {
				d := localizedDraft("title", p.Title)
				for k, v := range localizedDraft("content", p.Content) {
					d[k] = v
				}
				d["slug"] = p.Slug
				d["status"] = p.Status
				return d
			},
			schema: func(_ map[string]string, _ validate.Mode, loc string) validate.Schema {
				return validate.Page(loc)
			},
		},
		&binding[domain.Setting]{
			title:   "Settings",
			coll:    s.Settings,
			columns: []column{{"Key", 22}, {"Value", 34}, {"Group", 10}},
			row: func(st domain.Setting, _ string) []string {
				return []string{st.Key, st.Value, st.Group}
			},
			detail: func(st domain.Setting, _ string) []detailLine {
				return []detailLine{{"Key", st.Key}, {"Value", st.Value}, {"Group", st.Group}}
			},
			draft: func(st domain.Setting) map[string]string {
				return map[string]string{"key": st.Key, "value": st.Value, "group": st.Group}
			},
			schema: func(d map[string]string, _ validate.Mode, _ string) validate.Schema {
				return validate.Setting(d["key"])
			},
		},
	}
}

func localizedLines(label string, n domain.LocalizedName) []detailLine {
	lines := make([]detailLine, 0, len(domain.Locales))
	for _, loc := range domain.Locales {
		if v := n.In(loc); v != "" {
			lines = append(lines, detailLine{label + " (" + loc + ")", v})
		}
	}
	return lines
}

func localizedDraft(base string, n domain.LocalizedName) map[string]string {
	return map[string]string{
		base + "." + domain.LocaleEnglish: n.EN,
		base + "." + domain.LocalePashto:  n.PS,
		base + "." + domain.LocaleDari:    n.FA,
	}
}

// stripMarkup renders CMS HTML as plain text.
func stripMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

func idText(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func commission(kind string, value float64) string {
	if kind == validate.CommissionPercentage {
		return number(value) + "%"
	}
	return money(value)
}

func seats(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// formTime converts a backend timestamp to the form's date-time layout.
// Unparseable values are returned as is.
func formTime(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", validate.DateTimeLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(validate.DateTimeLayout)
		}
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
