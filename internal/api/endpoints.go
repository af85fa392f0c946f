package api

import "net/http"

// Endpoint groups, mapped to an Authorization scheme by configuration.
const (
	GroupAdmin = "admin"
	GroupCMS   = "cms"
	GroupAuth  = "auth"
)

// Endpoint describes how one resource is reached. The backend is not
// uniform; the flags preserve its per-resource conventions.
type Endpoint struct {
	Name  string
	Path  string
	Group string
	// ListMethod is GET unless the backend expects the filters as a POST form.
	ListMethod string
	// ListPath overrides Path for list requests. POST lists need their own
	// path since POST on Path creates.
	ListPath string
	// MultipartList sends POST list filters as multipart form data.
	MultipartList bool
	// MultipartWrite sends create/update bodies as multipart even without files.
	MultipartWrite bool
	// Deletable reports whether the backend exposes DELETE for the resource.
	Deletable bool
	// ReadOnly resources have no create endpoint.
	ReadOnly bool
}

func (e Endpoint) listPath() string {
	if e.ListPath == "" {
		return e.Path
	}
	return e.ListPath
}

func (e Endpoint) listMethod() string {
	if e.ListMethod == "" {
		return http.MethodGet
	}
	return e.ListMethod
}

// Resource endpoints.
var (
	Countries = Endpoint{Name: "countries", Path: "/countries", Group: GroupAdmin, Deletable: true}
	Provinces = Endpoint{Name: "provinces", Path: "/provinces", Group: GroupAdmin, Deletable: true}
	Cities    = Endpoint{Name: "cities", Path: "/cities", Group: GroupAdmin, Deletable: true}
	Routes    = Endpoint{Name: "routes", Path: "/routes", Group: GroupAdmin, Deletable: true}
	Stations  = Endpoint{Name: "stations", Path: "/stations", Group: GroupAdmin, Deletable: true}
	Buses     = Endpoint{Name: "buses", Path: "/buses", Group: GroupAdmin, MultipartWrite: true}
	Drivers   = Endpoint{Name: "drivers", Path: "/drivers", Group: GroupAdmin, MultipartWrite: true}
	Users     = Endpoint{Name: "users", Path: "/users", Group: GroupAdmin, ListMethod: http.MethodPost, ListPath: "/users/list", MultipartList: true, MultipartWrite: true}
	Vendors   = Endpoint{Name: "vendors", Path: "/vendors", Group: GroupAdmin, ListMethod: http.MethodPost, ListPath: "/vendors/list", MultipartList: true, MultipartWrite: true}
	Agents    = Endpoint{Name: "agents", Path: "/agents", Group: GroupAdmin, MultipartWrite: true}
	Trips     = Endpoint{Name: "trips", Path: "/trips", Group: GroupAdmin, Deletable: true}
	Bookings  = Endpoint{Name: "bookings", Path: "/bookings", Group: GroupAdmin, ReadOnly: true}
	Wallets   = Endpoint{Name: "wallets", Path: "/wallets", Group: GroupAdmin, ReadOnly: true}
	Settings  = Endpoint{Name: "settings", Path: "/settings", Group: GroupCMS}
	Pages     = Endpoint{Name: "pages", Path: "/pages", Group: GroupCMS, MultipartWrite: true, Deletable: true}
	Expenses  = Endpoint{Name: "expense_categories", Path: "/expense-categories", Group: GroupAdmin, Deletable: true}
)

// WalletTransactions are append-only: no update or delete.
var WalletTransactions = Endpoint{Name: "wallet_transactions", Path: "/wallet-transactions", Group: GroupAdmin}
