package state

import (
	"go.uber.org/zap"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/domain"
)

// Store holds one collection per resource plus the sign-in state. It is
// built once at startup and handed to the UI.
type Store struct {
	Auth *Auth

	Countries         *Collection[domain.Country]
	Provinces         *Collection[domain.Province]
	Cities            *Collection[domain.City]
	Routes            *Collection[domain.Route]
	Stations          *Collection[domain.Station]
	Buses             *Collection[domain.Bus]
	Drivers           *Collection[domain.Driver]
	Users             *Collection[domain.User]
	Vendors           *Collection[domain.Vendor]
	Agents            *Collection[domain.Agent]
	Trips             *Collection[domain.Trip]
	Bookings          *Collection[domain.Booking]
	Wallets           *Collection[domain.Wallet]
	WalletTxns        *Collection[domain.WalletTransaction]
	Settings          *Collection[domain.Setting]
	Pages             *Collection[domain.Page]
	ExpenseCategories *Collection[domain.ExpenseCategory]
}

// New builds the registry over req.
func New(req api.Requester, auth *Auth, perPage int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		Auth:              auth,
		Countries:         newCollection[domain.Country](req, api.Countries, perPage, logger),
		Provinces:         newCollection[domain.Province](req, api.Provinces, perPage, logger),
		Cities:            newCollection[domain.City](req, api.Cities, perPage, logger),
		Routes:            newCollection[domain.Route](req, api.Routes, perPage, logger),
		Stations:          newCollection[domain.Station](req, api.Stations, perPage, logger),
		Buses:             newCollection[domain.Bus](req, api.Buses, perPage, logger),
		Drivers:           newCollection[domain.Driver](req, api.Drivers, perPage, logger),
		Users:             newCollection[domain.User](req, api.Users, perPage, logger),
		Vendors:           newCollection[domain.Vendor](req, api.Vendors, perPage, logger),
		Agents:            newCollection[domain.Agent](req, api.Agents, perPage, logger),
		Trips:             newCollection[domain.Trip](req, api.Trips, perPage, logger),
		Bookings:          newCollection[domain.Booking](req, api.Bookings, perPage, logger),
		Wallets:           newCollection[domain.Wallet](req, api.Wallets, perPage, logger),
		WalletTxns:        newCollection[domain.WalletTransaction](req, api.WalletTransactions, perPage, logger),
		Settings:          newCollection[domain.Setting](req, api.Settings, perPage, logger),
		Pages:             newCollection[domain.Page](req, api.Pages, perPage, logger),
		ExpenseCategories: newCollection[domain.ExpenseCategory](req, api.Expenses, perPage, logger),
	}
}

func newCollection[T domain.Entity](req api.Requester, ep api.Endpoint, perPage int, logger *zap.Logger) *Collection[T] {
	return NewCollection[T](api.NewResource[T](req, ep), perPage, logger)
}
