package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/apitest"
)

func TestNew_BindsEveryResource(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	store := New(srv.Client(t), nil, 25, nil)

	endpoints := map[string]api.Endpoint{
		"countries":           store.Countries.Endpoint(),
		"provinces":           store.Provinces.Endpoint(),
		"cities":              store.Cities.Endpoint(),
		"routes":              store.Routes.Endpoint(),
		"stations":            store.Stations.Endpoint(),
		"buses":               store.Buses.Endpoint(),
		"drivers":             store.Drivers.Endpoint(),
		"users":               store.Users.Endpoint(),
		"vendors":             store.Vendors.Endpoint(),
		"agents":              store.Agents.Endpoint(),
		"trips":               store.Trips.Endpoint(),
		"bookings":            store.Bookings.Endpoint(),
		"wallets":             store.Wallets.Endpoint(),
		"wallet_transactions": store.WalletTxns.Endpoint(),
		"settings":            store.Settings.Endpoint(),
		"pages":               store.Pages.Endpoint(),
		"expense_categories":  store.ExpenseCategories.Endpoint(),
	}
	for name, ep := range endpoints {
		assert.Equal(t, name, ep.Name)
	}
}

func TestNew_CollectionsAreIndependent(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	srv.Seed("cities", apitest.Record{"id": 1, "name": map[string]any{"en": "Kabul"}})
	srv.Seed("users", apitest.Record{"id": 5, "name": "Op", "role": "admin"})
	store := New(srv.Client(t), nil, 25, nil)
	ctx := context.Background()

	_, err := store.Cities.List(ctx, api.Query{})
	require.NoError(t, err)
	_, err = store.Users.List(ctx, api.Query{})
	require.NoError(t, err)

	assert.Len(t, store.Cities.Snapshot().Items, 1)
	assert.Len(t, store.Users.Snapshot().Items, 1)
	assert.Empty(t, store.Countries.Snapshot().Items)

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/users/list", req.Path)
	assert.Equal(t, "25", req.Body["per_page"])
}
