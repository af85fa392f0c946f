package ui

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/apitest"
	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/paging"
	"github.com/safarline/busadmin/internal/validate"
)

func screenNamed(t *testing.T, list []screen, name string) screen {
	t.Helper()
	for _, s := range list {
		if s.Endpoint().Name == name {
			return s
		}
	}
	t.Fatalf("no screen for %q", name)
	return nil
}

func TestScreens_OnePerResource(t *testing.T) {
	_, store := newTestStore(t, true)
	list := screens(store)

	require.Len(t, list, 17)
	seen := map[string]bool{}
	for _, s := range list {
		name := s.Endpoint().Name
		assert.False(t, seen[name], "duplicate screen %s", name)
		seen[name] = true
		assert.NotEmpty(t, s.Columns(), name)
	}
	assert.Equal(t, "Trips", list[0].Title())
}

func TestScreens_Capabilities(t *testing.T) {
	_, store := newTestStore(t, true)
	list := screens(store)

	wallets := screenNamed(t, list, "wallets")
	assert.False(t, wallets.Creatable())
	assert.False(t, wallets.Editable())
	assert.False(t, wallets.Deletable())

	txns := screenNamed(t, list, "wallet_transactions")
	assert.True(t, txns.Creatable())
	assert.False(t, txns.Editable())
	assert.False(t, txns.Deletable())

	bookings := screenNamed(t, list, "bookings")
	assert.False(t, bookings.Creatable())

	countries := screenNamed(t, list, "countries")
	assert.True(t, countries.Creatable())
	assert.True(t, countries.Editable())
	assert.True(t, countries.Deletable())
}

func TestScreens_CityRowLooksUpProvince(t *testing.T) {
	srv, store := newTestStore(t, true)
	srv.Seed("provinces", apitest.Record{"id": 7, "name": map[string]any{"en": "Kabul", "ps": "کابل"}, "country_id": 1, "status": "active"})
	srv.Seed("cities", apitest.Record{"id": 3, "name": map[string]any{"en": "Paghman"}, "province_id": 7, "status": "active"})
	ctx := context.Background()

	cities := screenNamed(t, screens(store), "cities")
	require.NoError(t, cities.List(ctx, api.Query{Page: 1}))

	rows := cities.View(domain.LocaleEnglish).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, "#7", rows[0][1], "province not loaded yet")

	_, err := store.Provinces.List(ctx, api.Query{Page: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"Paghman", "Kabul", "active"}, cities.View(domain.LocaleEnglish).Rows[0])
	assert.Equal(t, "کابل", cities.View(domain.LocalePashto).Rows[0][1])
}

func TestScreens_DetailAndDraft(t *testing.T) {
	srv, store := newTestStore(t, true)
	srv.Seed("countries", apitest.Record{"id": 1, "name": map[string]any{"en": "Afghanistan", "fa": "افغانستان"}, "code": "AF", "status": "active"})

	countries := screenNamed(t, screens(store), "countries")
	require.NoError(t, countries.List(context.Background(), api.Query{Page: 1}))

	lines, ok := countries.Detail(1, domain.LocaleEnglish)
	require.True(t, ok)
	assert.Equal(t, detailLine{"ID", "1"}, lines[0])
	assert.Contains(t, lines, detailLine{"Name (fa)", "افغانستان"})

	draft, ok := countries.Draft(1)
	require.True(t, ok)
	assert.Equal(t, "Afghanistan", draft["name.en"])
	assert.Equal(t, "AF", draft["code"])
	assert.Empty(t, countries.Form(draft, validate.Edit, domain.LocaleEnglish).Validate(draft))

	_, ok = countries.Detail(99, domain.LocaleEnglish)
	assert.False(t, ok)
}

func TestStripMarkup(t *testing.T) {
	got := stripMarkup(" <p>Hello &amp; <b>welcome</b></p><script>alert(1)</script> ")
	assert.Equal(t, "Hello & welcome", got)
}

func TestSingular(t *testing.T) {
	tests := map[string]string{
		"Buses":     "Bus",
		"Cities":    "City",
		"Countries": "Country",
		"Expenses":  "Expense",
		"Trips":     "Trip",
		"Settings":  "Setting",
	}
	for in, want := range tests {
		if got := singular(in); got != want {
			t.Fatalf("singular(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Kandahar", 20); got != "Kandahar" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := truncate("Kandahar", 5); got != "Kand…" {
		t.Fatalf("truncate = %q, want Kand…", got)
	}
	if got := truncate("کندهار", 3); len([]rune(got)) != 3 {
		t.Fatalf("truncate counted bytes: %q", got)
	}
}

func TestPageStep(t *testing.T) {
	ltr := pagerFor(domain.PageInfo{CurrentPage: 2, LastPage: 5, Total: 50}, false)
	if page, ok := pageStep(ltr, true); !ok || page != 3 {
		t.Fatalf("ltr right = %d,%v, want 3", page, ok)
	}
	if page, ok := pageStep(ltr, false); !ok || page != 1 {
		t.Fatalf("ltr left = %d,%v, want 1", page, ok)
	}

	rtl := pagerFor(domain.PageInfo{CurrentPage: 2, LastPage: 5, Total: 50}, true)
	if page, ok := pageStep(rtl, true); !ok || page != 1 {
		t.Fatalf("rtl right = %d,%v, want 1", page, ok)
	}
	if page, ok := pageStep(rtl, false); !ok || page != 3 {
		t.Fatalf("rtl left = %d,%v, want 3", page, ok)
	}

	last := pagerFor(domain.PageInfo{CurrentPage: 5, LastPage: 5}, false)
	if _, ok := pageStep(last, true); ok {
		t.Fatalf("next on the last page should be disabled")
	}
}

func TestRenderPager(t *testing.T) {
	ctrl := pagerFor(domain.PageInfo{CurrentPage: 1, LastPage: 3, Total: 25}, false)
	out := renderPager(ctrl, 25, GetTheme("Nightfox"))
	if !strings.Contains(out, "total)") {
		t.Fatalf("pager missing total: %q", out)
	}
	if got := len(ctrl.Slots); got != 5 {
		t.Fatalf("slots = %d, want 5", got)
	}
	if ctrl.Slots[0].Kind != paging.KindPrev {
		t.Fatalf("first slot = %v, want Previous", ctrl.Slots[0].Kind)
	}
}
