package ui

import (
	"context"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/apitest"
	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/session"
	"github.com/safarline/busadmin/internal/state"
)

func newTestStore(t *testing.T, signedIn bool) (*apitest.Server, *state.Store) {
	t.Helper()
	srv := apitest.New(t)
	client := srv.Client(t)

	sess := session.Session{Theme: "Nightfox"}
	if signedIn {
		sess.Token = apitest.Token
		sess.User = domain.Profile{ID: 1, Name: "Admin", Email: apitest.Email}
	} else {
		client.SetToken("")
	}
	auth := state.NewAuth(client, "", sess, time.Now(), nil)
	return srv, state.New(client, auth, 10, nil)
}

func newTestModel(t *testing.T, signedIn bool) (*apitest.Server, Model) {
	t.Helper()
	srv, store := newTestStore(t, signedIn)
	m := New(Options{Store: store, Locale: domain.LocaleEnglish, Online: true})
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return srv, m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and returns the command it produced.
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// finish runs an operation command and feeds its result back.
func finish(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(opDoneMsg)
	require.True(t, ok, "expected opDoneMsg, got %T", msg)
	return update(t, m, msg)
}

func gotoScreen(t *testing.T, m Model, name string) Model {
	t.Helper()
	for i, s := range m.screens {
		if s.Endpoint().Name == name {
			m.current = i
			m.syncTable()
			return m
		}
	}
	t.Fatalf("no screen %q", name)
	return m
}

func TestNew_StartView(t *testing.T) {
	_, signedOut := newTestModel(t, false)
	assert.Equal(t, ViewLogin, signedOut.currentView)

	_, signedIn := newTestModel(t, true)
	assert.Equal(t, ViewList, signedIn.currentView)
	assert.NotEmpty(t, signedIn.View())
}

func TestModel_Login(t *testing.T) {
	_, m := newTestModel(t, false)

	m.login.email.SetValue(apitest.Email)
	m, _ = press(t, m, "enter")
	require.Equal(t, 1, m.login.focus)
	m, _ = press(t, m, apitest.Password)

	m, cmd := press(t, m, "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, ViewList, m.currentView)
	assert.True(t, m.store.Auth.Snapshot().IsAuthenticated)
	assert.Equal(t, "Signed in as Admin", m.flash)
}

func TestModel_LoginRejectedShowsFieldError(t *testing.T) {
	_, m := newTestModel(t, false)

	m.login.email.SetValue(apitest.Email)
	m.login.setFocus(1)
	m, _ = press(t, m, "wrong")
	m, cmd := press(t, m, "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, ViewLogin, m.currentView)
	assert.Equal(t, "These credentials do not match our records.", api.FieldErrorsOf(m.store.Auth.Snapshot().Err)["email"])
	assert.Contains(t, m.View(), "credentials")
}

func TestModel_UnauthorizedSignsOut(t *testing.T) {
	srv, m := newTestModel(t, true)
	srv.Stub(http.MethodGet, "/trips", http.StatusUnauthorized, `{"message":"Unauthenticated."}`)

	m = finish(t, m, listCmd(context.Background(), m.screen(), api.Query{Page: 1}))

	assert.Equal(t, ViewLogin, m.currentView)
	assert.False(t, m.store.Auth.Snapshot().IsAuthenticated)
	assert.True(t, m.flashErr)
	assert.Equal(t, "Session expired, please sign in again", m.flash)
}

func TestModel_SupersededListIsIgnored(t *testing.T) {
	_, m := newTestModel(t, true)

	m = update(t, m, opDoneMsg{resource: "trips", op: opList, err: state.ErrSuperseded})
	assert.Empty(t, m.flash)
	assert.Equal(t, ViewList, m.currentView)
}

func TestModel_CreateValidatesThenSaves(t *testing.T) {
	srv, m := newTestModel(t, true)
	m = gotoScreen(t, m, "countries")

	m, _ = press(t, m, "n")
	form, ok := m.modal.(*formModal)
	require.True(t, ok)

	m, cmd := press(t, m, "ctrl+s")
	assert.Nil(t, cmd)
	assert.Contains(t, form.errs, "name.en")
	assert.Contains(t, form.errs, "code")
	assert.Empty(t, srv.Records("countries"))

	for name, value := range map[string]string{"name.en": "Afghanistan", "code": "AF", "status": "active"} {
		in := form.inputs[name]
		in.SetValue(value)
		form.inputs[name] = in
	}
	m, cmd = press(t, m, "ctrl+s")
	m = finish(t, m, cmd)

	assert.Nil(t, m.modal)
	assert.Equal(t, "Saved", m.flash)
	records := srv.Records("countries")
	require.Len(t, records, 1)
	assert.Equal(t, "AF", records[0]["code"])

	view := m.screen().View(m.locale)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Afghanistan", view.Rows[0][0])
}

func TestModel_ServerFieldErrorsStayInForm(t *testing.T) {
	srv, m := newTestModel(t, true)
	srv.Stub(http.MethodPost, "/countries", http.StatusUnprocessableEntity,
		`{"message":"The given data was invalid.","errors":{"code":["The code has already been taken."]}}`)
	m = gotoScreen(t, m, "countries")

	m, _ = press(t, m, "n")
	form := m.modal.(*formModal)
	for name, value := range map[string]string{"name.en": "Afghanistan", "code": "AF", "status": "active"} {
		in := form.inputs[name]
		in.SetValue(value)
		form.inputs[name] = in
	}
	m, cmd := press(t, m, "ctrl+s")
	m = finish(t, m, cmd)

	require.NotNil(t, m.modal)
	assert.Equal(t, "The code has already been taken.", form.errs["code"])
	assert.False(t, form.saving)
}

func TestModel_DeleteAfterConfirm(t *testing.T) {
	srv, m := newTestModel(t, true)
	srv.Seed("countries", apitest.Record{"id": 1, "name": map[string]any{"en": "Afghanistan"}, "code": "AF", "status": "active"})
	m = gotoScreen(t, m, "countries")
	m = finish(t, m, listCmd(context.Background(), m.screen(), api.Query{Page: 1}))

	id, ok := m.selectedID()
	require.True(t, ok)
	require.Equal(t, int64(1), id)

	m, _ = press(t, m, "d")
	confirm, ok := m.modal.(confirmDelete)
	require.True(t, ok)
	assert.Equal(t, "Afghanistan", confirm.label)

	m, cmd := press(t, m, "y")
	assert.Nil(t, m.modal)
	m = finish(t, m, cmd)

	assert.Equal(t, "Deleted", m.flash)
	assert.Empty(t, srv.Records("countries"))
	assert.Empty(t, m.rowIDs)
}

func TestModel_ReadOnlyScreenRefusesNew(t *testing.T) {
	_, m := newTestModel(t, true)
	m = gotoScreen(t, m, "wallets")

	m, _ = press(t, m, "n")
	assert.Nil(t, m.modal)
	assert.True(t, m.flashErr)
}

func TestModel_RTLReversesColumns(t *testing.T) {
	srv, m := newTestModel(t, true)
	srv.Seed("countries", apitest.Record{"id": 1, "name": map[string]any{"en": "Afghanistan", "ps": "افغانستان"}, "code": "AF", "status": "active"})
	m = gotoScreen(t, m, "countries")
	m = finish(t, m, listCmd(context.Background(), m.screen(), api.Query{Page: 1}))

	require.Equal(t, "Afghanistan", m.table.Rows()[0][0])

	m, _ = press(t, m, "l")
	assert.Equal(t, domain.LocalePashto, m.locale)
	assert.True(t, m.rtl())
	row := m.table.Rows()[0]
	assert.Equal(t, "active", row[0])
	assert.Equal(t, "افغانستان", row[len(row)-1])
}

func TestModel_SwitchScreenLoadsOnce(t *testing.T) {
	_, m := newTestModel(t, true)

	m, cmd := press(t, m, "tab")
	require.NotNil(t, cmd)
	assert.Equal(t, "bookings", m.screen().Endpoint().Name)
	m = finish(t, m, cmd)

	m, _ = press(t, m, "tab")
	assert.Equal(t, "routes", m.screen().Endpoint().Name)
	assert.Nil(t, m.switchScreen(-1), "bookings were already loaded")
}

func TestNextLocaleAndLevel(t *testing.T) {
	assert.Equal(t, domain.LocalePashto, nextLocale(domain.LocaleEnglish))
	assert.Equal(t, domain.LocaleEnglish, nextLocale(domain.LocaleDari))
	assert.Equal(t, domain.LocaleEnglish, nextLocale("de"))

	assert.Equal(t, "INFO", nextLevel(""))
	assert.Equal(t, "", nextLevel("ERROR"))
}
