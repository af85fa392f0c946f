package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/config"
	"github.com/safarline/busadmin/internal/logtail"
	"github.com/safarline/busadmin/internal/state"
)

// Operation names carried by opDoneMsg.
const (
	opList   = "list"
	opShow   = "show"
	opSave   = "save"
	opDelete = "delete"
	opLogin  = "login"
	opLogout = "logout"
)

// Messages

// opDoneMsg reports the outcome of a collection or auth operation. The
// state itself is read back from the collection snapshot.
type opDoneMsg struct {
	resource string
	op       string
	id       int64
	err      error
}

type activityMsg struct {
	lines []string
	err   error
}

type flashExpiredMsg struct{ seq int }

type searchTickMsg struct{ seq int }

// Commands

// runOp runs fn off the update loop with its own deadline.
func runOp(parent context.Context, resource, op string, id int64, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, OpTimeout)
		defer cancel()
		return opDoneMsg{resource: resource, op: op, id: id, err: fn(ctx)}
	}
}

func listCmd(ctx context.Context, s screen, q api.Query) tea.Cmd {
	return runOp(ctx, s.Endpoint().Name, opList, 0, func(ctx context.Context) error {
		return s.List(ctx, q)
	})
}

func refreshCmd(ctx context.Context, s screen) tea.Cmd {
	return runOp(ctx, s.Endpoint().Name, opList, 0, s.Refresh)
}

func showCmd(ctx context.Context, s screen, id int64) tea.Cmd {
	return runOp(ctx, s.Endpoint().Name, opShow, id, func(ctx context.Context) error {
		return s.Show(ctx, id)
	})
}

func saveCmd(ctx context.Context, s screen, id int64, p api.Payload) tea.Cmd {
	return runOp(ctx, s.Endpoint().Name, opSave, id, func(ctx context.Context) error {
		return s.Save(ctx, id, p)
	})
}

func deleteCmd(ctx context.Context, s screen, id int64) tea.Cmd {
	return runOp(ctx, s.Endpoint().Name, opDelete, id, func(ctx context.Context) error {
		return s.Delete(ctx, id)
	})
}

func loginCmd(ctx context.Context, auth *state.Auth, email, password string) tea.Cmd {
	return runOp(ctx, "", opLogin, 0, func(ctx context.Context) error {
		_, err := auth.Login(ctx, email, password)
		return err
	})
}

func logoutCmd(ctx context.Context, auth *state.Auth) tea.Cmd {
	return runOp(ctx, "", opLogout, 0, auth.Logout)
}

// readActivityCmd loads the tail of the console's own log file.
func readActivityCmd(cfg *config.Config) tea.Cmd {
	return func() tea.Msg {
		if cfg == nil || cfg.LogPath == "" {
			return activityMsg{}
		}
		path, err := config.ExpandPath(cfg.LogPath)
		if err != nil {
			return activityMsg{err: err}
		}
		lines, err := logtail.Read(path, ActivityLineLimit)
		return activityMsg{lines: lines, err: err}
	}
}

func flashTimeoutCmd(seq int) tea.Cmd {
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

func searchTickCmd(seq int) tea.Cmd {
	return tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	})
}

// unauthorized reports whether err means the token is no longer valid.
func unauthorized(err error) bool {
	var serr *api.ServerError
	return errors.As(err, &serr) && serr.Status == http.StatusUnauthorized
}
