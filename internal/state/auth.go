package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/session"
)

// ErrCredentialsRequired is returned by Login when email or password is blank.
var ErrCredentialsRequired = errors.New("email and password are required")

// Authenticator performs the auth calls. *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}

// AuthSnapshot is a copy of the sign-in state.
type AuthSnapshot struct {
	IsAuthenticated bool
	User            domain.Profile
	Loading         bool
	Err             error
}

// Auth tracks the signed-in operator and keeps the session file in sync.
type Auth struct {
	client Authenticator
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	sess    session.Session
	authed  bool
	loading bool
	err     error
}

// NewAuth restores the sign-in state from sess. A session whose token has
// already expired at now starts signed out.
func NewAuth(client Authenticator, path string, sess session.Session, now time.Time, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Auth{
		client: client,
		path:   path,
		logger: logger.Named("auth"),
		sess:   sess,
	}
	if sess.Authenticated(now) {
		a.authed = true
		client.SetToken(sess.Token)
	} else if sess.Token != "" {
		a.logger.Info("stored session expired")
		a.sess = sess.SignedOut()
	}
	return a
}

// Snapshot returns the current sign-in state.
func (a *Auth) Snapshot() AuthSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return AuthSnapshot{
		IsAuthenticated: a.authed,
		User:            a.sess.User,
		Loading:         a.loading,
		Err:             a.err,
	}
}

// Session returns the session as it would be persisted.
func (a *Auth) Session() session.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sess
}

// Login exchanges credentials for a token, installs it on the client and
// writes the session file. On failure the previous state is kept.
func (a *Auth) Login(ctx context.Context, email, password string) (domain.Profile, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		a.setErr(ErrCredentialsRequired)
		return domain.Profile{}, ErrCredentialsRequired
	}

	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()

	res, err := a.client.Login(ctx, email, password)

	a.mu.Lock()
	a.loading = false
	if err != nil {
		a.err = err
		a.mu.Unlock()
		a.logger.Info("login failed", zap.Error(err))
		return domain.Profile{}, err
	}
	a.client.SetToken(res.Token)
	a.sess.Token = res.Token
	a.sess.User = res.User
	a.authed = true
	a.err = nil
	sess := a.sess
	a.mu.Unlock()

	a.logger.Info("signed in", zap.String("user", res.User.DisplayName()))
	a.persist(sess)
	return res.User, nil
}

// Logout revokes the token on the server when possible and always clears
// the local credential.
func (a *Auth) Logout(ctx context.Context) error {
	a.mu.RLock()
	authed := a.authed
	a.mu.RUnlock()

	var err error
	if authed {
		if err = a.client.Logout(ctx); err != nil {
			a.logger.Info("server logout failed", zap.Error(err))
		}
	}
	a.Expire()
	return err
}

// Expire drops the credential without a server call, as done when the
// server answers 401.
func (a *Auth) Expire() {
	a.mu.Lock()
	a.client.SetToken("")
	a.sess = a.sess.SignedOut()
	a.authed = false
	a.err = nil
	sess := a.sess
	a.mu.Unlock()

	a.persist(sess)
}

// SetPreferences updates the persisted UI preferences.
func (a *Auth) SetPreferences(theme, locale string) {
	a.mu.Lock()
	if theme != "" {
		a.sess.Theme = theme
	}
	if locale != "" {
		a.sess.Locale = locale
	}
	sess := a.sess
	a.mu.Unlock()

	a.persist(sess)
}

func (a *Auth) setErr(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
}

func (a *Auth) persist(sess session.Session) {
	if a.path == "" {
		return
	}
	if err := session.Save(a.path, sess); err != nil {
		a.logger.Warn("save session", zap.Error(err))
	}
}
