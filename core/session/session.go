package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/edupredict/predictcli/core"
	"github.com/edupredict/predictcli/storage"
)

// PersistentStore keys. The Manager is their sole writer; no other component
// may touch them.
const (
	tokenKey = "token"
	userKey  = "user"
)

var (
	// user-facing fallbacks when the server gives no message
	loginFailedText     = "login failed"
	registerFailedText  = "registration failed"
	attemptInFlightText = "another attempt is already in progress"
	supersededText      = "attempt was superseded, please try again"

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("authentication expired, please log in again")
)

type (
	// AuthAPI is the external authentication backend, implemented by
	// authapi.Client.
	AuthAPI interface {
		Login(ctx context.Context, identifier, password string) (LoginData, error)
		Register(ctx context.Context, acct NewAccount) error
		Profile(ctx context.Context, token string) (User, error)
	}

	// implemented by API errors carrying a server-provided user-facing message
	userFacing interface{ UserMessage() string }

	// implemented by API errors carrying an HTTP status
	statusCoder interface{ StatusCode() int }
)

// Manager owns the session: the authenticated user, the bearer token and the
// loading/error pair of the current attempt. One instance exists per process;
// it hydrates from the PersistentStore at construction and persists every
// successful login back to it.
type Manager struct {
	mu    sync.Mutex
	api   AuthAPI
	store storage.Store
	log   core.Logger

	user    *User
	token   string
	loading bool
	err     string

	// seq numbers auth attempts; a completion whose seq is no longer current
	// (a logout happened mid-flight) must not overwrite fresher state.
	seq uint64

	observers []func()
}

func NewManager(api AuthAPI, store storage.Store, log core.Logger) *Manager {
	m := &Manager{
		api:   api,
		store: store,
		log:   log,
	}
	m.hydrate()
	return m
}

// hydrate restores a previously persisted session. An expired token is
// discarded together with the cached user. The user may legitimately stay
// nil while the token is set: profiles are fetched lazily.
func (m *Manager) hydrate() {
	token, err := m.store.Get(tokenKey)
	if err != nil {
		if err != storage.ErrNotFound {
			m.log.Warn("reading stored token", err)
		}
		return
	}
	if token == "" {
		return
	}
	if tokenExpired(token) {
		m.log.Info("stored token expired, discarding session")
		if err := m.store.Delete(tokenKey, userKey); err != nil {
			m.log.Warn("clearing expired session", err)
		}
		return
	}
	m.token = token

	raw, err := m.store.Get(userKey)
	if err != nil {
		if err != storage.ErrNotFound {
			m.log.Warn("reading stored user", err)
		}
		return
	}
	var usr User
	if err := json.Unmarshal([]byte(raw), &usr); err != nil {
		m.log.Warn("decoding stored user", err)
		return
	}
	m.user = &usr
}

// tokenExpired inspects the exp claim without verifying the signature (the
// client has no key). Opaque tokens pass; the server remains the authority.
func tokenExpired(token string) bool {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt > 0 && time.Unix(claims.ExpiresAt, 0).Before(NowFunc())
}

// Subscribe registers fn to be called after every state transition.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

func (m *Manager) notify() {
	m.mu.Lock()
	observers := m.observers
	m.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Login exchanges credentials for a token, persists the session and returns
// a Result value; auth failures are never thrown. A second call while one is
// in flight is refused without issuing a network call.
func (m *Manager) Login(ctx context.Context, creds Credentials) Result {
	seq, ok := m.begin()
	if !ok {
		return Result{Error: attemptInFlightText}
	}

	data, err := m.api.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		msg := userMessage(err, loginFailedText)
		m.complete(seq, func() { m.err = msg })
		return Result{Error: msg}
	}

	usr := normalizeUser(data.User, creds)
	if !m.complete(seq, func() {
		m.token = data.Access
		m.user = &usr
		m.persist(data.Access, usr)
	}) {
		return Result{Error: supersededText}
	}
	return Result{Success: true}
}

// Register creates the account and, on success, immediately logs in with the
// just-submitted credentials, returning that login's result. A registration
// failure is surfaced without attempting a login.
func (m *Manager) Register(ctx context.Context, acct NewAccount) Result {
	seq, ok := m.begin()
	if !ok {
		return Result{Error: attemptInFlightText}
	}

	if err := m.api.Register(ctx, acct); err != nil {
		msg := userMessage(err, registerFailedText)
		m.complete(seq, func() { m.err = msg })
		return Result{Error: msg}
	}

	if !m.complete(seq, nil) {
		return Result{Error: supersededText}
	}
	return m.Login(ctx, Credentials{Email: acct.Email, Password: acct.Password})
}

// Logout clears the session in memory and in the PersistentStore. It is
// synchronous and infallible: no network call, store failures only logged.
// It also invalidates any in-flight attempt.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.seq++
	m.user = nil
	m.token = ""
	m.err = ""
	m.loading = false
	if err := m.store.Delete(tokenKey, userKey); err != nil {
		m.log.Warn("clearing stored session", err)
	}
	m.mu.Unlock()
	m.notify()
}

// ClearError drops the current attempt's error. The UI calls it whenever the
// bound form's values change, so a stale server message never lingers while
// the user corrects their input.
func (m *Manager) ClearError() {
	m.mu.Lock()
	changed := m.err != ""
	m.err = ""
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}

// Profile fetches the authenticated user's profile and caches it on the
// session. A 401 means the token is dead: the session is torn down entirely
// and re-authentication is required. Transport errors surface but leave the
// session intact.
func (m *Manager) Profile(ctx context.Context) (User, error) {
	token := m.Token()
	if token == "" {
		return User{}, ErrNotAuthenticated
	}

	usr, err := m.api.Profile(ctx, token)
	if err != nil {
		if sc, ok := errors.Cause(err).(statusCoder); ok && sc.StatusCode() == http.StatusUnauthorized {
			m.Logout()
			return User{}, ErrSessionExpired
		}
		return User{}, err
	}

	usr = normalizeUser(&usr, Credentials{})
	m.mu.Lock()
	m.user = &usr
	m.storeUser(usr)
	m.mu.Unlock()
	m.notify()
	return usr, nil
}

// begin opens a new auth attempt: loading on, error cleared. It refuses to
// start while another attempt is in flight (the double-submit guard; there is
// no server-side idempotency key, so a duplicate call is a correctness bug).
func (m *Manager) begin() (uint64, bool) {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return 0, false
	}
	m.loading = true
	m.err = ""
	m.seq++
	seq := m.seq
	m.mu.Unlock()
	m.notify()
	return seq, true
}

// complete finishes the attempt identified by seq, applying its state change
// and dropping loading. A stale completion is discarded wholesale.
func (m *Manager) complete(seq uint64, apply func()) bool {
	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		return false
	}
	if apply != nil {
		apply()
	}
	m.loading = false
	m.mu.Unlock()
	m.notify()
	return true
}

// persist writes the session to the store. Called under m.mu so a concurrent
// logout cannot interleave between the memory and store writes.
func (m *Manager) persist(token string, usr User) {
	if err := m.store.Set(tokenKey, token); err != nil {
		m.log.Error("persisting token", err)
	}
	m.storeUser(usr)
}

func (m *Manager) storeUser(usr User) {
	raw, err := json.Marshal(usr)
	if err != nil {
		m.log.Error("encoding user record", err)
		return
	}
	if err := m.store.Set(userKey, string(raw)); err != nil {
		m.log.Error("persisting user record", err)
	}
}

// userMessage prefers the server-provided message over the generic fallback.
func userMessage(err error, fallback string) string {
	if uf, ok := errors.Cause(err).(userFacing); ok && uf.UserMessage() != "" {
		return uf.UserMessage()
	}
	return fallback
}

// Accessors

// CurrentUser returns the cached user record, if any. A false return with a
// true Authenticated is normal: the profile simply has not been fetched yet.
func (m *Manager) CurrentUser() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// Token returns the bearer token, already normalized by the store read path.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) Authenticated() bool { return m.Token() != "" }

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Err returns the current attempt's error message, "" when none.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}
