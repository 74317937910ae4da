package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Joud158/PolyLab/core"
	"github.com/Joud158/PolyLab/core/user"
)

var errMissingToken = errors.New("Invalid or missing token.")

// API is the slice of the resource client the session lifecycle needs.
type API interface {
	Signup(ctx context.Context, form user.Signup) error
	Login(ctx context.Context, form user.Login) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (user.Identity, error)
	VerifyEmail(ctx context.Context, token string) error
	StartPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, form user.ResetPassword) error
}

// Service drives the account lifecycle against the store.
type Service struct {
	store *Store
	api   API
	log   core.Logger
	conf  *core.Config
}

func NewService(store *Store, api API, log core.Logger, conf *core.Config) *Service {
	return &Service{store: store, api: api, log: log, conf: conf}
}

// Bootstrap resolves the identity behind the session cookie, if any. It runs
// once at application start; until it returns, guards hold routes in the
// Pending state. A signed-out session is not an error.
func (svc *Service) Bootstrap(ctx context.Context) error {
	defer svc.store.markReady()

	id, err := svc.api.Me(ctx)
	if err != nil {
		if core.IsUnauthorized(err) {
			return nil
		}
		svc.log.Error("session bootstrap failed", err)
		return err
	}
	svc.store.set(id)
	svc.log.Debug("session bootstrapped", id)
	return nil
}

func (svc *Service) Signup(ctx context.Context, form user.Signup) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return svc.api.Signup(ctx, form)
}

// Login authenticates and then resolves the identity, so callers observe a
// populated session as soon as Login returns.
func (svc *Service) Login(ctx context.Context, form user.Login) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if err := svc.api.Login(ctx, form); err != nil {
		return err
	}
	id, err := svc.api.Me(ctx)
	if err != nil {
		return errors.Wrap(err, "login succeeded but profile fetch failed")
	}
	svc.store.set(id)
	return nil
}

// Logout clears the local session even when the network call fails; a stale
// server-side session is harmless, a stale client-side one is not.
func (svc *Service) Logout(ctx context.Context) error {
	err := svc.api.Logout(ctx)
	if err != nil {
		svc.log.Error("logout call failed", err)
	}
	svc.store.clear()
	return err
}

// VerifyEmail confirms the emailed token and, on success, schedules a
// one-shot delayed navigation to the login page. An empty token never
// reaches the network.
func (svc *Service) VerifyEmail(ctx context.Context, token string, navigate func(path string)) error {
	token = core.CleanString(token)
	if token == "" {
		return core.NewValidationError(errMissingToken, core.FieldError{Field: "token", Error: errMissingToken.Error()})
	}
	if err := svc.api.VerifyEmail(ctx, token); err != nil {
		return err
	}
	if navigate != nil {
		time.AfterFunc(svc.conf.VerifyRedirectDelay, func() { navigate("/login") })
	}
	return nil
}

func (svc *Service) StartPasswordReset(ctx context.Context, email string) error {
	email = core.CleanString(email, true /* lower */)
	if err := core.Validate.Var(email, "required,email"); err != nil {
		return err
	}
	return svc.api.StartPasswordReset(ctx, email)
}

func (svc *Service) ConfirmPasswordReset(ctx context.Context, form user.ResetPassword) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return svc.api.ConfirmPasswordReset(ctx, form)
}
