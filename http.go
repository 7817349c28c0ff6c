package tasks

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-tasks/middleware/authware"
)

// RouteAuthenticator drives the cookie session lifecycle for routes: login
// writes the cookie pair, logout clears it, and the route guards gate
// access by verified claims and role.
type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	session          *SessionTransport
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

func NewRouteAuthenticator(auther Authenticator, session *SessionTransport, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, errors.New("route authenticator requires an authenticator", errors.CategoryInternal)
	}
	if session == nil {
		return nil, errors.New("route authenticator requires a session transport", errors.CategoryInternal)
	}

	a := &RouteAuthenticator{
		cfg:     cfg,
		auth:    auther,
		session: session,
		Logger:  defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// ProtectedRoute guards a route behind a verified credential from either
// the Authorization header or the session cookie.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return authware.New(authware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: a.claimsValidator(),
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
	})
}

// AdminRoute guards the user-management surface: Administrator and Manager
// only. Lower privilege authenticates fine but is rejected with a
// forbidden error, not an authentication error.
func (a *RouteAuthenticator) AdminRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return authware.New(authware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: a.claimsValidator(),
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		MinimumRole:    RoleManager.Level(),
	})
}

// claimsValidator adapts the authenticator to the middleware's local
// validator interface.
func (a *RouteAuthenticator) claimsValidator() authware.TokenValidator {
	return authware.TokenValidatorFunc(func(tokenString string) (authware.AuthClaims, error) {
		claims, err := a.auth.ClaimsFromToken(tokenString)
		if err != nil {
			return nil, err
		}

		guarded, ok := claims.(authware.AuthClaims)
		if !ok {
			return nil, ErrUnableToDecodeSession
		}

		return guarded, nil
	})
}

// Login verifies the payload and, on success, writes both session cookies
// in the same response: the HttpOnly credential and the script-readable
// user snapshot. They are a pair; no path writes one without the other.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (*LoginResult, error) {
	token, identity, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return nil, err
	}

	a.session.WriteCredentialCookie(ctx, token)
	a.session.WriteUserSnapshotCookie(ctx, snapshotFromIdentity(identity))

	return &LoginResult{Token: token, Identity: identity}, nil
}

// Logout clears the full cookie pair. It requires no valid session; a
// logout with no cookies is a no-op that still responds with cleared
// cookies.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.session.ClearSessionCookies(ctx)
}

func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *RouteAuthenticator) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *RouteAuthenticator) SetRedirect(ctx router.Context) {
	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", ctx.OriginalURL())

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   a.cfg.IsProduction(),
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   a.cfg.IsProduction(),
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to login",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect("/login", statusCode)
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}

func snapshotFromIdentity(identity Identity) UserSnapshot {
	if rec, ok := identity.(interface{ Record() *User }); ok {
		return SnapshotFromUser(rec.Record())
	}

	return UserSnapshot{
		ID:       identity.ID(),
		Username: identity.Username(),
		Role:     identity.Role(),
	}
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)
