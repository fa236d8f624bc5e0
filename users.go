package curio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/curio/apperr"
	"github.com/eringen/curio/listing"
	"github.com/eringen/curio/views"
)

// resetTokenTTL bounds how long a password reset link stays valid.
const resetTokenTTL = 2 * time.Hour

// UserByName fetches an account by its unique name.
func (s *Store) UserByName(ctx context.Context, name string) (*User, error) {
	return s.userBy(ctx, "name", name)
}

// UserByEmail fetches an account by its unique email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.userBy(ctx, "email", email)
}

// UserByID fetches an account by id.
func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.userBy(ctx, "user_id", id)
}

func (s *Store) userBy(ctx context.Context, col string, val interface{}) (*User, error) {
	query := fmt.Sprintf("SELECT user_id, name, email, password, i_role, created_at FROM users WHERE %s = $1", col)
	var u User
	if err := s.db.GetContext(ctx, &u, query, val); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.QueryFailed(fmt.Errorf("get user by %s: %w", col, err))
	}
	return &u, nil
}

// InsertUser creates an account with an already-hashed password.
func (s *Store) InsertUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	const query = `INSERT INTO users (name, email, password, i_role) VALUES ($1, $2, $3, $4) RETURNING user_id`
	var id int64
	if err := s.db.GetContext(ctx, &id, query, name, email, passwordHash, RoleUser); err != nil {
		return 0, apperr.QueryFailed(fmt.Errorf("insert user: %w", err))
	}
	return id, nil
}

// UpdatePassword replaces an account's password hash.
func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	const query = `UPDATE users SET password = $1 WHERE user_id = $2`
	if _, err := s.db.ExecContext(ctx, query, passwordHash, userID); err != nil {
		return apperr.QueryFailed(fmt.Errorf("update password %d: %w", userID, err))
	}
	return nil
}

// CreateResetRequest opens a password reset and returns its token.
func (s *Store) CreateResetRequest(ctx context.Context, u *User) (uuid.UUID, error) {
	token := uuid.New()
	const query = `INSERT INTO reset_pw_req (id, user_id, user_name, user_email) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, token, u.ID, u.Name, u.Email); err != nil {
		return uuid.Nil, apperr.QueryFailed(fmt.Errorf("create reset request: %w", err))
	}
	return token, nil
}

// resetRequest mirrors one row of reset_pw_req.
type resetRequest struct {
	ID        uuid.UUID `db:"id"`
	UserID    int64     `db:"user_id"`
	UserName  string    `db:"user_name"`
	UserEmail string    `db:"user_email"`
	Status    int16     `db:"i_status"`
	CreatedAt time.Time `db:"created_at"`
}

// GetOpenResetRequest returns a still-valid reset request for the token.
func (s *Store) getOpenResetRequest(ctx context.Context, token uuid.UUID) (*resetRequest, error) {
	const query = `SELECT id, user_id, user_name, user_email, i_status, created_at
        FROM reset_pw_req WHERE id = $1 AND i_status = 0`
	var req resetRequest
	if err := s.db.GetContext(ctx, &req, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.QueryFailed(fmt.Errorf("get reset request: %w", err))
	}
	if time.Since(req.CreatedAt) > resetTokenTTL {
		return nil, apperr.ErrNotFound
	}
	return &req, nil
}

// closeResetRequest marks a reset token as used.
func (s *Store) closeResetRequest(ctx context.Context, token uuid.UUID) error {
	const query = `UPDATE reset_pw_req SET i_status = 1 WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, token); err != nil {
		return apperr.QueryFailed(fmt.Errorf("close reset request: %w", err))
	}
	return nil
}

func (a *App) setupUserRoutes() {
	e := a.Echo
	e.GET("/user/register", a.registerForm)
	e.POST("/user/register", a.registerSubmit)
	e.GET("/user/login", a.loginForm)
	e.POST("/user/login", a.loginSubmit)
	e.GET("/user/logout", a.logout)
	e.GET("/user/reset", a.resetRequestForm)
	e.POST("/user/reset", a.resetRequestSubmit)
	e.GET("/user/reset/:token", a.resetForm)
	e.POST("/user/reset/:token", a.resetSubmit)
	e.GET("/user/:name", a.userProfile)
}

func (a *App) userProfile(c echo.Context) error {
	user, err := a.Store.UserByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	if user.Role <= RoleDisabled {
		return apperr.ErrNotFound
	}
	since := listing.ShowDate(user.CreatedAt, a.Config.Location())
	body := views.UserProfile(user.Name, user.Role >= RoleModerator, since)
	return Render(c, views.Page(a.pageMeta(c, user.Name), body))
}

func (a *App) registerForm(c echo.Context) error {
	d := views.AuthFormData{CSRF: CsrfToken(c)}
	return Render(c, views.Page(a.pageMeta(c, "Join"), views.RegisterForm(d)))
}

func (a *App) registerSubmit(c echo.Context) error {
	in := RegisterInput{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Confirm:  c.FormValue("confirm"),
	}
	errs := in.Check()
	ctx := c.Request().Context()
	if len(errs) == 0 {
		if _, err := a.Store.UserByName(ctx, in.Name); err == nil {
			errs = append(errs, "That name is already taken.")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if _, err := a.Store.UserByEmail(ctx, in.Email); err == nil {
			errs = append(errs, "That email is already registered.")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
	}
	if len(errs) > 0 {
		d := views.AuthFormData{CSRF: CsrfToken(c), Errors: errs, Name: in.Name, Email: in.Email}
		return RenderStatus(c, http.StatusUnprocessableEntity,
			views.Page(a.pageMeta(c, "Join"), views.RegisterForm(d)))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(err, "HASH_FAILED", http.StatusInternalServerError, "hash password")
	}
	id, err := a.Store.InsertUser(ctx, in.Name, in.Email, string(hash))
	if err != nil {
		return err
	}
	a.Log.Info("user registered", zap.Int64("id", id), zap.String("name", in.Name))
	if err := setUserSession(c, User{ID: id, Name: in.Name, Role: RoleUser}); err != nil {
		return err
	}
	return redirect(c, "/my/article")
}

func (a *App) loginForm(c echo.Context) error {
	d := views.AuthFormData{CSRF: CsrfToken(c)}
	return Render(c, views.Page(a.pageMeta(c, "Sign in"), views.LoginForm(d)))
}

func (a *App) loginSubmit(c echo.Context) error {
	ip := c.RealIP()
	if !a.limiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	password := c.FormValue("password")

	fail := func() error {
		a.limiter.Record(ip)
		d := views.AuthFormData{
			CSRF:   CsrfToken(c),
			Errors: []string{"Wrong name or password."},
			Name:   name,
		}
		return RenderStatus(c, http.StatusUnauthorized,
			views.Page(a.pageMeta(c, "Sign in"), views.LoginForm(d)))
	}

	u, err := a.Store.UserByName(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fail()
		}
		return err
	}
	if u.Role <= RoleDisabled {
		return fail()
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return fail()
	}
	if err := setUserSession(c, *u); err != nil {
		return err
	}
	a.Log.Info("user signed in", zap.Int64("id", u.ID), zap.String("name", u.Name))
	return redirect(c, "/my/article")
}

func (a *App) logout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return redirect(c, "/")
}

func (a *App) resetRequestForm(c echo.Context) error {
	d := views.AuthFormData{CSRF: CsrfToken(c)}
	return Render(c, views.Page(a.pageMeta(c, "Reset password"), views.ResetRequestForm(d)))
}

func (a *App) resetRequestSubmit(c echo.Context) error {
	email := strings.TrimSpace(strings.ToLower(c.FormValue("email")))
	// The response is the same whether or not the account exists.
	done := func() error {
		return Render(c, views.Page(a.pageMeta(c, "Reset password"),
			views.Tip("If that address has an account, a reset link is on its way.")))
	}
	if email == "" || !a.limiter.Check("reset:"+email) {
		return done()
	}
	a.limiter.Record("reset:" + email)
	u, err := a.Store.UserByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return done()
		}
		return err
	}
	token, err := a.Store.CreateResetRequest(c.Request().Context(), u)
	if err != nil {
		return err
	}
	link := BuildURL(a.Config.URL, "user", "reset", token.String())
	body := fmt.Sprintf("<p>Hello %s,</p><p>Follow this link to choose a new password:</p><p><a href=%q>%s</a></p>",
		u.Name, link, link)
	if err := a.mailer.Send(c.Request().Context(), u.Email, "Password reset", body); err != nil {
		a.Log.Error("send reset mail", zap.Int64("user", u.ID), zap.Error(err))
	}
	return done()
}

func (a *App) resetForm(c echo.Context) error {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		return apperr.ErrNotFound
	}
	if _, err := a.Store.getOpenResetRequest(c.Request().Context(), token); err != nil {
		return err
	}
	d := views.AuthFormData{CSRF: CsrfToken(c)}
	return Render(c, views.Page(a.pageMeta(c, "Reset password"), views.ResetForm(token.String(), d)))
}

func (a *App) resetSubmit(c echo.Context) error {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		return apperr.ErrNotFound
	}
	ctx := c.Request().Context()
	req, err := a.Store.getOpenResetRequest(ctx, token)
	if err != nil {
		return err
	}
	password := c.FormValue("password")
	if len(password) < 8 || password != c.FormValue("confirm") {
		d := views.AuthFormData{
			CSRF:   CsrfToken(c),
			Errors: []string{"Passwords must match and be at least 8 characters."},
		}
		return RenderStatus(c, http.StatusUnprocessableEntity,
			views.Page(a.pageMeta(c, "Reset password"), views.ResetForm(token.String(), d)))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(err, "HASH_FAILED", http.StatusInternalServerError, "hash password")
	}
	if err := a.Store.UpdatePassword(ctx, req.UserID, string(hash)); err != nil {
		return err
	}
	if err := a.Store.closeResetRequest(ctx, token); err != nil {
		return err
	}
	a.Log.Info("password reset", zap.Int64("user", req.UserID))
	return redirect(c, "/user/login")
}
