package v1

import (
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/flashwise/flashwise/server/auth"
	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/store"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9._-]{1,30}[a-z0-9])$`)

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInResponse struct {
	User        *userMessage `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// SignUp registers a user. The first registered user becomes the HOST;
// later signups require the allow-signup instance setting.
func (s *APIV1Service) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	request := &signUpRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if !usernamePattern.MatchString(request.Username) {
		return replyError(c, apierrors.InvalidArgument("username must be 3-32 lowercase letters, digits, dots, dashes or underscores"))
	}
	if len(request.Password) < 8 {
		return replyError(c, apierrors.InvalidArgument("password must be at least 8 characters"))
	}

	hostRole := store.RoleHost
	existingHost, err := s.Store.GetUser(ctx, &store.FindUser{Role: &hostRole})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to look up host user", err))
	}

	role := store.RoleHost
	if existingHost != nil {
		role = store.RoleUser
		allowed, err := s.signupAllowed(c)
		if err != nil {
			return replyError(c, err)
		}
		if !allowed {
			return replyError(c, apierrors.PermissionDenied("signup is disabled on this instance"))
		}
	}

	if existing, err := s.Store.GetUser(ctx, &store.FindUser{Username: &request.Username}); err != nil {
		return replyError(c, apierrors.Internal("failed to look up username", err))
	} else if existing != nil {
		return replyError(c, apierrors.AlreadyExists("username %q is already taken", request.Username))
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to hash password", err))
	}

	user, err := s.Store.CreateUser(ctx, &store.User{
		Username:     request.Username,
		Role:         role,
		Email:        request.Email,
		Nickname:     request.Nickname,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to create user", err))
	}

	return s.issueToken(c, user, http.StatusCreated)
}

// SignIn authenticates a user by username and password.
func (s *APIV1Service) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	request := &signInRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}

	user, err := s.Store.GetUser(ctx, &store.FindUser{Username: &request.Username})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to look up user", err))
	}
	// A missing user and a wrong password are indistinguishable to the
	// caller.
	if user == nil || user.RowStatus == store.Archived {
		return replyError(c, apierrors.Unauthorized("invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return replyError(c, apierrors.Unauthorized("invalid credentials"))
	}

	return s.issueToken(c, user, http.StatusOK)
}

// SignOut revokes the current access token.
func (s *APIV1Service) SignOut(c echo.Context) error {
	if claims := auth.ClaimsFromContext(c.Request().Context()); claims != nil {
		s.Authenticator.Revoke(c.Request().Context(), claims)
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// GetCurrentUser returns the authenticated user.
func (s *APIV1Service) GetCurrentUser(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, convertUserFromStore(user))
}

func (s *APIV1Service) issueToken(c echo.Context, user *store.User, status int) error {
	token, err := auth.GenerateAccessToken(user, s.Secret, time.Now())
	if err != nil {
		return replyError(c, apierrors.Internal("failed to issue access token", err))
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.AccessTokenDuration),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(status, &signInResponse{
		User:        convertUserFromStore(user),
		AccessToken: token,
	})
}

func (s *APIV1Service) signupAllowed(c echo.Context) (bool, error) {
	name := store.InstanceSettingAllowSignup
	setting, err := s.Store.GetInstanceSetting(c.Request().Context(), &store.FindInstanceSetting{Name: &name})
	if err != nil {
		return false, apierrors.Internal("failed to read signup setting", err)
	}
	return setting != nil && setting.Value == "true", nil
}
