package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/server/timezone"
	"github.com/flashwise/flashwise/store"
)

// userMessage is the API shape of a user.
type userMessage struct {
	ID        int32  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	RowStatus string `json:"rowStatus"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	Nickname  *string `json:"nickname"`
	Password  *string `json:"password"`
	RowStatus *string `json:"rowStatus"`
}

type userSettingMessage struct {
	Locale        string `json:"locale"`
	Timezone      string `json:"timezone"`
	DailyNewLimit int32  `json:"dailyNewLimit"`
}

type updateUserSettingRequest struct {
	Locale        *string `json:"locale"`
	Timezone      *string `json:"timezone"`
	DailyNewLimit *int32  `json:"dailyNewLimit"`
}

func convertUserFromStore(user *store.User) *userMessage {
	return &userMessage{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role.String(),
		Email:     user.Email,
		Nickname:  user.Nickname,
		RowStatus: user.RowStatus.String(),
		CreatedTs: user.CreatedTs,
		UpdatedTs: user.UpdatedTs,
	}
}

// GetUser returns a user by ID. Regular users may only read themselves.
func (s *APIV1Service) GetUser(c echo.Context) error {
	current, targetID, err := s.resolveUserTarget(c)
	if err != nil {
		return replyError(c, err)
	}

	if targetID == current.ID {
		return c.JSON(http.StatusOK, convertUserFromStore(current))
	}

	target, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{ID: &targetID})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to find user", err))
	}
	if target == nil {
		return replyError(c, apierrors.NotFound("user %d not found", targetID))
	}
	return c.JSON(http.StatusOK, convertUserFromStore(target))
}

// UpdateUser patches a user's profile.
func (s *APIV1Service) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	current, targetID, err := s.resolveUserTarget(c)
	if err != nil {
		return replyError(c, err)
	}

	request := &updateUserRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}

	update := &store.UpdateUser{ID: targetID}
	update.Email = request.Email
	update.Nickname = request.Nickname
	if request.Password != nil {
		if len(*request.Password) < 8 {
			return replyError(c, apierrors.InvalidArgument("password must be at least 8 characters"))
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
		if err != nil {
			return replyError(c, apierrors.Internal("failed to hash password", err))
		}
		hash := string(passwordHash)
		update.PasswordHash = &hash
	}
	if request.RowStatus != nil {
		// Only admins may archive or restore accounts.
		if !isAdmin(current) {
			return replyError(c, apierrors.PermissionDenied("only admins can change account status"))
		}
		rowStatus := store.RowStatus(*request.RowStatus)
		if rowStatus != store.Normal && rowStatus != store.Archived {
			return replyError(c, apierrors.InvalidArgument("invalid row status %q", *request.RowStatus))
		}
		update.RowStatus = &rowStatus
	}

	updated, err := s.Store.UpdateUser(ctx, update)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to update user", err))
	}
	return c.JSON(http.StatusOK, convertUserFromStore(updated))
}

// DeleteUser removes a user and everything they own.
func (s *APIV1Service) DeleteUser(c echo.Context) error {
	current, targetID, err := s.resolveUserTarget(c)
	if err != nil {
		return replyError(c, err)
	}
	if targetID == current.ID && current.Role == store.RoleHost {
		return replyError(c, apierrors.PermissionDenied("the host account cannot delete itself"))
	}

	if err := s.Store.DeleteUser(c.Request().Context(), &store.DeleteUser{ID: targetID}); err != nil {
		return replyError(c, apierrors.Internal("failed to delete user", err))
	}
	return c.NoContent(http.StatusNoContent)
}

// GetUserSetting returns the user's study preferences.
func (s *APIV1Service) GetUserSetting(c echo.Context) error {
	_, targetID, err := s.resolveUserTarget(c)
	if err != nil {
		return replyError(c, err)
	}

	setting, err := s.Store.GetUserSetting(c.Request().Context(), targetID)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to get user setting", err))
	}
	return c.JSON(http.StatusOK, convertUserSettingFromStore(setting))
}

// UpdateUserSetting patches the user's study preferences.
func (s *APIV1Service) UpdateUserSetting(c echo.Context) error {
	_, targetID, err := s.resolveUserTarget(c)
	if err != nil {
		return replyError(c, err)
	}

	request := &updateUserSettingRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if request.Timezone != nil && !timezone.IsValid(*request.Timezone) {
		return replyError(c, apierrors.InvalidArgument("unknown timezone %q", *request.Timezone))
	}
	if request.DailyNewLimit != nil && *request.DailyNewLimit < 0 {
		return replyError(c, apierrors.InvalidArgument("daily new limit cannot be negative"))
	}

	setting, err := s.Store.UpsertUserSetting(c.Request().Context(), &store.UpsertUserSetting{
		UserID:        targetID,
		Locale:        request.Locale,
		Timezone:      request.Timezone,
		DailyNewLimit: request.DailyNewLimit,
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to update user setting", err))
	}
	return c.JSON(http.StatusOK, convertUserSettingFromStore(setting))
}

func convertUserSettingFromStore(setting *store.UserSetting) *userSettingMessage {
	return &userSettingMessage{
		Locale:        setting.Locale,
		Timezone:      setting.Timezone,
		DailyNewLimit: setting.DailyNewLimit,
	}
}

// resolveUserTarget parses the :id param and checks the caller may act on
// that user: themselves, or anyone for admins.
func (s *APIV1Service) resolveUserTarget(c echo.Context) (*store.User, int32, error) {
	current, err := s.currentUser(c)
	if err != nil {
		return nil, 0, err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return nil, 0, apierrors.InvalidArgument("invalid user id %q", c.Param("id"))
	}
	targetID := int32(id)

	if targetID != current.ID && !isAdmin(current) {
		return nil, 0, apierrors.PermissionDenied("cannot access other users")
	}
	return current, targetID, nil
}

func isAdmin(user *store.User) bool {
	return user.Role == store.RoleHost || user.Role == store.RoleAdmin
}
