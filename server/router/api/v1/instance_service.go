package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/server/internal/observability"
	"github.com/flashwise/flashwise/store"
)

// instanceProfileMessage is the public description of this instance.
type instanceProfileMessage struct {
	Version     string `json:"version"`
	Mode        string `json:"mode"`
	AIEnabled   bool   `json:"aiEnabled"`
	AllowSignup bool   `json:"allowSignup"`
	// NeedHostSetup is true until the first user registers.
	NeedHostSetup bool `json:"needHostSetup"`
}

// GetInstanceProfile returns the public instance profile. No auth.
func (s *APIV1Service) GetInstanceProfile(c echo.Context) error {
	ctx := c.Request().Context()

	hostRole := store.RoleHost
	host, err := s.Store.GetUser(ctx, &store.FindUser{Role: &hostRole})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to look up host user", err))
	}

	allowSignup := false
	name := store.InstanceSettingAllowSignup
	if setting, err := s.Store.GetInstanceSetting(ctx, &store.FindInstanceSetting{Name: &name}); err == nil && setting != nil {
		allowSignup = setting.Value == "true"
	}

	return c.JSON(http.StatusOK, &instanceProfileMessage{
		Version:       s.Profile.Version,
		Mode:          s.Profile.Mode,
		AIEnabled:     s.AIProvider != nil,
		AllowSignup:   allowSignup,
		NeedHostSetup: host == nil,
	})
}

// GetInstanceMetrics returns request counters. Admins only.
func (s *APIV1Service) GetInstanceMetrics(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	if !isAdmin(user) {
		return replyError(c, apierrors.PermissionDenied("only admins can read instance metrics"))
	}
	return c.JSON(http.StatusOK, observability.GlobalMetrics().Snapshot())
}
