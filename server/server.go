// Package server assembles the echo HTTP server and the background
// runners.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/internal/profile"
	apiv1 "github.com/flashwise/flashwise/server/router/api/v1"
	"github.com/flashwise/flashwise/server/runner/embedding"
	"github.com/flashwise/flashwise/store"
)

// Server is the HTTP server plus its background runners.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

// NewServer creates the server and mounts all routes.
func NewServer(ctx context.Context, prof *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: false,
	}))

	secret, err := st.GetSecretSession(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session secret")
	}

	apiService := apiv1.NewAPIV1Service(secret, prof, st)
	apiService.Register(e)

	return &Server{
		Profile:    prof,
		Store:      st,
		echoServer: e,
		apiService: apiService,
	}, nil
}

// Start begins serving and launches the background runners. It returns
// once the listener is up or failed.
func (s *Server) Start(ctx context.Context) error {
	s.startBackgroundRunners(ctx)

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode, "version", s.Profile.Version)
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}
	s.apiService.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shut down")
}

func (s *Server) startBackgroundRunners(ctx context.Context) {
	if s.apiService.AIProvider != nil {
		runner := embedding.NewRunner(s.Store, s.apiService.AIProvider)
		go runner.Run(ctx)
	}
}
