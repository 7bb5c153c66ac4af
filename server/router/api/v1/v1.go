// Package v1 implements the REST API mounted under /api/v1, plus the
// public Atom feed routes.
package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/flashwise/flashwise/internal/profile"
	"github.com/flashwise/flashwise/plugin/ai"
	"github.com/flashwise/flashwise/plugin/ai/generator"
	"github.com/flashwise/flashwise/plugin/markdown"
	"github.com/flashwise/flashwise/server/auth"
	"github.com/flashwise/flashwise/server/middleware"
	"github.com/flashwise/flashwise/server/service/srs"
	"github.com/flashwise/flashwise/store"
)

// APIV1Service wires the HTTP handlers to the store and the scheduling
// and AI services.
type APIV1Service struct {
	Secret        string
	Profile       *profile.Profile
	Store         *store.Store
	Authenticator *auth.Authenticator
	SRSService    *srs.Service
	Markdown      *markdown.Service

	// AI members are nil when AI is disabled in the profile.
	AIProvider   *ai.Provider
	Generator    *generator.Generator
	UsageMonitor *ai.UsageMonitor

	// thumbnailSemaphore bounds concurrent thumbnail generation to keep
	// image decoding from exhausting memory.
	thumbnailSemaphore *semaphore.Weighted
}

// NewAPIV1Service creates the API service.
func NewAPIV1Service(secret string, prof *profile.Profile, st *store.Store) *APIV1Service {
	service := &APIV1Service{
		Secret:             secret,
		Profile:            prof,
		Store:              st,
		Authenticator:      auth.NewAuthenticator(st, secret),
		SRSService:         srs.NewService(st),
		Markdown:           markdown.NewService(),
		thumbnailSemaphore: semaphore.NewWeighted(3),
	}

	if prof.IsAIEnabled() {
		provider, err := ai.NewProvider(&ai.Config{
			BaseURL:        prof.AIBaseURL,
			APIKey:         prof.AIAPIKey,
			ChatModel:      prof.AIChatModel,
			EmbeddingModel: prof.AIEmbeddingModel,
		})
		if err != nil {
			slog.Warn("AI disabled: provider initialization failed", "error", err)
		} else {
			service.AIProvider = provider
			service.Generator = generator.New(provider)
			service.UsageMonitor = ai.NewUsageMonitor(prof.AIDailyBudgetUSD)
		}
	}

	return service
}

// Register mounts all routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.Use(middleware.Metrics())
	e.Use(middleware.NewRateLimiter(20, 40).Middleware())
	e.Use(middleware.Auth(s.Authenticator))

	e.GET("/healthz", s.Healthz)
	e.GET("/u/:username/feed.xml", s.GetUserFeed)

	apiV1 := e.Group("/api/v1")

	apiV1.GET("/instance/profile", s.GetInstanceProfile)
	apiV1.GET("/instance/metrics", s.GetInstanceMetrics)

	apiV1.POST("/auth/signup", s.SignUp)
	apiV1.POST("/auth/signin", s.SignIn)
	apiV1.POST("/auth/signout", s.SignOut)
	apiV1.GET("/auth/me", s.GetCurrentUser)

	apiV1.GET("/users/:id", s.GetUser)
	apiV1.PATCH("/users/:id", s.UpdateUser)
	apiV1.DELETE("/users/:id", s.DeleteUser)
	apiV1.GET("/users/:id/setting", s.GetUserSetting)
	apiV1.PATCH("/users/:id/setting", s.UpdateUserSetting)

	apiV1.POST("/decks", s.CreateDeck)
	apiV1.GET("/decks", s.ListDecks)
	apiV1.GET("/decks/:uid", s.GetDeck)
	apiV1.PATCH("/decks/:uid", s.UpdateDeck)
	apiV1.DELETE("/decks/:uid", s.DeleteDeck)

	apiV1.POST("/cards", s.CreateCard)
	apiV1.GET("/cards", s.ListCards)
	apiV1.GET("/cards/:uid", s.GetCard)
	apiV1.PATCH("/cards/:uid", s.UpdateCard)
	apiV1.DELETE("/cards/:uid", s.DeleteCard)
	// Review submission and AI generation are limited per user, not per
	// connection.
	reviewLimit := middleware.NewRateLimiter(5, 10).UserMiddleware()
	aiLimit := middleware.NewRateLimiter(0.5, 3).UserMiddleware()

	apiV1.POST("/cards/:uid/review", s.ReviewCard, reviewLimit)
	apiV1.GET("/cards/:uid/reviews", s.ListCardReviews)

	apiV1.GET("/study/queue", s.GetStudyQueue)
	apiV1.GET("/stats", s.GetStats)

	apiV1.POST("/ai/generate", s.GenerateCards, aiLimit)
	apiV1.GET("/ai/usage", s.GetAIUsage)

	apiV1.POST("/attachments", s.CreateAttachment)
	apiV1.GET("/attachments", s.ListAttachments)
	apiV1.GET("/attachments/:uid", s.GetAttachment)
	apiV1.DELETE("/attachments/:uid", s.DeleteAttachment)
	e.GET("/file/attachments/:uid/:filename", s.ServeAttachment)
}

// Close releases resources held by the service.
func (s *APIV1Service) Close() {
	s.Authenticator.Close()
}
