// Package apiserver assembles the dictionary API: the remote source of truth
// the synchronization store mirrors. Route shapes and status codes are the
// wire contract the client half depends on.
package apiserver

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/auth"
	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/handlers"
	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/repository"
	"github.com/spec-kit/worklog-dictionaries/internal/config"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/internal/observability"
)

// Repositories bundles the storage the server runs on.
type Repositories struct {
	Users         repository.UserRepository
	Catering      repository.VendorRepository
	Accommodation repository.VendorRepository
	Teams         repository.TeamRepository
	Members       repository.MemberRepository
}

// New assembles the fiber application.
func New(cfg *config.Config, repos Repositories, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens, repos.Users)

	health := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(repos.Users, tokens, cfg.Auth.BcryptCost)
	dict := handlers.NewDictionariesHandler(repos.Catering, repos.Accommodation, repos.Teams, repos.Members)

	app.Get("/health/live", health.Live)

	app.Post("/auth/token", authHandler.Token)
	app.Post("/auth/register", authHandler.Register)
	app.Get("/auth/me", authMiddleware.Handle, authHandler.Me)

	dictionaries := app.Group("/dictionaries", authMiddleware.Handle)
	admin := auth.RequireAdmin()

	dictionaries.Get("/catering", dict.ListCatering)
	dictionaries.Post("/catering", admin, dict.CreateCatering)
	dictionaries.Put("/catering/:id", admin, dict.UpdateCatering)
	dictionaries.Delete("/catering/:id", admin, dict.DeleteCatering)

	dictionaries.Get("/accommodation", dict.ListAccommodation)
	dictionaries.Post("/accommodation", admin, dict.CreateAccommodation)
	dictionaries.Put("/accommodation/:id", admin, dict.UpdateAccommodation)
	dictionaries.Delete("/accommodation/:id", admin, dict.DeleteAccommodation)

	dictionaries.Get("/team", dict.ListTeams)
	dictionaries.Post("/team", admin, dict.CreateTeam)
	dictionaries.Put("/team/:id", admin, dict.UpdateTeam)
	dictionaries.Post("/team/members", admin, dict.CreateMember)
	dictionaries.Put("/team/members/:id", admin, dict.UpdateMember)
	dictionaries.Delete("/team/members/:id", admin, dict.DeleteMember)

	return app
}

// SeedAdmin ensures the configured administrator account exists. Idempotent;
// an already-registered email is left alone.
func SeedAdmin(ctx context.Context, cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) error {
	if cfg.AdminPassword == "" {
		logger.Warn("AUTH_ADMIN_PASSWORD not set; skipping admin seed")
		return nil
	}
	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin := &repository.User{
		Email:        cfg.AdminEmail,
		Role:         domain.UserRoleAdmin,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("seeded administrator", zap.String("email", cfg.AdminEmail))
	return nil
}
