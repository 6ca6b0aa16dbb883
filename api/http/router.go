package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RegaWeng/riseUp/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(
	app *fiber.App,
	auth *handlers.AuthHandler,
	health *handlers.HealthHandler,
	training *handlers.TrainingHandler,
	saved *handlers.SavedHandler,
	authMW fiber.Handler,
) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)
	a.Get("/me", authMW, auth.Me)

	// Training catalog is public
	v1.Get("/training", training.List)
	v1.Get("/training/:id", training.Get)

	// Saved/applied/completed state of the caller, per role-context
	rg := v1.Group("/roles/:role", authMW, saved.RoleContext)
	rg.Get("/state", saved.State)
	rg.Delete("/state", saved.Clear)
	rg.Get("/items", saved.Items)
	rg.Get("/progress", saved.Progress)

	rg.Get("/saved-jobs", saved.ListSavedJobs)
	rg.Post("/saved-jobs", saved.SaveJob)
	rg.Get("/saved-jobs/:id", saved.IsJobSaved)
	rg.Delete("/saved-jobs/:id", saved.UnsaveJob)

	rg.Get("/saved-videos", saved.ListSavedVideos)
	rg.Post("/saved-videos", saved.SaveVideo)
	rg.Get("/saved-videos/:id", saved.IsVideoSaved)
	rg.Delete("/saved-videos/:id", saved.UnsaveVideo)

	rg.Get("/completed-videos", saved.ListCompletedVideos)
	rg.Get("/completed-videos/:id", saved.IsVideoCompleted)
	rg.Put("/completed-videos/:id", saved.CompleteVideo)

	rg.Get("/applied-jobs", saved.ListAppliedJobs)
	rg.Get("/applied-jobs/:id", saved.IsJobApplied)
	rg.Put("/applied-jobs/:id", saved.ApplyToJob)
	rg.Delete("/applied-jobs/:id", saved.WithdrawJobApplication)
}
