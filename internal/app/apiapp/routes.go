package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/config"
	authsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/auth"
	avatarsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/avatars"
	followsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/follows"
	profilesvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/profiles"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	ProfileService *profilesvc.Service
	FollowService  *followsvc.Service
	AvatarService  *avatarsvc.Service
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	usersHandler := handlers.NewUsersHandler(deps.ProfileService)
	followHandler := handlers.NewFollowHandler(deps.FollowService)
	avatarHandler := handlers.NewAvatarHandler(deps.AvatarService)
	adminHandler := handlers.NewAdminHandler(deps.ProfileService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminMW := AdminAuthMiddleware(deps.Config.Admin, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/profiles", func(r chi.Router) {
		r.With(authMW).Post("/", profileHandler.Create)
		r.With(authMW).Get("/me", profileHandler.Me)
		r.With(authMW).Put("/me", profileHandler.Update)
		r.With(authMW).Delete("/me", profileHandler.Delete)
		r.With(authMW).Put("/me/avatar", avatarHandler.Upload)
		r.With(authMW).Get("/me/avatar", avatarHandler.URL)

		r.Get("/usernames", usersHandler.Usernames)
		r.Get("/search", usersHandler.Search)
		r.Get("/verified", usersHandler.Verified)
		r.Get("/all", usersHandler.All)
		r.Get("/by-username/{username}", usersHandler.ByUsername)
		r.Get("/by-email", usersHandler.ByEmail)

		r.With(authMW).Post("/{username}/follow", followHandler.Follow)
		r.With(authMW).Delete("/{username}/follow", followHandler.Unfollow)
		r.With(authMW).Get("/{username}/followed", followHandler.Followed)
		r.With(authMW).Get("/{username}/followers", followHandler.Followers)
		r.With(authMW).Get("/{username}/followers/detailed", followHandler.FollowersWithTime)
	})

	r.Route("/admin/users", func(r chi.Router) {
		r.Use(adminMW)
		r.Post("/{username}/verify", adminHandler.Verify)
		r.Post("/{username}/unverify", adminHandler.Unverify)
	})
}
