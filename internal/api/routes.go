package api

import (
	"net/http"

	"figueroa/trainer-backend/internal/domain"
	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the handler set SetupRoutes wires into the engine.
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Admin    *AdminHandler
	Exercise *ExerciseHandler
	Plan     *PlanHandler
	Weights  *WeightsHandler
	Contact  *ContactHandler
}

// NewHandlers builds the full handler set from the service layer.
func NewHandlers(
	authService service.AuthService,
	recoveryService service.RecoveryService,
	userService service.UserService,
	exerciseService service.ExerciseService,
	planService service.PlanService,
	weightsService service.WeightsService,
	contactService service.ContactService,
	cookieSecure bool,
) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(authService, recoveryService, userService, cookieSecure),
		User:     NewUserHandler(userService, planService),
		Admin:    NewAdminHandler(userService, planService),
		Exercise: NewExerciseHandler(exerciseService),
		Plan:     NewPlanHandler(planService),
		Weights:  NewWeightsHandler(weightsService),
		Contact:  NewContactHandler(contactService),
	}
}

func SetupRoutes(router *gin.Engine, jwtSecret string, h *Handlers) {
	authMiddleware := AuthMiddleware(jwtSecret)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/recover", h.Auth.Recover)
		auth.POST("/verify-code", h.Auth.VerifyCode)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		auth.GET("/me", authMiddleware, h.Auth.Me)
	}

	// Public contact form; reading the inbox is admin-only.
	router.POST("/api/contact", h.Contact.Submit)

	users := router.Group("/api/users", authMiddleware)
	{
		users.GET("/profile", h.User.GetProfile)
		users.PUT("/profile", h.User.UpdateProfile)
		users.DELETE("/profile", h.User.DeleteAccount)
		users.GET("/my-plans", h.User.MyPlans)
	}

	weights := router.Group("/api/weights", authMiddleware)
	{
		weights.GET("/my-exercises", h.Weights.List)
		weights.POST("/my-exercises", h.Weights.Track)
		weights.PUT("/my-exercises/:exerciseId", h.Weights.UpdateWeight)
		weights.DELETE("/my-exercises/:exerciseId", h.Weights.Untrack)
	}

	exercises := router.Group("/api/exercises", authMiddleware)
	{
		exercises.GET("", h.Exercise.List)
		exercises.GET("/search", h.Exercise.Search)
		exercises.GET("/:id", h.Exercise.Get)
		exercises.GET("/:id/video", h.Exercise.Video)

		exercises.POST("", adminOnly, h.Exercise.Create)
		exercises.PUT("/:id", adminOnly, h.Exercise.Update)
		exercises.DELETE("/:id", adminOnly, h.Exercise.Delete)
		exercises.POST("/:id/video-upload", adminOnly, h.Exercise.CreateVideoUpload)
	}

	plans := router.Group("/api/plans", authMiddleware)
	{
		plans.GET("", h.Plan.List)
		plans.GET("/:id", h.Plan.Get)

		plans.POST("", adminOnly, h.Plan.Create)
		plans.PUT("/:id", adminOnly, h.Plan.Update)
		plans.DELETE("/:id", adminOnly, h.Plan.Delete)
		plans.GET("/:id/users", adminOnly, h.Plan.Assignees)
	}

	admin := router.Group("/api/admin", authMiddleware, adminOnly)
	{
		admin.GET("/stats", h.Admin.Stats)
		admin.GET("/activity", h.Admin.Activity)

		admin.GET("/users", h.Admin.ListUsers)
		admin.GET("/users/search", h.Admin.SearchUsers)
		admin.GET("/users/:id", h.Admin.GetUser)
		admin.PATCH("/users/:id", h.Admin.UpdateUser)
		admin.PUT("/users/:id/role", h.Admin.SetRole)
		admin.DELETE("/users/:id", h.Admin.DeleteUser)

		admin.GET("/users/:id/plans", h.Admin.UserPlans)
		admin.POST("/users/:id/plans", h.Admin.AssignPlan)
		admin.DELETE("/users/:id/plans/:planId", h.Admin.UnassignPlan)

		admin.GET("/users/:id/exercises", h.Weights.ListForUser)
		admin.POST("/users/:id/exercises", h.Weights.TrackForUser)
		admin.PUT("/users/:id/exercises/:exerciseId", h.Weights.UpdateWeightForUser)
		admin.DELETE("/users/:id/exercises/:exerciseId", h.Weights.UntrackForUser)

		admin.GET("/contacts", h.Contact.List)
		admin.GET("/contacts/:id", h.Contact.Get)
		admin.DELETE("/contacts/:id", h.Contact.Delete)
	}
}
