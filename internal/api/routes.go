package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alcyxob/overload/internal/metrics"
	"alcyxob/overload/internal/service"
)

// Services groups everything the HTTP surface calls into.
type Services struct {
	Auth     service.AuthService
	Profile  service.ProfileService
	Tracker  service.TrackerService
	Template service.TemplateService
	Exercise service.ExerciseService
	Weight   service.WeightService
	Export   service.ExportService
}

// RouteOptions carry the non-service dependencies of the routes.
type RouteOptions struct {
	JWTSecret string
	Metrics   *metrics.Manager
	// Gatherer backs /metrics. Nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
	Location *time.Location
	Now      func() time.Time
}

// SetupRoutes installs middleware and every endpoint on router.
func SetupRoutes(router *gin.Engine, svc Services, opts RouteOptions) {
	authHandler := NewAuthHandler(svc.Auth)
	profileHandler := NewProfileHandler(svc.Profile)
	workoutHandler := NewWorkoutHandler(svc.Tracker)
	historyHandler := NewHistoryHandler(svc.Tracker, opts.Now, opts.Location)
	templateHandler := NewTemplateHandler(svc.Template)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	weightHandler := NewWeightHandler(svc.Weight)
	exportHandler := NewExportHandler(svc.Export)

	router.Use(Recover(opts.Metrics), LogRequest())
	if opts.Metrics != nil {
		router.Use(RequestMetrics(opts.Metrics))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(opts.JWTSecret))
	{
		protected.GET("/me", profileHandler.GetMe)
		protected.PUT("/me/display-name", profileHandler.UpdateDisplayName)

		workout := protected.Group("/workout")
		{
			workout.GET("", workoutHandler.GetCurrent)
			workout.DELETE("", workoutHandler.Discard)
			workout.POST("/start", workoutHandler.Start)
			workout.POST("/finish", workoutHandler.Finish)
			workout.POST("/exercises", workoutHandler.AddExercise)
			workout.POST("/exercises/:exIdx/sets", workoutHandler.AddSet)
			workout.PATCH("/exercises/:exIdx/sets/:setIdx", workoutHandler.UpdateSet)
		}

		timer := protected.Group("/timer")
		{
			timer.GET("", workoutHandler.GetTimer)
			timer.POST("/extend", workoutHandler.ExtendTimer)
			timer.POST("/stop", workoutHandler.StopTimer)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("", historyHandler.ListSessions)
			sessions.GET("/:id", historyHandler.GetSession)
			sessions.DELETE("/:id", historyHandler.DeleteSession)
		}

		protected.GET("/calendar/months/:year/:month", historyHandler.GetMonth)
		protected.GET("/calendar/days/:date", historyHandler.GetDay)
		protected.GET("/summary", historyHandler.GetSummary)
		protected.GET("/sync", historyHandler.GetSync)
		protected.POST("/sync/retry", historyHandler.RetrySync)

		tpl := protected.Group("/templates")
		{
			tpl.GET("", templateHandler.ListTemplates)
			tpl.POST("", templateHandler.SaveTemplate)
			tpl.GET("/:id", templateHandler.GetTemplate)
			tpl.PUT("/:id", templateHandler.UpdateTemplate)
			tpl.DELETE("/:id", templateHandler.DeleteTemplate)
		}

		protected.GET("/exercises", exerciseHandler.ListStats)
		protected.GET("/exercises/suggestions", exerciseHandler.Suggestions)
		protected.GET("/rankings/:name", exerciseHandler.Ranking)

		weights := protected.Group("/weights")
		{
			weights.GET("", weightHandler.ListWeights)
			weights.POST("", weightHandler.AddWeight)
			weights.DELETE("/:id", weightHandler.DeleteWeight)
		}

		protected.GET("/export", exportHandler.GetSnapshot)
		protected.POST("/export", exportHandler.Export)
	}
}
