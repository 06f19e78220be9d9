package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"timetabler/internal/config"
	"timetabler/internal/handler"
	"timetabler/internal/metrics"
	"timetabler/internal/middleware"
)

// uploadOverhead leaves room for multipart framing on top of the file cap.
const uploadOverhead = 1 << 20

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log zerolog.Logger,
	m *metrics.Metrics,
	timetableH *handler.TimetableHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.MaxBodySize(cfg.Upload.MaxBytes() + uploadOverhead))

	timetables := v1.Group("/timetables")
	timetables.POST("/extract", timetableH.Extract)
	timetables.POST("/normalize", timetableH.Normalize)
	timetables.GET("", timetableH.List)
	timetables.GET("/:id", timetableH.GetByID)
	timetables.GET("/:id/export", timetableH.Export)
	timetables.DELETE("/:id", timetableH.Delete)

	return r
}
