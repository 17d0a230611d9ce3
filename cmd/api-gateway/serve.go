package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/school-assistant-api/api/swagger"
	"github.com/noah-isme/school-assistant-api/internal/ai"
	"github.com/noah-isme/school-assistant-api/internal/chatbot"
	"github.com/noah-isme/school-assistant-api/internal/handler"
	"github.com/noah-isme/school-assistant-api/internal/middleware"
	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/internal/repository"
	"github.com/noah-isme/school-assistant-api/internal/service"
	"github.com/noah-isme/school-assistant-api/migrations"
	"github.com/noah-isme/school-assistant-api/pkg/cache"
	"github.com/noah-isme/school-assistant-api/pkg/config"
	"github.com/noah-isme/school-assistant-api/pkg/database"
	"github.com/noah-isme/school-assistant-api/pkg/export"
	"github.com/noah-isme/school-assistant-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-assistant-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-assistant-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// handlers groups every HTTP handler mounted by the router.
type handlers struct {
	auth       *handler.AuthHandler
	chat       *handler.ChatHandler
	calendar   *handler.CalendarHandler
	google     *handler.GoogleCalendarHandler
	teachers   *handler.TeacherHandler
	classes    *handler.ClassHandler
	students   *handler.StudentHandler
	grades     *handler.GradeHandler
	attendance *handler.AttendanceHandler
	ops        *handler.MetricsHandler
}

func (a *app) serve(ctx context.Context) error {
	cfg, logr := a.cfg, a.log

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrations.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.FS, logr); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, using in-process state and no cache", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	h, tokens := a.buildHandlers(ctx, db, redisClient, metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, metrics, tokens, h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logr.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) buildHandlers(ctx context.Context, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService) (*handlers, middleware.TokenValidator) {
	cfg, logr := a.cfg, a.log
	validate := validator.New()
	loc := cfg.Chat.Location()

	users := repository.NewUserRepository(db)
	classes := repository.NewClassRepository(db)
	students := repository.NewStudentRepository(db)
	catalog := repository.NewCatalogRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var states service.StateStore = service.NewMemoryStateStore()
	if cacheRepo.Available() {
		states = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo.Available())
	exports := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(cfg.Export.FontPath), logr)

	auth := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	google := service.NewGoogleOAuthService(service.NewGoogleOAuthConfig(cfg.Google), users, auth, states, nil, nil, cfg.Google.StateTTL, logr)
	if !google.Configured() {
		logr.Warn("google oauth client is not configured")
	}
	googleCalendar := service.NewGoogleCalendarService(google, loc, logr)
	calendar := service.NewCalendarService(calendarRepo, validate, logr)
	roster := service.NewRosterService(users, classes, students, validate, logr)
	grades := service.NewGradeService(gradeRepo, catalog, students, classes, cacheSvc, exports, cfg.Chat.AcademicYear, validate, logr)
	attendance := service.NewAttendanceService(attendanceRepo, students, classes, exports, metrics, cfg.Chat.AcademicYear, validate, logr)

	provider, err := ai.New(ctx, ai.ConfigFrom(cfg.AI))
	if err != nil {
		logr.Warn("ai provider disabled", zap.Error(err))
		provider = nil
	}
	logr.Info("chat date parsing configured",
		zap.Int("pinned_year", cfg.Chat.PinnedYear),
		zap.String("timezone", loc.String()),
	)
	bot := chatbot.New(chatbot.Options{
		Calendar:            calendarRepo,
		Grades:              grades,
		Attendance:          attendance,
		Directory:           chatbot.NewDirectory(students, classes, users),
		Provider:            provider,
		Extractor:           chatbot.NewExtractor(cfg.Chat.PinnedYear, loc, nil),
		Metrics:             metrics,
		Logger:              logr,
		AcademicYear:        cfg.Chat.AcademicYear,
		ContextStudentLimit: cfg.Chat.ContextStudentLimit,
	})

	return &handlers{
		auth:       handler.NewAuthHandler(auth, google, cfg.Google.FrontendURL),
		chat:       handler.NewChatHandler(bot),
		calendar:   handler.NewCalendarHandler(calendar, loc),
		google:     handler.NewGoogleCalendarHandler(googleCalendar, google, loc),
		teachers:   handler.NewTeacherHandler(roster),
		classes:    handler.NewClassHandler(roster),
		students:   handler.NewStudentHandler(roster),
		grades:     handler.NewGradeHandler(grades),
		attendance: handler.NewAttendanceHandler(attendance),
		ops:        handler.NewMetricsHandler(metrics, db),
	}, auth
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens middleware.TokenValidator, h *handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.ops.Health)
	r.GET("/ready", h.ops.Ready)
	r.GET("/metrics", h.ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/login", h.auth.Login)
	api.GET("/auth/google", h.auth.GoogleAuthURL)
	api.GET("/auth/google/callback", h.auth.GoogleCallback)
	api.POST("/auth/google/id-token", h.auth.GoogleIDToken)
	api.POST("/chat", middleware.OptionalJWT(tokens), h.chat.Chat)
	api.GET("/ai/status", h.chat.AIStatus)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.auth.Me)

	events := secured.Group("/calendar/events")
	events.GET("", h.calendar.List)
	events.POST("", h.calendar.Create)
	events.PUT("/:id", h.calendar.Update)
	events.DELETE("/:id", h.calendar.Delete)

	google := secured.Group("/calendar/google")
	google.GET("/status", h.google.Status)
	google.GET("/calendars", h.google.Calendars)
	google.GET("/events", h.google.Events)
	google.POST("/events", h.google.CreateEvent)
	google.PUT("/events/:id", h.google.UpdateEvent)
	google.DELETE("/events/:id", h.google.DeleteEvent)

	secured.GET("/teachers", h.teachers.List)

	secured.GET("/classes", h.classes.List)
	secured.POST("/classes", h.classes.Create)
	secured.GET("/classes/:id/grades", h.grades.ClassSummary)
	secured.GET("/classes/:id/attendance", h.attendance.Class)

	secured.GET("/students", h.students.List)
	secured.POST("/students", h.students.Create)
	secured.GET("/students/:id", h.students.Get)
	secured.GET("/students/:id/grades", h.grades.StudentGrades)
	secured.GET("/students/:id/attendance", h.attendance.Student)

	secured.POST("/grades", h.grades.Record)
	secured.GET("/grades/top", h.grades.Top)
	secured.GET("/grades/bottom", h.grades.Bottom)
	secured.GET("/subjects/:name/analysis", h.grades.SubjectAnalysis)

	secured.POST("/attendance", h.attendance.Record)
	secured.GET("/attendance/ranking", h.attendance.Ranking)
	secured.POST("/attendance/rollups", middleware.RequireRoles(models.RoleAdmin), h.attendance.Rollups)

	return r
}
