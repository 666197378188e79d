package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	"github.com/BruksfildServices01/studio-scheduler/internal/config"
	"github.com/BruksfildServices01/studio-scheduler/internal/handlers"
	"github.com/BruksfildServices01/studio-scheduler/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/studio-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/middleware"
	"github.com/BruksfildServices01/studio-scheduler/internal/storage"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
	ucAppointment "github.com/BruksfildServices01/studio-scheduler/internal/usecase/appointment"
	ucBootstrap "github.com/BruksfildServices01/studio-scheduler/internal/usecase/bootstrap"
	ucCheckout "github.com/BruksfildServices01/studio-scheduler/internal/usecase/checkout"
)

// Deps são as dependências de infraestrutura criadas no main.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Log     *logrus.Logger
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Audit   *audit.Dispatcher
	Storage *storage.Store

	// MetricsHandler expõe /metrics; nil desliga a rota
	MetricsHandler http.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestLogger(d.Log, d.Metrics))
	r.Use(middleware.CORS(d.Config.CORSOrigins))

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	checkoutRepo := infraRepo.NewCheckoutGormRepository(d.DB)
	catalogRepo := infraRepo.NewCatalogGormRepository(d.DB)

	locker := cache.NewLocker(d.Redis)
	syncGuard := tenant.NewSyncGuard(d.Redis, d.Config.SyncWindow)

	// ======================================================
	// 🧠 USE CASES: APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(appointmentRepo, d.Audit, d.Metrics)
	updateAppointmentUC := ucAppointment.NewUpdateAppointment(appointmentRepo, d.Audit, d.Metrics)
	deleteAppointmentUC := ucAppointment.NewDeleteAppointment(appointmentRepo, d.Audit, d.Metrics)
	setStatusUC := ucAppointment.NewSetStatus(appointmentRepo, d.Audit, d.Metrics)
	listRangeUC := ucAppointment.NewListRange(appointmentRepo)
	scheduleUC := ucAppointment.NewGetSchedule(appointmentRepo)
	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo)
	createPublicUC := ucAppointment.NewCreatePublicAppointment(appointmentRepo, d.Audit, d.Metrics)

	// ======================================================
	// 🧠 USE CASES: CHECKOUT
	// ======================================================
	openCommandUC := ucCheckout.NewOpenCommand(checkoutRepo, d.Audit)
	getCommandUC := ucCheckout.NewGetCommand(checkoutRepo)
	addItemUC := ucCheckout.NewAddItem(checkoutRepo)
	removeItemUC := ucCheckout.NewRemoveItem(checkoutRepo)
	cancelCommandUC := ucCheckout.NewCancelCommand(checkoutRepo, d.Audit)
	finishCommandUC := ucCheckout.NewFinishCommand(
		checkoutRepo,
		locker,
		d.Storage,
		d.Audit,
		d.Metrics,
		d.Log,
		d.Config.FinishLockTTL,
	)

	bootstrapUC := ucBootstrap.New(appointmentRepo, catalogRepo, syncGuard, d.Metrics, d.Log)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Config)
	meHandler := handlers.NewMeHandler(d.DB, bootstrapUC, d.Log)
	studioHandler := handlers.NewStudioHandler(d.DB, bootstrapUC)

	serviceHandler := handlers.NewServiceHandler(d.DB, bootstrapUC)
	productHandler := handlers.NewProductHandler(d.DB)
	clientHandler := handlers.NewClientHandler(d.DB)
	workingHoursHandler := handlers.NewWorkingHoursHandler(d.DB)
	professionalHandler := handlers.NewProfessionalHandler(d.DB, d.Storage, bootstrapUC, d.Log)
	paymentMethodHandler := handlers.NewPaymentMethodHandler(d.DB, bootstrapUC)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		updateAppointmentUC,
		deleteAppointmentUC,
		setStatusUC,
		listRangeUC,
		scheduleUC,
		d.Log,
	)

	commandHandler := handlers.NewCommandHandler(
		openCommandUC,
		getCommandUC,
		addItemUC,
		removeItemUC,
		cancelCommandUC,
		finishCommandUC,
		d.Log,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	publicHandler := handlers.NewPublicHandler(d.DB, appointmentRepo, availabilityUC, createPublicUC, d.Log)

	// ======================================================
	// 🩺 OPERACIONAL
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.Catalog)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Config))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/bootstrap", meHandler.Bootstrap)

			secured.GET("/me/studio", studioHandler.Get)

			secured.GET("/me/clients", clientHandler.List)
			secured.POST("/me/clients", clientHandler.Create)

			secured.GET("/me/services", serviceHandler.List)
			secured.GET("/me/products", productHandler.List)
			secured.GET("/me/professionals", professionalHandler.List)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Update)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/me/appointments", appointmentHandler.List)
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.PUT("/me/appointments/:id", appointmentHandler.Update)
			secured.DELETE("/me/appointments/:id", appointmentHandler.Delete)
			secured.PATCH("/me/appointments/:id/status", appointmentHandler.SetStatus)
			secured.GET("/me/schedule", appointmentHandler.Schedule)

			// ------------------------------
			// COMANDAS
			// ------------------------------
			secured.POST("/me/commands", commandHandler.Open)
			secured.GET("/me/commands/:id", commandHandler.Get)
			secured.POST("/me/commands/:id/items", commandHandler.AddItem)
			secured.DELETE("/me/commands/:id/items/:itemId", commandHandler.RemoveItem)
			secured.POST("/me/commands/:id/cancel", commandHandler.Cancel)
			secured.POST("/me/commands/:id/finish", commandHandler.Finish)

			// ------------------------------
			// GERÊNCIA
			// ------------------------------
			manager := secured.Group("/")
			manager.Use(middleware.RequireManager())
			{
				manager.PATCH("/me/studio", studioHandler.Update)

				manager.POST("/me/services", serviceHandler.Create)
				manager.PATCH("/me/services/:id", serviceHandler.Update)

				manager.POST("/me/products", productHandler.Create)
				manager.PATCH("/me/products/:id", productHandler.Update)

				manager.POST("/me/professionals", professionalHandler.Create)
				manager.PATCH("/me/professionals/:id", professionalHandler.Update)
				manager.POST("/me/professionals/:id/avatar", professionalHandler.UploadAvatar)

				manager.GET("/me/payment-methods", paymentMethodHandler.List)
				manager.POST("/me/payment-methods", paymentMethodHandler.Create)
				manager.PATCH("/me/payment-methods/:id", paymentMethodHandler.Update)

				manager.GET("/me/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
