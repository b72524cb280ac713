package router

import (
	"time"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/config"
	"github.com/iatechsabana/cotecmar/internal/handler"
	"github.com/iatechsabana/cotecmar/internal/infra"
	"github.com/iatechsabana/cotecmar/internal/middleware"
	"github.com/iatechsabana/cotecmar/internal/model"
	"github.com/iatechsabana/cotecmar/internal/repository"
	"github.com/iatechsabana/cotecmar/internal/service"
	"github.com/iatechsabana/cotecmar/internal/sesion"
	"github.com/iatechsabana/cotecmar/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client,
	monitor *infra.Monitor, sesiones *sesion.Registro) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	identidad := infra.NewIdentityClient(cfg.IdentityURL)
	almacenLocal := cache.New(cache.NewRedisStore(rdb))
	dlq := worker.NewRedisDLQ(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	avanceRepo := repository.NewAvanceRepository(db)
	productividadRepo := repository.NewProductividadRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	perfilSvc := service.NewPerfilService(usuarioRepo, almacenLocal, monitor)
	authSvc := service.NewAuthService(identidad, perfilSvc, monitor, sesiones, cfg)
	avanceSvc := service.NewAvanceService(avanceRepo, monitor)
	productividadSvc := service.NewProductividadService(productividadRepo, almacenLocal)
	kpiSvc := service.NewKPIService(avanceSvc, productividadSvc)
	cgtSvc := service.NewCGTService()

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(perfilSvc)
	avancesH := handler.NewAvancesHandler(avanceSvc)
	productividadH := handler.NewProductividadHandler(productividadSvc)
	dashboardH := handler.NewDashboardHandler(kpiSvc)
	cgtH := handler.NewCGTHandler(cgtSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, dlq))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/registro", middleware.LoginRateLimiter(), authH.Registro)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/logout", authH.Logout)

		avances := v1.Group("/avances")
		{
			avances.POST("", avancesH.Crear)
			avances.GET("", avancesH.Listar)
			avances.POST("/:id/reprocesos", avancesH.AgregarReproceso)
			avances.GET("/avisos", avancesH.Avisos)
			avances.GET("/equipo", middleware.RequireRole(model.RolLider), avancesH.ListarEquipo)
		}

		prod := v1.Group("/productividad")
		{
			prod.POST("", productividadH.Registrar)
			prod.GET("", productividadH.Listar)
			prod.GET("/resumen", productividadH.Resumen)
			prod.GET("/matriz", productividadH.Matriz)
		}

		v1.GET("/dashboard/kpis", dashboardH.KPIs)

		cgt := v1.Group("/cgt")
		{
			cgt.GET("/factores", cgtH.Factores)
			cgt.POST("/calcular", cgtH.Calcular)
		}

		// Team management — líder only
		usuarios := v1.Group("/usuarios", middleware.RequireRole(model.RolLider))
		{
			usuarios.GET("", usuariosH.Listar)
			usuarios.PATCH("/:id/rol", usuariosH.ActualizarRol)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
