package server

import (
	"net/http"
	"strings"

	"certcycle/internal/config"
	"certcycle/internal/handlers"
	"certcycle/internal/middleware"
	"certcycle/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())

	// календарь живёт в отдельном фронтенде
	corsCfg := cors.DefaultConfig()
	if cfg.CORSOrigins != "" {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("cert_session", store))

	// AUTH
	r.POST("/api/login", handlers.Login)
	r.POST("/api/logout", handlers.Logout)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	// СПРАВОЧНИКИ
	api.GET("/standards", handlers.ListStandards)
	api.GET("/iafeac-codes", handlers.ListIAFEACCodes)

	// КОМПАНИИ
	api.GET("/companies", handlers.ListCompanies)
	api.GET("/companies/:id", handlers.GetCompany)
	api.POST("/companies",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.CreateCompany,
	)
	api.POST("/companies/:id/standards",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.AddCompanyStandard,
	)
	api.POST("/companies/:id/codes",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.AddCompanyCode,
	)

	// АУДИТОРЫ И КВАЛИФИКАЦИИ
	api.GET("/auditors", handlers.ListAuditors)
	api.GET("/auditors/qualified", handlers.QualifiedAuditors)
	api.POST("/auditors",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.CreateAuditor,
	)
	api.POST("/auditors/:id/standards",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.AddAuditorStandard,
	)
	api.DELETE("/auditors/:id/standards/:standard_id",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.RemoveAuditorStandard,
	)
	api.POST("/auditors/:id/codes",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.AddAuditorCode,
	)
	api.POST("/auditor-standards/:link_id/codes",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.AddAuditorStandardCode,
	)

	// ЦИКЛЫ И АУДИТЫ
	api.GET("/cycles", handlers.ListCycles)
	api.GET("/cycles/:id", handlers.GetCycle)
	api.POST("/cycles",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.CreateCycle,
	)
	api.POST("/cycles/:id/standards",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.AddCycleStandard,
	)
	api.DELETE("/cycles/:id/standards/:standard_id",
		middleware.RequireRole(models.RoleAdmin),
		handlers.RemoveCycleStandard,
	)
	api.POST("/cycles/:id/audits",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.AddAudit,
	)
	api.GET("/audits/:id", handlers.GetAudit)
	api.POST("/audits/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.SaveAudit,
	)

	// КАЛЕНДАРЬ
	api.GET("/calendar", handlers.CalendarFeed)
	api.POST("/calendar/move",
		middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
		handlers.MoveEvent,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
