package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/johnwalle/pharma-stock-api/internal/audit"
	auditdomain "github.com/johnwalle/pharma-stock-api/internal/audit/domain"
	"github.com/johnwalle/pharma-stock-api/internal/auth"
	authdomain "github.com/johnwalle/pharma-stock-api/internal/auth/domain"
	authtoken "github.com/johnwalle/pharma-stock-api/internal/auth/token"
	"github.com/johnwalle/pharma-stock-api/internal/config"
	"github.com/johnwalle/pharma-stock-api/internal/imagestore"
	"github.com/johnwalle/pharma-stock-api/internal/medicine"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	"github.com/johnwalle/pharma-stock-api/internal/notification"
	notificationdomain "github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	"github.com/johnwalle/pharma-stock-api/internal/observability"
	obsmetrics "github.com/johnwalle/pharma-stock-api/internal/observability/metrics"
	"github.com/johnwalle/pharma-stock-api/internal/ratelimit"
	"github.com/johnwalle/pharma-stock-api/internal/report"
	reportdomain "github.com/johnwalle/pharma-stock-api/internal/report/domain"
	"github.com/johnwalle/pharma-stock-api/internal/sale"
	saledomain "github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	observability.Module,
	audit.Module,
	notification.Module,
	imagestore.Module,
	ratelimit.Module,
	auth.Module,
	medicine.Module,
	sale.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	return r
}

func registerGin(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	issuer          *authtoken.Issuer
	authSvc         authdomain.Service
	medicineSvc     medicinedomain.Service
	saleSvc         saledomain.Service
	reportSvc       reportdomain.Service
	auditSvc        auditdomain.Service
	notificationSvc notificationdomain.Service
	metrics         *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Issuer          *authtoken.Issuer
	AuthSvc         authdomain.Service
	MedicineSvc     medicinedomain.Service
	SaleSvc         saledomain.Service
	ReportSvc       reportdomain.Service
	AuditSvc        auditdomain.Service
	NotificationSvc notificationdomain.Service
	Metrics         *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		issuer:          p.Issuer,
		authSvc:         p.AuthSvc,
		medicineSvc:     p.MedicineSvc,
		saleSvc:         p.SaleSvc,
		reportSvc:       p.ReportSvc,
		auditSvc:        p.AuditSvc,
		notificationSvc: p.NotificationSvc,
		metrics:         p.Metrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.POST("/auth/login", s.Login)
	r.GET("/auth/me", s.AuthRequired(), s.Me)

	api := r.Group("/api/v1", s.AuthRequired())

	api.POST("/users", RequireRole(string(authdomain.RoleAdmin)), s.CreateUser)
	api.GET("/users", RequireRole(string(authdomain.RoleAdmin)), s.ListUsers)

	api.GET("/medicines", s.ListMedicines)
	api.POST("/medicines", s.CreateMedicine)
	api.GET("/medicines/:id", s.GetMedicine)
	api.PUT("/medicines/:id", s.UpdateMedicine)
	api.DELETE("/medicines/:id", RequireRole(string(authdomain.RoleAdmin)), s.DeleteMedicine)
	api.POST("/medicines/:id/transfer", s.TransferMedicine)

	api.POST("/sales", s.CreateSale)
	api.GET("/sales/analytics", s.SalesAnalytics)
	api.GET("/reports", s.Report)

	api.GET("/audit-logs", RequireRole(string(authdomain.RoleAdmin)), s.ListAuditLogs)

	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.POST("/notifications/read-all", s.MarkAllNotificationsRead)
}
