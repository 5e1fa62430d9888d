package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rentflow/internal/config"
	"github.com/smallbiznis/rentflow/internal/contract"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
	obsmetrics "github.com/smallbiznis/rentflow/internal/observability/metrics"
	"github.com/smallbiznis/rentflow/internal/payment"
	paymentdomain "github.com/smallbiznis/rentflow/internal/payment/domain"
	"github.com/smallbiznis/rentflow/internal/property"
	propertydomain "github.com/smallbiznis/rentflow/internal/property/domain"
	"github.com/smallbiznis/rentflow/internal/tenant"
	tenantdomain "github.com/smallbiznis/rentflow/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	tenantSvc   tenantdomain.Service
	propertySvc propertydomain.Service
	contractSvc contractdomain.Service
	paymentSvc  paymentdomain.Service
}

type ServerParams struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	TenantSvc   tenantdomain.Service
	PropertySvc propertydomain.Service
	ContractSvc contractdomain.Service
	PaymentSvc  paymentdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		db:          p.DB,
		tenantSvc:   p.TenantSvc,
		propertySvc: p.PropertySvc,
		contractSvc: p.ContractSvc,
		paymentSvc:  p.PaymentSvc,
	}

	s.registerTenantRoutes()
	s.registerPropertyRoutes()
	s.registerContractRoutes()
	s.registerPaymentRoutes()

	return s
}

func (s *Server) registerTenantRoutes() {
	g := s.engine.Group("/v1/tenants")
	g.POST("", s.CreateTenant)
	g.GET("", s.ListTenants)
	g.GET("/:id", s.GetTenantByID)
	g.GET("/:id/charges", s.ListTenantOutstandingCharges)
}

func (s *Server) registerPropertyRoutes() {
	g := s.engine.Group("/v1/properties")
	g.POST("", s.CreateProperty)
	g.GET("", s.ListProperties)
	g.GET("/:id", s.GetPropertyByID)
}

func (s *Server) registerContractRoutes() {
	g := s.engine.Group("/v1/contracts")
	g.POST("", s.CreateContract)
	g.GET("", s.ListContracts)
	g.GET("/:id", s.GetContractByID)
	g.GET("/:id/charges", s.ListContractCharges)
}

func (s *Server) registerPaymentRoutes() {
	g := s.engine.Group("/v1/payments")
	g.POST("", s.RegisterPayment)
	g.GET("", s.ListPayments)
	g.GET("/:id", s.GetPaymentByID)
}

func NewEngine(m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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

var Module = fx.Module("http.server",
	obsmetrics.Module,
	fx.Provide(NewEngine),
	tenant.Module,
	property.Module,
	contract.Module,
	payment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)
