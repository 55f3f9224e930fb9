package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/promptinvoice/internal/auth"
	authdomain "github.com/smallbiznis/promptinvoice/internal/auth/domain"
	"github.com/smallbiznis/promptinvoice/internal/config"
	"github.com/smallbiznis/promptinvoice/internal/interpreter"
	"github.com/smallbiznis/promptinvoice/internal/invoice"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/internal/observability"
	obsmiddleware "github.com/smallbiznis/promptinvoice/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/promptinvoice/internal/observability/metrics"
	obstracing "github.com/smallbiznis/promptinvoice/internal/observability/tracing"
	"github.com/smallbiznis/promptinvoice/internal/profile"
	profiledomain "github.com/smallbiznis/promptinvoice/internal/profile/domain"
	"github.com/smallbiznis/promptinvoice/internal/providers"
	"github.com/smallbiznis/promptinvoice/internal/ratelimit"
	"github.com/smallbiznis/promptinvoice/internal/reference"
	referencedomain "github.com/smallbiznis/promptinvoice/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	auth.Module,
	ratelimit.Module,
	providers.Module,
	interpreter.Module,
	reference.Module,
	profile.Module,
	invoice.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Invoice numbers such as INV/2024/001 arrive percent-encoded in one segment.
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
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
	engine     *gin.Engine
	cfg        config.Config
	verifier   authdomain.Verifier
	invoiceSvc invoicedomain.Service
	profileSvc profiledomain.Service
	refrepo    referencedomain.Repository
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Verifier   authdomain.Verifier
	InvoiceSvc invoicedomain.Service
	ProfileSvc profiledomain.Service
	Refrepo    referencedomain.Repository
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		verifier:   p.Verifier,
		invoiceSvc: p.InvoiceSvc,
		profileSvc: p.ProfileSvc,
		refrepo:    p.Refrepo,
	}
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	invoices := api.Group("/invoices")
	invoices.POST("/generate", s.GenerateInvoice)
	invoices.POST("/render", s.RenderInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:number", s.GetInvoice)
	invoices.GET("/:number/pdf", s.DownloadInvoicePDF)
	invoices.GET("/:number/html", s.DownloadInvoiceHTML)

	api.GET("/profile", s.GetProfile)
	api.PUT("/profile", s.SaveProfile)

	api.GET("/reference/states", s.ListStates)
}
