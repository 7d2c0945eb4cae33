package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coworklabs/perks/internal/config"
	referraldomain "github.com/coworklabs/perks/internal/referral/domain"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
	rewarddomain "github.com/coworklabs/perks/internal/reward/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	codeSvc     codedomain.Service
	referralSvc referraldomain.Service
	rewardSvc   rewarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	CodeSvc     codedomain.Service
	ReferralSvc referraldomain.Service
	RewardSvc   rewarddomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		codeSvc:     p.CodeSvc,
		referralSvc: p.ReferralSvc,
		rewardSvc:   p.RewardSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAdminRoutes()
}

// RegisterAdminRoutes mounts the secret-gated staff surface. It only
// invokes the referral program's contracts; all business rules live in the
// services.
func (s *Server) RegisterAdminRoutes() {
	admin := s.engine.Group("/admin", adminSecretMiddleware(s.cfg.AdminSecret))

	admin.POST("/referral-codes", s.createReferralCode)
	admin.POST("/referrals", s.createReferral)
	admin.GET("/referrals/:id", s.getReferral)
	admin.POST("/referrals/:id/convert", s.confirmConversion)
	admin.POST("/referrals/:id/void-rewards", s.voidRewards)
	admin.POST("/jobs/settle-rewards", s.settleRewards)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
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
