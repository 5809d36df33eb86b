package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	v1 "salesboard/internal/api/v1"
	"salesboard/internal/cache"
	"salesboard/internal/config"
	"salesboard/internal/logger"
	"salesboard/internal/model"
	"salesboard/internal/store"
	"salesboard/internal/tracing"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  store.Store
	v1     *v1.Handler
	log    *logger.Logger
	http   *http.Server
}

// NewServer 按配置打开存储并创建服务器
func NewServer(cfg *config.AppConfig, log *logger.Logger) (*Server, error) {
	if _, err := config.EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// 筛选项缓存（未配置 redis 时直接使用原存储）
	st = cache.Install(st, cfg.Cache, log)

	return New(cfg, st, log), nil
}

// New 使用已打开的存储创建服务器
func New(cfg *config.AppConfig, st store.Store, log *logger.Logger) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	combinator, ok := model.ParseCombinator(cfg.Query.Combinator)
	if !ok {
		combinator = model.CombineAll
	}

	handler := v1.NewHandler(v1.Options{
		Store:          st,
		UploadDir:      config.UploadDir(cfg),
		BatchSize:      cfg.Import.BatchSize,
		MaxUploadBytes: int64(cfg.Import.MaxUploadMB) << 20,
		Combinator:     combinator,
		Log:            log,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.DevMode {
		router.Use(gin.Logger())
	}
	if cfg.Trace.Enabled {
		router.Use(otelgin.Middleware(tracing.ServiceName))
	}

	s := &Server{
		router: router,
		store:  st,
		v1:     handler,
		log:    log.With("service", "Server"),
		http: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.setupRoutes(cfg)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(cfg *config.AppConfig) {
	// CORS：未配置来源时放开全部来源（不带凭据）
	corsCfg := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	s.router.Use(cors.New(corsCfg))

	api := s.router.Group("/api")
	{
		api.GET("/health", s.health)
		s.v1.RegisterRoutes(api)
	}

	if cfg.Server.DevMode {
		// 开发模式：页面请求转给前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:3000"+c.Request.URL.Path)
		})
	} else {
		s.router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
		})
	}
}

// health 健康检查
// GET /api/health
func (s *Server) health(c *gin.Context) {
	count, err := s.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     "Server is running",
		"recordCount": count,
	})
}

// Handler 返回 HTTP 处理器（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，阻塞直到 Shutdown 被调用或监听失败
func (s *Server) Run(addr string) error {
	s.http.Addr = addr
	s.log.Info("http server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收请求并关闭存储
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() store.Store {
	return s.store
}
