package v1

import (
	"github.com/gin-gonic/gin"

	"salesboard/internal/exporter"
	"salesboard/internal/importer"
	"salesboard/internal/logger"
	"salesboard/internal/model"
	"salesboard/internal/store"
)

// Options 处理器依赖
type Options struct {
	Store          store.Store
	UploadDir      string
	BatchSize      int
	MaxUploadBytes int64
	Combinator     model.Combinator // /data/aggregated 使用的组合方式
	Log            *logger.Logger
}

// Handler V1 API 处理器
type Handler struct {
	store          store.Store
	coordinator    *importer.Coordinator
	exporter       *exporter.Exporter
	uploadDir      string
	maxUploadBytes int64
	combinator     model.Combinator
	log            *logger.Logger
}

// NewHandler 创建 V1 API 处理器
func NewHandler(opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	combinator := opts.Combinator
	if combinator == "" {
		combinator = model.CombineAll
	}
	return &Handler{
		store:          opts.Store,
		coordinator:    importer.NewCoordinator(opts.Store, opts.BatchSize, log),
		exporter:       exporter.NewExporter(opts.Store),
		uploadDir:      opts.UploadDir,
		maxUploadBytes: opts.MaxUploadBytes,
		combinator:     combinator,
		log:            log.With("service", "APIv1"),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 数据导入
	router.POST("/upload", h.Upload)
	router.POST("/upload/stream", h.UploadStream)

	data := router.Group("/data")
	{
		// 聚合查询
		data.GET("/aggregated", h.aggregatedWith(h.combinator))
		data.GET("/aggregated/any", h.aggregatedWith(model.CombineAny))
		data.GET("/aggregated/all", h.aggregatedWith(model.CombineAll))

		data.GET("/filter-options", h.FilterOptions)
		data.GET("/count", h.Count)
		data.DELETE("/clear", h.Clear)

		// 数据导出
		data.GET("/export", h.Export)
	}
}
