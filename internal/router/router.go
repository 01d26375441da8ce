package router

import (
	"fmt"
	"strings"

	"github.com/freightdesk-next/internal/cache"
	"github.com/freightdesk-next/internal/config"
	apihandlers "github.com/freightdesk-next/internal/http/handlers/api"
	"github.com/freightdesk-next/internal/logger"
	"github.com/freightdesk-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := apihandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fd"
	}
	redisClient := cache.Client()
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:write", redisPrefix),
		WindowSeconds: cfg.Security.WriteRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WriteRateLimit.MaxRequests,
	}
	writeLimit := RateLimitMiddleware(redisClient, writeRule, KeyByActor)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(ActorMiddleware())

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 采购订单
		orders := apiV1.Group("/orders")
		{
			orders.POST("", writeLimit, handler.CreateOrder)
			orders.POST("/import", writeLimit, handler.ImportOrders)
			orders.GET("", handler.ListOrders)
			orders.GET("/:id", handler.GetOrder)
		}

		// 订单行
		lines := apiV1.Group("/order-lines")
		{
			lines.PUT("/:id/quantity", writeLimit, handler.UpdateLineQuantity)
			lines.POST("/reconcile", writeLimit, handler.ReconcileLines)
		}

		// 托运单
		consignments := apiV1.Group("/consignments")
		{
			consignments.POST("", writeLimit, handler.CreateConsignmentDraft)
			consignments.GET("", handler.ListConsignments)
			consignments.GET("/:id", handler.GetConsignment)
			consignments.PUT("/:id/steps/:step", writeLimit, handler.AdvanceConsignmentStep)
			consignments.GET("/:id/steps/:step", handler.GetConsignmentStep)
			consignments.PUT("/:id/compliance", writeLimit, handler.SetConsignmentLineCompliance)
			consignments.POST("/:id/submit", writeLimit, handler.SubmitConsignment)

			// 包裹与分配
			consignments.POST("/:id/packages", writeLimit, handler.CreatePackages)
			consignments.PUT("/:id/packages/:package_no", writeLimit, handler.UpdatePackage)
			consignments.DELETE("/:id/packages/:package_no", writeLimit, handler.RemovePackage)
			consignments.POST("/:id/packages/:package_no/allocations", writeLimit, handler.AllocateToPackage)

			consignments.POST("/:id/receipts", writeLimit, handler.MarkPackagesReceived)
		}

		// 状态流转
		apiV1.POST("/status-transitions", writeLimit, handler.TransitionStatus)

		// 拼箱柜
		consoles := apiV1.Group("/consoles")
		{
			consoles.POST("", writeLimit, handler.CreateConsole)
			consoles.GET("", handler.ListConsoles)
			consoles.GET("/:id", handler.GetConsole)
			consoles.POST("/:id/assign", writeLimit, handler.AssignToConsole)
		}

		// 审计轨迹
		audits := apiV1.Group("/audits")
		{
			audits.GET("", handler.ListAudit)
			audits.GET("/:entity_kind/:id", handler.ListEntityAudit)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
