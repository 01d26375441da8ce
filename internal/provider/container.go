package provider

import (
	"github.com/freightdesk-next/internal/cache"
	"github.com/freightdesk-next/internal/config"
	"github.com/freightdesk-next/internal/logger"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/queue"
	"github.com/freightdesk-next/internal/repository"
	"github.com/freightdesk-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OrderRepo       repository.PurchaseOrderRepository
	ConsignmentRepo repository.ConsignmentRepository
	PackagingRepo   repository.PackagingRepository
	ConsoleRepo     repository.ConsoleRepository
	AuditTrailRepo  repository.AuditTrailRepository
	SequenceRepo    repository.SequenceRepository

	// Services
	SequenceService     *service.SequenceService
	ReconcileService    *service.ReconcileService
	AuditService        *service.AuditService
	NotificationService *service.NotificationService
	OrderService        *service.OrderService
	AllocationService   *service.AllocationService
	StatusService       *service.StatusService
	WorkflowService     *service.WorkflowService
	ConsoleService      *service.ConsoleService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewPurchaseOrderRepository(db)
	c.ConsignmentRepo = repository.NewConsignmentRepository(db)
	c.PackagingRepo = repository.NewPackagingRepository(db)
	c.ConsoleRepo = repository.NewConsoleRepository(db)
	c.AuditTrailRepo = repository.NewAuditTrailRepository(db)
	c.SequenceRepo = repository.NewSequenceRepository(db)
}

func (c *Container) initServices() {
	c.SequenceService = service.NewSequenceService(c.SequenceRepo)
	c.ReconcileService = service.NewReconcileService(c.OrderRepo, c.PackagingRepo)
	c.AuditService = service.NewAuditService(c.AuditTrailRepo)
	c.NotificationService = service.NewNotificationService(c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ReconcileService, c.AuditService)
	c.AllocationService = service.NewAllocationService(c.OrderRepo, c.ConsignmentRepo, c.PackagingRepo, c.SequenceService, c.ReconcileService, c.AuditService)
	c.StatusService = service.NewStatusService(c.ConsignmentRepo, c.ConsoleRepo, c.PackagingRepo, c.SequenceService, c.ReconcileService, c.AllocationService, c.AuditService, c.NotificationService)
	c.WorkflowService = service.NewWorkflowService(c.OrderRepo, c.ConsignmentRepo, c.PackagingRepo, c.SequenceService, c.AllocationService, c.StatusService, c.AuditService)
	c.ConsoleService = service.NewConsoleService(c.ConsoleRepo, c.AuditService)
}
